package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"go-minimalapp/pkg/apperror"
	"go-minimalapp/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	// CSRFTokenCookieName is the name of the cookie that stores the CSRF token
	CSRFTokenCookieName = "csrf_token"
	// CSRFTokenFieldName is the hidden form field carrying the token
	CSRFTokenFieldName = "csrf_token"
	// CSRFTokenHeaderName may carry the token for non-form clients
	CSRFTokenHeaderName = "X-CSRF-Token"
	// CSRFTokenLength is the length of the generated token in bytes (32 bytes = 64 hex chars)
	CSRFTokenLength = 32
	// CSRFTokenExpiry is how long the token is valid
	CSRFTokenExpiry = 24 * time.Hour

	csrfContextKey = "csrf_token"
)

func generateCSRFToken() (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRFMiddleware implements the double-submit cookie pattern for HTML forms.
//
// Every response makes sure a csrf_token cookie exists and exposes the value to
// templates through CSRFToken. State-changing requests must echo the cookie
// value in the csrf_token form field or the X-CSRF-Token header.
func CSRFMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || token == "" {
			token, err = generateCSRFToken()
			if err != nil {
				_ = c.Error(apperror.Internal(err))
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CSRFTokenCookieName, token, int(CSRFTokenExpiry.Seconds()), "/", "", secure, true)
		}
		c.Set(csrfContextKey, token)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		submitted := c.PostForm(CSRFTokenFieldName)
		if submitted == "" {
			submitted = c.GetHeader(CSRFTokenHeaderName)
		}

		if submitted == "" {
			rejectCSRF(c, "missing")
			return
		}
		if subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
			rejectCSRF(c, "mismatch")
			return
		}

		c.Next()
	}
}

// CSRFToken returns the token to embed in rendered forms
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}

func rejectCSRF(c *gin.Context, reason string) {
	security.DefaultLogger().LogCSRFViolation(c.Request.Context(), c.ClientIP(), c.GetString("RequestID"), c.FullPath(), reason)
	_ = c.Error(apperror.Forbidden("Invalid or missing CSRF token"))
	c.Abort()
}
