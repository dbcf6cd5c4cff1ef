package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-minimalapp/internal/delivery/http/response"
	"go-minimalapp/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Accept", "application/json")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("RequestID")) })

	t.Run("Should generate an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
	})

	t.Run("Should reuse an incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Body.String())
	})

	t.Run("Should replace oversized ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Len(t, w.Body.String(), 36)
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/bad", func(c *gin.Context) {
		_ = c.Error(apperror.BadRequest("Malformed contact form", errors.New("missing field")))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db password is hunter2"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusAccepted, "done")
		_ = c.Error(apperror.Internal(errors.New("late")))
	})

	t.Run("Should map app errors to their status", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodGet, "/bad", ""))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "Malformed contact form", resp.Message)
		assert.NotEmpty(t, resp.RequestID)
	})

	t.Run("Should hide unknown error details", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodGet, "/boom", ""))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "hunter2")
	})

	t.Run("Should leave written responses alone", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodGet, "/written", ""))
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "done", w.Body.String())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/submit", RateLimitMiddleware(ContactRateLimitConfig(2, nil)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := jsonRequest(http.MethodPost, "/submit", "")
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send("192.0.2.1:1234")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusNoContent, send("192.0.2.1:1234").Code)

	limited := send("192.0.2.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))

	t.Run("Should track clients separately", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, send("198.51.100.7:1234").Code)
	})
}

func TestLimiterStore(t *testing.T) {
	store := newLimiterStore(2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	allowed, _, _ := store.allow("k", now)
	assert.True(t, allowed)
	allowed, _, _ = store.allow("k", now)
	assert.True(t, allowed)
	allowed, remaining, resetAt := store.allow("k", now)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.True(t, resetAt.After(now))

	t.Run("Should refill over the window", func(t *testing.T) {
		allowed, _, _ := store.allow("k", now.Add(31*time.Second))
		assert.True(t, allowed)
	})

	t.Run("Should drop idle buckets", func(t *testing.T) {
		store.allow("other", now.Add(10*time.Minute))
		store.mu.Lock()
		defer store.mu.Unlock()
		assert.NotContains(t, store.entries, "k")
		assert.Contains(t, store.entries, "other")
	})
}

func TestCSRFMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), CSRFMiddleware(false))
	r.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, CSRFToken(c))
	})
	r.POST("/form", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CSRFTokenCookieName, cookie.Name)
	assert.Equal(t, cookie.Value, w.Body.String())
	assert.Len(t, cookie.Value, CSRFTokenLength*2)

	post := func(form url.Values, header string, withCookie bool) int {
		req := jsonRequest(http.MethodPost, "/form", form.Encode())
		if header != "" {
			req.Header.Set(CSRFTokenHeaderName, header)
		}
		if withCookie {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("Should accept a matching form field", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, post(url.Values{CSRFTokenFieldName: {cookie.Value}}, "", true))
	})

	t.Run("Should accept a matching header", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, post(nil, cookie.Value, true))
	})

	t.Run("Should reject a missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, post(url.Values{"username": {"ichiro"}}, "", true))
	})

	t.Run("Should reject a mismatched token", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, post(url.Values{CSRFTokenFieldName: {"forged"}}, "", true))
	})

	t.Run("Should reject a token without its cookie", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, post(url.Values{CSRFTokenFieldName: {cookie.Value}}, "", false))
	})
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	for _, hsts := range []bool{false, true} {
		r := gin.New()
		r.Use(SecurityHeadersMiddleware(hsts))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "form-action 'self'")
		assert.Equal(t, hsts, w.Header().Get("Strict-Transport-Security") != "")
	}
}
