package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-minimalapp/pkg/logger"

	"github.com/gin-gonic/gin"
)

const contextKey = "session"

// Options configures the session cookie
type Options struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

// Middleware loads the session before the handler runs and saves it afterwards.
// The cookie is written up front since the response may be committed by the handler.
func Middleware(store Store, opts Options) gin.HandlerFunc {
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	signer := NewSigner(opts.Secret)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := load(ctx, c, store, signer, opts.CookieName)

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, signer.Sign(sess.id), int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
		c.Set(contextKey, sess)

		c.Next()

		if !sess.dirty && !sess.isNew {
			return
		}
		if err := store.Save(context.WithoutCancel(ctx), sess.id, sess.data, opts.TTL); err != nil {
			logger.Log.Error("Failed to save session", "error", err)
		}
	}
}

func load(ctx context.Context, c *gin.Context, store Store, signer *Signer, cookieName string) *Session {
	raw, err := c.Cookie(cookieName)
	if err != nil || raw == "" {
		return newSession()
	}
	id, ok := signer.Verify(raw)
	if !ok {
		return newSession()
	}

	data, err := store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Log.Warn("Failed to load session", "error", err)
		}
		return newSession()
	}
	return &Session{id: id, data: data}
}

// FromContext returns the request session. Without the middleware a
// throwaway session is returned so handlers never see nil.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	sess := newSession()
	c.Set(contextKey, sess)
	return sess
}
