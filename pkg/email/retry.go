package email

import (
	"context"
	"errors"
	"net/textproto"
	"time"

	"go-minimalapp/pkg/logger"

	"github.com/sethvargo/go-retry"
)

// RetryConfig bounds each attempt and the number of retries
type RetryConfig struct {
	Timeout    time.Duration
	MaxRetries uint64
	BaseDelay  time.Duration
}

// RetryTransport retries transient failures with exponential backoff
type RetryTransport struct {
	next Transport
	cfg  RetryConfig
}

func NewRetryTransport(next Transport, cfg RetryConfig) *RetryTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	return &RetryTransport{next: next, cfg: cfg}
}

func (t *RetryTransport) Send(ctx context.Context, msg Message) error {
	b := retry.NewExponential(t.cfg.BaseDelay)
	b = retry.WithMaxRetries(t.cfg.MaxRetries, b)
	b = retry.WithCappedDuration(5*time.Second, b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()

		err := t.next.Send(attemptCtx, msg)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}

		logger.Log.Warn("Mail delivery attempt failed", "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
}

// isPermanent reports errors a retry cannot fix: bad input or a 5xx SMTP reply.
func isPermanent(err error) bool {
	if errors.Is(err, ErrNoRecipients) || errors.Is(err, ErrNoSender) {
		return true
	}
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code >= 500
	}
	return false
}
