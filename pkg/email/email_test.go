package email

import (
	"context"
	"errors"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"go-minimalapp/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// fakeTransport fails with the queued errors and then succeeds.
type fakeTransport struct {
	mu       sync.Mutex
	errs     []error
	messages []Message
	calls    int
}

func (f *fakeTransport) Send(ctx context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func TestEmailService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should send one message to the trimmed recipient", func(t *testing.T) {
		transport := &fakeTransport{}
		svc := NewService(transport, "noreply@example.com")

		err := svc.SendMail(ctx, " ichiro@example.com ", "Subject", "text", "<p>html</p>")
		require.NoError(t, err)
		require.Len(t, transport.messages, 1)

		msg := transport.messages[0]
		assert.Equal(t, "noreply@example.com", msg.From)
		assert.Equal(t, []string{"ichiro@example.com"}, msg.To)
		assert.Equal(t, "Subject", msg.Subject)
		assert.Equal(t, "text", msg.TextBody)
		assert.Equal(t, "<p>html</p>", msg.HTMLBody)
	})

	t.Run("Should reject empty recipient", func(t *testing.T) {
		transport := &fakeTransport{}
		svc := NewService(transport, "noreply@example.com")

		assert.ErrorIs(t, svc.SendMail(ctx, "  ", "s", "t", "h"), ErrNoRecipients)
		assert.Zero(t, transport.calls)
	})

	t.Run("Should reject missing sender", func(t *testing.T) {
		transport := &fakeTransport{}
		svc := NewService(transport, "")

		assert.ErrorIs(t, svc.SendMail(ctx, "ichiro@example.com", "s", "t", "h"), ErrNoSender)
		assert.Zero(t, transport.calls)
	})

	t.Run("Should only log without a mail server", func(t *testing.T) {
		svc := NewEmailService(&config.Config{MailDefaultSender: "noreply@example.com"}, noop.NewTracerProvider().Tracer("test"))
		assert.False(t, svc.IsConfigured())
		assert.NoError(t, svc.SendMail(ctx, "ichiro@example.com", "s", "t", "h"))
	})

	t.Run("Should log with zero configuration", func(t *testing.T) {
		svc := NewEmailService(&config.Config{}, nil)
		assert.False(t, svc.IsConfigured())
		assert.Equal(t, LogOnlySender, svc.from)
		assert.NoError(t, svc.SendMail(ctx, "ichiro@example.com", "s", "t", "h"))
	})

	t.Run("Should require a sender with a mail server", func(t *testing.T) {
		svc := NewEmailService(&config.Config{MailServer: "smtp.example.com", MailPort: 587}, nil)
		assert.ErrorIs(t, svc.SendMail(ctx, "ichiro@example.com", "s", "t", "h"), ErrNoSender)
	})

	t.Run("Should build an smtp chain with a mail server", func(t *testing.T) {
		svc := NewEmailService(&config.Config{MailServer: "smtp.example.com", MailPort: 587}, nil)
		assert.True(t, svc.IsConfigured())
		assert.IsType(t, &RetryTransport{}, svc.transport)
	})
}

func TestRetryTransport(t *testing.T) {
	ctx := context.Background()
	msg := Message{From: "a@example.com", To: []string{"b@example.com"}}
	cfg := RetryConfig{Timeout: time.Second, MaxRetries: 3, BaseDelay: time.Millisecond}

	t.Run("Should retry transient failures", func(t *testing.T) {
		next := &fakeTransport{errs: []error{errors.New("conn reset"), errors.New("conn reset")}}
		err := NewRetryTransport(next, cfg).Send(ctx, msg)

		require.NoError(t, err)
		assert.Equal(t, 3, next.calls)
		assert.Len(t, next.messages, 1)
	})

	t.Run("Should give up after max retries", func(t *testing.T) {
		transient := errors.New("timeout")
		next := &fakeTransport{errs: []error{transient, transient, transient, transient, transient}}
		err := NewRetryTransport(next, cfg).Send(ctx, msg)

		assert.ErrorIs(t, err, transient)
		assert.Equal(t, 4, next.calls)
	})

	t.Run("Should not retry permanent smtp replies", func(t *testing.T) {
		next := &fakeTransport{errs: []error{&textproto.Error{Code: 550, Msg: "mailbox unavailable"}}}
		err := NewRetryTransport(next, cfg).Send(ctx, msg)

		var tpErr *textproto.Error
		require.ErrorAs(t, err, &tpErr)
		assert.Equal(t, 550, tpErr.Code)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("Should retry temporary smtp replies", func(t *testing.T) {
		next := &fakeTransport{errs: []error{&textproto.Error{Code: 421, Msg: "try again later"}}}
		require.NoError(t, NewRetryTransport(next, cfg).Send(ctx, msg))
		assert.Equal(t, 2, next.calls)
	})

	t.Run("Should not retry missing recipients", func(t *testing.T) {
		next := &fakeTransport{errs: []error{ErrNoRecipients}}
		assert.ErrorIs(t, NewRetryTransport(next, cfg).Send(ctx, msg), ErrNoRecipients)
		assert.Equal(t, 1, next.calls)
	})
}

func TestTracingTransport(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	sendErr := errors.New("refused")

	next := &fakeTransport{errs: []error{sendErr}}
	tt := NewTracingTransport(next, tracer)

	assert.ErrorIs(t, tt.Send(context.Background(), Message{To: []string{"b@example.com"}}), sendErr)
	assert.NoError(t, tt.Send(context.Background(), Message{To: []string{"b@example.com"}}))
	assert.Equal(t, 2, next.calls)
}

func TestLogTransport(t *testing.T) {
	assert.ErrorIs(t, NewLogTransport().Send(context.Background(), Message{}), ErrNoRecipients)
	assert.NoError(t, NewLogTransport().Send(context.Background(), Message{To: []string{"b@example.com"}}))
}

func TestBuildMIME(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Should build multipart alternative for both bodies", func(t *testing.T) {
		raw := string(BuildMIME(Message{
			From:     "noreply@example.com",
			To:       []string{"ichiro@example.com"},
			Subject:  "Thank you for your inquiry.",
			TextBody: "plain",
			HTMLBody: "<p>rich</p>",
		}, now))

		headers, body, ok := strings.Cut(raw, "\r\n\r\n")
		require.True(t, ok)
		assert.Contains(t, headers, "From: noreply@example.com")
		assert.Contains(t, headers, "To: ichiro@example.com")
		assert.Contains(t, headers, "Subject: Thank you for your inquiry.")
		assert.Contains(t, headers, "Date: Tue, 02 Jan 2024 03:04:05 +0000")
		assert.Contains(t, headers, "MIME-Version: 1.0")
		assert.Contains(t, headers, "Content-Type: multipart/alternative; boundary=minimalapp-")

		textIdx := strings.Index(body, "Content-Type: text/plain")
		htmlIdx := strings.Index(body, "Content-Type: text/html")
		assert.Greater(t, textIdx, 0)
		assert.Greater(t, htmlIdx, textIdx)
		assert.Contains(t, body, "plain")
		assert.Contains(t, body, "<p>rich</p>")
		assert.True(t, strings.HasSuffix(body, "--"))
	})

	t.Run("Should build a single part for text only", func(t *testing.T) {
		raw := string(BuildMIME(Message{From: "a@example.com", To: []string{"b@example.com"}, TextBody: "plain"}, now))
		assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8\r\n\r\nplain")
	})

	t.Run("Should encode non ascii subjects", func(t *testing.T) {
		raw := string(BuildMIME(Message{Subject: "お問い合わせ", TextBody: "x"}, now))
		assert.Contains(t, raw, "Subject: =?utf-8?q?")
	})
}
