package email

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-minimalapp/config"

	"go.opentelemetry.io/otel/trace"
)

// LogOnlySender is the From address used when no SMTP server or default sender is configured
const LogOnlySender = "noreply@localhost"

var (
	// ErrNoRecipients is returned when a message has no To address
	ErrNoRecipients = errors.New("email: no recipients provided")
	// ErrNoSender is returned when neither Message.From nor a default sender is set
	ErrNoSender = errors.New("email: no sender provided")
)

// Message is a provider-agnostic email payload
type Message struct {
	From     string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Transport delivers a composed message
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// EmailService composes messages and hands them to a transport chain
type EmailService struct {
	transport  Transport
	from       string
	configured bool
}

// NewEmailService builds the SMTP transport chain from configuration.
// Without MAIL_SERVER, messages are only logged.
func NewEmailService(cfg *config.Config, tracer trace.Tracer) *EmailService {
	var transport Transport
	configured := cfg.MailServer != ""
	if configured {
		transport = NewSMTPTransport(SMTPConfig{
			Host:     cfg.MailServer,
			Port:     cfg.MailPort,
			Username: cfg.MailUsername,
			Password: cfg.MailPassword,
			UseTLS:   cfg.MailUseTLS,
			UseSSL:   cfg.MailUseSSL,
		})
		transport = NewRetryTransport(transport, RetryConfig{
			Timeout:    cfg.MailTimeout,
			MaxRetries: cfg.MailMaxRetries,
			BaseDelay:  500 * time.Millisecond,
		})
	} else {
		transport = NewLogTransport()
	}

	if tracer != nil {
		transport = NewTracingTransport(transport, tracer)
	}

	from := cfg.MailDefaultSender
	if from == "" && !configured {
		from = LogOnlySender
	}

	return &EmailService{
		transport:  transport,
		from:       from,
		configured: configured,
	}
}

// NewService wires a service around an existing transport
func NewService(transport Transport, from string) *EmailService {
	return &EmailService{transport: transport, from: from, configured: true}
}

// SendMail sends one message with plain-text and HTML alternatives
func (s *EmailService) SendMail(ctx context.Context, recipient, subject, textBody, htmlBody string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return ErrNoRecipients
	}
	if s.from == "" {
		return ErrNoSender
	}

	return s.transport.Send(ctx, Message{
		From:     s.from,
		To:       []string{recipient},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	})
}

// IsConfigured reports whether a real SMTP server is behind the service
func (s *EmailService) IsConfigured() bool {
	return s.configured
}
