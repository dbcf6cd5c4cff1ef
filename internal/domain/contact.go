package domain

import (
	"context"
	"errors"
	"net/url"
)

// Form field names of a contact submission
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldDescription = "description"
)

const (
	// ContactMailTemplate is the base name of the .txt/.html mail template pair
	ContactMailTemplate = "contact_mail"
	// ContactMailSubject is used both as mail subject and as acknowledgment flash
	ContactMailSubject = "Thank you for your inquiry."
	// MailRetryMessage is flashed when the confirmation mail could not be sent
	MailRetryMessage = "We could not send your confirmation email. Please try again."
)

var (
	// ErrMalformedRequest means a required form key is absent, not merely empty
	ErrMalformedRequest = errors.New("malformed contact request")
	// ErrMailDispatch wraps mail transport failures; the submission may be retried
	ErrMailDispatch = errors.New("contact mail dispatch failed")
)

// ContactFormInput represents a contact form submission.
// Field order defines the order of validation messages.
type ContactFormInput struct {
	Username    string `form:"username" validate:"required"`
	Email       string `form:"email" validate:"required,email"`
	Description string `form:"description" validate:"required"`
}

// ValidationResult holds the outcome of validating a ContactFormInput
type ValidationResult struct {
	IsValid  bool
	Messages []string
}

// EmailNotification is the confirmation mail sent for a valid submission
type EmailNotification struct {
	Recipient string
	Subject   string
	TextBody  string
	HTMLBody  string
}

// Outcome tells the delivery layer what to do after a submission
type Outcome int

const (
	RenderAcknowledgment Outcome = iota
	RedirectToForm
	RedirectToAcknowledgment
)

func (o Outcome) String() string {
	switch o {
	case RenderAcknowledgment:
		return "render_acknowledgment"
	case RedirectToForm:
		return "redirect_to_form"
	case RedirectToAcknowledgment:
		return "redirect_to_acknowledgment"
	default:
		return "unknown"
	}
}

// HandlerResult carries the request-scoped effects of a submission.
// Flashes are queued by the caller on its own session.
type HandlerResult struct {
	Outcome  Outcome
	Flashes  []string
	Rejected *ContactFormInput
}

// TemplateRenderer renders a named template with keyword bindings
type TemplateRenderer interface {
	Render(name string, bindings map[string]any) (string, error)
}

// MailSender composes and dispatches one email
type MailSender interface {
	SendMail(ctx context.Context, recipient, subject, textBody, htmlBody string) error
}

// ContactUsecase defines the contact form workflow
type ContactUsecase interface {
	// Validate runs every check and accumulates messages.
	Validate(input ContactFormInput) ValidationResult
	// HandleSubmission handles GET and POST on the completion endpoint.
	HandleSubmission(ctx context.Context, method string, form url.Values) (*HandlerResult, error)
}
