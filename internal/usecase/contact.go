package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go-minimalapp/internal/domain"
	"go-minimalapp/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type contactUsecase struct {
	renderer domain.TemplateRenderer
	mailer   domain.MailSender
	validate *validator.Validate
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(renderer domain.TemplateRenderer, mailer domain.MailSender, validate *validator.Validate) domain.ContactUsecase {
	if validate == nil {
		validate = validation.New()
	}
	return &contactUsecase{
		renderer: renderer,
		mailer:   mailer,
		validate: validate,
	}
}

// Validate runs every field check. The email format is only checked when the
// email is present, so an empty email yields a single message.
func (uc *contactUsecase) Validate(input domain.ContactFormInput) domain.ValidationResult {
	if err := uc.validate.Struct(input); err != nil {
		return domain.ValidationResult{
			IsValid:  false,
			Messages: validation.FormatValidationErrors(err),
		}
	}
	return domain.ValidationResult{IsValid: true}
}

// HandleSubmission validates a submitted form and sends the confirmation mail
func (uc *contactUsecase) HandleSubmission(ctx context.Context, method string, form url.Values) (*domain.HandlerResult, error) {
	switch method {
	case http.MethodGet:
		return &domain.HandlerResult{Outcome: domain.RenderAcknowledgment}, nil
	case http.MethodPost:
	default:
		return nil, fmt.Errorf("%w: unsupported method %s", domain.ErrMalformedRequest, method)
	}

	input, err := parseContactForm(form)
	if err != nil {
		return nil, err
	}

	result := uc.Validate(input)
	if !result.IsValid {
		return &domain.HandlerResult{
			Outcome:  domain.RedirectToForm,
			Flashes:  result.Messages,
			Rejected: &input,
		}, nil
	}

	notification, err := uc.composeNotification(input)
	if err != nil {
		return nil, err
	}

	if err := uc.mailer.SendMail(ctx, notification.Recipient, notification.Subject, notification.TextBody, notification.HTMLBody); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMailDispatch, err)
	}

	return &domain.HandlerResult{
		Outcome: domain.RedirectToAcknowledgment,
		Flashes: []string{domain.ContactMailSubject},
	}, nil
}

func (uc *contactUsecase) composeNotification(input domain.ContactFormInput) (domain.EmailNotification, error) {
	bindings := map[string]any{
		"username":    input.Username,
		"description": input.Description,
	}

	text, err := uc.renderer.Render(domain.ContactMailTemplate+".txt", bindings)
	if err != nil {
		return domain.EmailNotification{}, fmt.Errorf("failed to render contact mail text: %w", err)
	}
	html, err := uc.renderer.Render(domain.ContactMailTemplate+".html", bindings)
	if err != nil {
		return domain.EmailNotification{}, fmt.Errorf("failed to render contact mail html: %w", err)
	}

	return domain.EmailNotification{
		Recipient: input.Email,
		Subject:   domain.ContactMailSubject,
		TextBody:  text,
		HTMLBody:  html,
	}, nil
}

// parseContactForm requires every key to be present; empty values are left to validation.
func parseContactForm(form url.Values) (domain.ContactFormInput, error) {
	for _, key := range []string{domain.FieldUsername, domain.FieldEmail, domain.FieldDescription} {
		if !form.Has(key) {
			return domain.ContactFormInput{}, fmt.Errorf("%w: missing field %q", domain.ErrMalformedRequest, key)
		}
	}

	return domain.ContactFormInput{
		Username:    form.Get(domain.FieldUsername),
		Email:       form.Get(domain.FieldEmail),
		Description: form.Get(domain.FieldDescription),
	}, nil
}
