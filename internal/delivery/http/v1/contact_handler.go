package v1

import (
	"errors"
	"net/http"

	"go-minimalapp/internal/delivery/http/middleware"
	"go-minimalapp/internal/delivery/http/response"
	"go-minimalapp/internal/domain"
	"go-minimalapp/pkg/apperror"
	"go-minimalapp/pkg/logger"
	"go-minimalapp/pkg/security"
	"go-minimalapp/pkg/session"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	demoCookieName  = "flaskbook_key"
	demoCookieValue = "flaskbook value"

	oldUsernameKey    = "old_username"
	oldDescriptionKey = "old_description"

	maxFormMemory = 32 << 20
)

// ContactHandlerOptions configures the contact routes
type ContactHandlerOptions struct {
	// PreserveInput prefills the form with rejected username and description
	PreserveInput bool

	// RateLimit applies to submissions; a zero Limit disables it
	RateLimit middleware.RateLimitConfig

	// Meter records submission outcomes; nil uses a noop meter
	Meter metric.Meter
}

// ContactHandler serves the contact form and its completion endpoint
type ContactHandler struct {
	contactUC     domain.ContactUsecase
	preserveInput bool
	submissions   metric.Int64Counter
}

// NewContactHandler registers the contact routes
func NewContactHandler(rg *gin.RouterGroup, contactUC domain.ContactUsecase, opts ContactHandlerOptions) {
	meter := opts.Meter
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("contact")
	}
	submissions, err := meter.Int64Counter("contact.submissions",
		metric.WithDescription("Contact form submissions by outcome"))
	if err != nil {
		logger.Log.Warn("Failed to create contact metrics", "error", err)
		submissions, _ = noop.NewMeterProvider().Meter("contact").Int64Counter("contact.submissions")
	}

	handler := &ContactHandler{
		contactUC:     contactUC,
		preserveInput: opts.PreserveInput,
		submissions:   submissions,
	}

	submit := []gin.HandlerFunc{handler.Complete}
	if opts.RateLimit.Limit > 0 {
		submit = append([]gin.HandlerFunc{middleware.RateLimitMiddleware(opts.RateLimit)}, submit...)
	}

	rg.GET("/contact", handler.ShowForm)
	rg.GET("/contact/complete", handler.Complete)
	rg.POST("/contact/complete", submit...)
}

// ShowForm renders the contact form with any pending flashes
func (h *ContactHandler) ShowForm(c *gin.Context) {
	sess := session.FromContext(c)
	sess.Set("username", "ichiro")

	http.SetCookie(c.Writer, &http.Cookie{
		Name:  demoCookieName,
		Value: demoCookieValue,
		Path:  "/",
	})

	username, _ := sess.Pop(oldUsernameKey)
	description, _ := sess.Pop(oldDescriptionKey)

	c.HTML(http.StatusOK, "contact.html", response.PageData(sess.ConsumeFlashes(), gin.H{
		"csrf_token":  middleware.CSRFToken(c),
		"username":    username,
		"description": description,
	}))
}

// Complete shows the acknowledgment page on GET and processes the form on POST
func (h *ContactHandler) Complete(c *gin.Context) {
	sess := session.FromContext(c)

	if err := parseForm(c.Request); err != nil {
		_ = c.Error(apperror.BadRequest("Malformed contact form", err))
		return
	}

	result, err := h.contactUC.HandleSubmission(c.Request.Context(), c.Request.Method, c.Request.PostForm)
	if err != nil {
		h.handleError(c, sess, err)
		return
	}

	switch result.Outcome {
	case domain.RenderAcknowledgment:
		c.HTML(http.StatusOK, "contact_complete.html", response.PageData(sess.ConsumeFlashes(), nil))

	case domain.RedirectToForm:
		sess.AddFlash(result.Flashes...)
		if h.preserveInput && result.Rejected != nil {
			sess.Set(oldUsernameKey, result.Rejected.Username)
			sess.Set(oldDescriptionKey, result.Rejected.Description)
		}
		security.DefaultLogger().LogContactEvent(c.Request.Context(), security.EventContactRejected,
			c.Request.PostForm.Get(domain.FieldEmail), c.ClientIP(), c.GetString("RequestID"),
			map[string]interface{}{"messages": len(result.Flashes)})
		h.record(c, "rejected")
		c.Redirect(http.StatusFound, "/contact")

	case domain.RedirectToAcknowledgment:
		sess.AddFlash(result.Flashes...)
		security.DefaultLogger().LogContactEvent(c.Request.Context(), security.EventContactSubmitted,
			c.Request.PostForm.Get(domain.FieldEmail), c.ClientIP(), c.GetString("RequestID"), nil)
		h.record(c, "sent")
		c.Redirect(http.StatusFound, "/contact/complete")

	default:
		_ = c.Error(apperror.Internal(errors.New("unknown contact outcome " + result.Outcome.String())))
	}
}

func (h *ContactHandler) handleError(c *gin.Context, sess *session.Session, err error) {
	ctx := c.Request.Context()
	requestID := c.GetString("RequestID")

	switch {
	case errors.Is(err, domain.ErrMalformedRequest):
		security.DefaultLogger().LogContactEvent(ctx, security.EventMalformedRequest, "", c.ClientIP(), requestID,
			map[string]interface{}{"error": err.Error()})
		h.record(c, "malformed")
		_ = c.Error(apperror.BadRequest("Malformed contact form", err))

	case errors.Is(err, domain.ErrMailDispatch):
		// the user gets a retry notice instead of an error page
		logger.Log.ErrorContext(ctx, "Failed to send contact email", "error", err, "request_id", requestID)
		security.DefaultLogger().LogContactEvent(ctx, security.EventMailDispatchFailed,
			c.Request.PostForm.Get(domain.FieldEmail), c.ClientIP(), requestID, nil)
		sess.AddFlash(domain.MailRetryMessage)
		h.record(c, "mail_failed")
		c.Redirect(http.StatusFound, "/contact")

	default:
		_ = c.Error(apperror.Internal(err))
	}
}

// parseForm fills PostForm from urlencoded and multipart bodies alike
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

func (h *ContactHandler) record(c *gin.Context, outcome string) {
	h.submissions.Add(c.Request.Context(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
