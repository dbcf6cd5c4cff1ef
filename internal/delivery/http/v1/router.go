package v1

import (
	"io/fs"
	"net/http"

	"go-minimalapp/config"
	"go-minimalapp/internal/delivery/http/middleware"
	"go-minimalapp/internal/delivery/http/response"
	"go-minimalapp/internal/domain"
	"go-minimalapp/internal/usecase"
	"go-minimalapp/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/metric"
)

type RouterDeps struct {
	ContactUC    domain.ContactUsecase
	HealthUC     usecase.HealthUsecase
	HTMLRender   render.HTMLRender
	Static       fs.FS
	SessionStore session.Store
	Redis        *goredis.Client // optional
	Meter        metric.Meter    // optional
	Config       *config.Config
	ServiceName  string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	secure := cfg.IsProduction()

	r := gin.New()
	r.HTMLRender = deps.HTMLRender
	r.HandleMethodNotAllowed = true

	// Global Middlewares
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(deps.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware(secure))
	r.Use(middleware.ErrorHandler())

	r.StaticFS("/static", http.FS(deps.Static))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", deps.HealthUC.Check(c.Request.Context()))
	})

	NewGreetingHandler(&r.RouterGroup)

	// Pages with session and form protection
	pages := r.Group("")
	pages.Use(session.Middleware(deps.SessionStore, session.Options{
		CookieName: "session",
		Secret:     cfg.SecretKey,
		TTL:        cfg.SessionTTL,
		Secure:     secure,
	}))
	if cfg.CSRFEnabled {
		pages.Use(middleware.CSRFMiddleware(secure))
	}

	NewContactHandler(pages, deps.ContactUC, ContactHandlerOptions{
		PreserveInput: cfg.ContactPreserveInput,
		RateLimit:     middleware.ContactRateLimitConfig(cfg.ContactRateLimit, deps.Redis),
		Meter:         deps.Meter,
	})

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "The requested page was not found.")
	})

	return r
}
