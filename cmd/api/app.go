package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go-minimalapp/config"
	v1 "go-minimalapp/internal/delivery/http/v1"
	"go-minimalapp/internal/usecase"
	"go-minimalapp/pkg/email"
	"go-minimalapp/pkg/logger"
	"go-minimalapp/pkg/redis"
	"go-minimalapp/pkg/render"
	"go-minimalapp/pkg/session"
	"go-minimalapp/pkg/telemetry"
	"go-minimalapp/pkg/validation"
	"go-minimalapp/web"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

const serviceName = "minimalapp"

type app struct {
	router    *gin.Engine
	telemetry telemetry.Provider
	redis     *goredis.Client
}

func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// buildApp wires configuration into the router. Redis is optional: without it
// sessions and rate limits live in memory.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := telemetry.New(ctx, telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Insecure:     !cfg.IsProduction(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	a := &app{telemetry: tp}

	var store session.Store = session.NewMemoryStore()
	redisClient, err := redis.Connect(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case err == nil:
		a.redis = redisClient
		store = session.NewRedisStore(redisClient)
	case errors.Is(err, redis.ErrNotConfigured):
		logger.Log.Warn("REDIS_URL not configured. Sessions and rate limits use in-memory storage.")
	default:
		logger.Log.Warn("Redis unavailable, falling back to in-memory storage", "error", err)
	}

	templates := web.Templates()
	static := web.Static()
	if cfg.TemplateDir != "" {
		templates = os.DirFS(cfg.TemplateDir)
	}
	if cfg.StaticDir != "" {
		static = os.DirFS(cfg.StaticDir)
	}

	renderer, err := render.New(templates)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if cfg.TemplateReload && cfg.TemplateDir != "" {
		if err := renderer.Watch(ctx, cfg.TemplateDir); err != nil {
			logger.Log.Warn("Template reload disabled", "error", err)
		}
	}

	emailService := email.NewEmailService(cfg, tp.Tracer("email"))
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not configured - contact confirmations are only logged")
	}

	contactUC := usecase.NewContactUsecase(renderer, emailService, validation.New())

	a.router = v1.NewRouter(v1.RouterDeps{
		ContactUC:    contactUC,
		HealthUC:     usecase.NewHealthUsecase(a.redis, emailService.IsConfigured()),
		HTMLRender:   renderer,
		Static:       static,
		SessionStore: store,
		Redis:        a.redis,
		Meter:        tp.Meter("contact"),
		Config:       cfg,
		ServiceName:  serviceName,
	})

	return a, nil
}
