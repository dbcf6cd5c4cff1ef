package usecase

import (
	"context"

	"go-minimalapp/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	redis          *goredis.Client
	mailConfigured bool
}

// NewHealthUsecase reports on optional backends. A nil client means redis is disabled.
func NewHealthUsecase(client *goredis.Client, mailConfigured bool) HealthUsecase {
	return &healthUsecase{redis: client, mailConfigured: mailConfigured}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "ok",
		"redis":  "disabled",
		"mail":   "log",
	}

	if u.redis != nil {
		status["redis"] = "available"
		if err := redis.HealthCheck(ctx, u.redis); err != nil {
			status["redis"] = "unavailable"
		}
	}
	if u.mailConfigured {
		status["mail"] = "smtp"
	}

	return status
}
