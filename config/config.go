package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DevSecretKey is only meant for local runs; LoadConfig warns when it is in use.
const DevSecretKey = "dev-secret-key-change-me"

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	SecretKey   string `env:"SECRET_KEY" envDefault:"dev-secret-key-change-me"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"DEBUG"`
	LogFile     string `env:"LOG_FILE"`

	// Templates and static assets are embedded unless a directory is given
	TemplateDir    string `env:"TEMPLATE_DIR"`
	StaticDir      string `env:"STATIC_DIR"`
	TemplateReload bool   `env:"TEMPLATE_RELOAD" envDefault:"false"`

	// Mail transport, passed through to the SMTP sender as-is
	MailServer        string        `env:"MAIL_SERVER"`
	MailPort          int           `env:"MAIL_PORT" envDefault:"587"`
	MailUseTLS        bool          `env:"MAIL_USE_TLS" envDefault:"false"`
	MailUseSSL        bool          `env:"MAIL_USE_SSL" envDefault:"false"`
	MailUsername      string        `env:"MAIL_USERNAME"`
	MailPassword      string        `env:"MAIL_PASSWORD"`
	MailDefaultSender string        `env:"MAIL_DEFAULT_SENDER"`
	MailTimeout       time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	MailMaxRetries    uint64        `env:"MAIL_MAX_RETRIES" envDefault:"3"`

	// Redis backs sessions and rate limiting; in-memory fallback when empty
	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CSRFEnabled          bool          `env:"CSRF_ENABLED" envDefault:"true"`
	ContactPreserveInput bool          `env:"CONTACT_PRESERVE_INPUT" envDefault:"false"`
	ContactRateLimit     int           `env:"RATE_LIMIT_CONTACT_PER_MINUTE" envDefault:"10"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.SecretKey == DevSecretKey {
		log.Println("WARNING: SECRET_KEY not set. Using development key for session signing.")
	}
	if cfg.MailServer == "" {
		log.Println("WARNING: MAIL_SERVER not configured. Contact emails will only be logged.")
	}

	return cfg, nil
}

// IsProduction reports whether the app runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || os.Getenv("GIN_MODE") == "release"
}
