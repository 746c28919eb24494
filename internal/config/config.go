package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	MySQLDSN    string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/hotel?charset=utf8mb4&parseTime=True&loc=UTC"`
	ResetDB     bool   `env:"RESET_DB"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass   string `env:"REDIS_PASSWORD"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"change-me"`
	SwaggerHost string `env:"SWAGGER_HOST"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// AdminSignupKey gates admin self-registration. Empty disables it.
	AdminSignupKey string `env:"ADMIN_SIGNUP_KEY"`

	Currency        string        `env:"CURRENCY" envDefault:"usd"`
	BookingHoldTTL  time.Duration `env:"BOOKING_HOLD_TTL" envDefault:"15m"`
	ExpirySweepSpec string        `env:"EXPIRY_SWEEP_SPEC" envDefault:"@every 1m"`

	OTPTTL            time.Duration `env:"OTP_TTL" envDefault:"10m"`
	OTPResendCooldown time.Duration `env:"OTP_RESEND_COOLDOWN" envDefault:"60s"`
	OTPMaxAttempts    int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`

	Stripe struct {
		SecretKey     string `env:"STRIPE_SECRET_KEY"`
		WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	}

	Mail struct {
		APIKey    string `env:"MAILERSEND_API_KEY"`
		FromName  string `env:"MAIL_FROM_NAME" envDefault:"Hotel Reservations"`
		FromEmail string `env:"MAIL_FROM_EMAIL"`
	}

	NATSURL string `env:"NATS_URL"`

	S3 struct {
		Bucket          string `env:"S3_BUCKET"`
		Region          string `env:"S3_REGION" envDefault:"us-east-1"`
		Endpoint        string `env:"S3_ENDPOINT"`
		AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
		PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
	}
}

// Load builds Config from the environment, reading a local .env file first when present.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would make the service unsafe or unusable.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.MySQLDSN != "" {
		dsn, err := mysql.ParseDSN(c.MySQLDSN)
		if err != nil {
			return fmt.Errorf("parse MYSQL_DSN: %w", err)
		}
		// Stay dates are stored as UTC midnights in DATE columns.
		if dsn.Loc != time.UTC {
			return errors.New("MYSQL_DSN must use loc=UTC")
		}
	}
	if c.BookingHoldTTL <= 0 {
		return errors.New("BOOKING_HOLD_TTL must be positive")
	}
	if c.OTPTTL <= 0 {
		return errors.New("OTP_TTL must be positive")
	}
	if c.OTPMaxAttempts < 1 {
		return errors.New("OTP_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
