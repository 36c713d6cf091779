package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type AppConfig struct {
	Port string
	Env  string
}

type CheckoutConfig struct {
	LowStockThreshold int
	NotifyTimeout     time.Duration
	AdminEmail        string
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type PushConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Checkout CheckoutConfig
	SMTP     SMTPConfig
	Push     PushConfig
}

// Load читает конфигурацию из окружения. Файл .env опционален.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: failed to load .env: %w", err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = getEnv("APP_PORT", "8080")
	cfg.App.Env = getEnv("APP_ENV", "development")

	for _, v := range []struct {
		dst  *string
		name string
	}{
		{&cfg.Postgres.Host, "DB_HOST"},
		{&cfg.Postgres.Port, "DB_PORT"},
		{&cfg.Postgres.User, "DB_USER"},
		{&cfg.Postgres.Password, "DB_PASSWORD"},
		{&cfg.Postgres.DBName, "DB_NAME"},
	} {
		*v.dst = os.Getenv(v.name)
		if *v.dst == "" {
			return nil, fmt.Errorf("config: %s is required", v.name)
		}
	}
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MaxConns = int32(getEnvInt("DB_MAX_CONNS", 10))
	cfg.Postgres.MinConns = int32(getEnvInt("DB_MIN_CONNS", 2))
	cfg.Postgres.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Postgres.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "migrations")

	cfg.Checkout.LowStockThreshold = getEnvInt("LOW_STOCK_THRESHOLD", 5)
	cfg.Checkout.NotifyTimeout = getEnvDuration("NOTIFY_TIMEOUT", 5*time.Second)
	cfg.Checkout.AdminEmail = getEnv("ADMIN_EMAIL", "admin@localhost")

	cfg.SMTP.Host = os.Getenv("SMTP_HOST")
	cfg.SMTP.Port = getEnv("SMTP_PORT", "587")
	cfg.SMTP.User = os.Getenv("SMTP_USER")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = getEnv("SMTP_FROM", "noreply@localhost")

	cfg.Push.WebhookURL = os.Getenv("PUSH_WEBHOOK_URL")
	cfg.Push.Timeout = getEnvDuration("PUSH_TIMEOUT", 3*time.Second)

	return cfg, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
