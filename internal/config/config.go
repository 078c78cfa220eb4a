package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/money"
)

const (
	CatalogBuiltin  = "builtin"
	CatalogPostgres = "postgres"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration

	// Empty DSN runs the register fully in memory.
	DatabaseDSN   string
	RunMigrations bool
	CatalogSource string

	// Empty URL logs receipt events instead of publishing them.
	RabbitMQURL string

	CurrencySymbol string
	TelegramToken  string

	CORSAllowOrigins []string
}

// Load reads .env if present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8084"),
		ShutdownTimeout: parseDuration(getenv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		RequestTimeout:  parseDuration(getenv("REQUEST_TIMEOUT", "3s"), 3*time.Second),

		DatabaseDSN:   getenv("DATABASE_DSN", ""),
		RunMigrations: envBool("RUN_MIGRATIONS", true),
		CatalogSource: strings.ToLower(getenv("CATALOG_SOURCE", CatalogBuiltin)),

		RabbitMQURL: getenv("RABBITMQ_URL", ""),

		CurrencySymbol: getenv("CURRENCY_SYMBOL", money.DefaultCurrency),
		TelegramToken:  getenv("TELEGRAM_TOKEN", ""),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "*")),
	}

	if cfg.CatalogSource != CatalogPostgres {
		cfg.CatalogSource = CatalogBuiltin
	}
	return cfg
}

// UsePostgresCatalog is true only when a database is configured as well.
func (c Config) UsePostgresCatalog() bool {
	return c.CatalogSource == CatalogPostgres && c.DatabaseDSN != ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
