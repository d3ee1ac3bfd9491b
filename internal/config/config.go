// Package config loads server configuration from the environment. A .env file
// in the working directory is read first when present; real environment
// variables win over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/prathap24reddy/billsplit-complete/internal/ledger"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	Port string

	DBDriver    string
	DBPath      string
	DatabaseURL string
	DBMaxConns  int32
	TxTimeout   time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	BalancePolicy ledger.BalancePolicy

	KafkaBrokers []string
	KafkaTopic   string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	LogLevel string
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")
	return FromEnv()
}

// FromEnv builds a Config from environment variables and applies defaults where needed.
func FromEnv() (*Config, error) {
	policy, err := ledger.ParseBalancePolicy(os.Getenv("BALANCE_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("BALANCE_POLICY: %w", err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:           getEnv("DB_PATH", "./data/ledger.db"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       int32(getEnvInt("DB_MAX_CONNS", 10)),
		TxTimeout:        time.Second * time.Duration(getEnvInt("TX_TIMEOUT_SECONDS", 30)),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         getEnvDuration("TOKEN_TTL", time.Hour),
		BalancePolicy:    policy,
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "ledger-events"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90m") or plain seconds ("3600").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if s, err := strconv.Atoi(v); err == nil {
		return time.Duration(s) * time.Second
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
