package config

import (
	"testing"
	"time"

	"github.com/prathap24reddy/billsplit-complete/internal/ledger"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "DB_MAX_CONNS", "TX_TIMEOUT_SECONDS",
		"TOKEN_TTL", "BALANCE_POLICY", "KAFKA_BROKERS", "KAFKA_TOPIC", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port: got %q want %q", cfg.Port, "8080")
	}
	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver: got %q want %q", cfg.DBDriver, DriverSQLite)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL: got %v want 1h", cfg.TokenTTL)
	}
	if cfg.BalancePolicy != ledger.PolicyWarn {
		t.Errorf("BalancePolicy: got %q want %q", cfg.BalancePolicy, ledger.PolicyWarn)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("KafkaBrokers: got %v want none", cfg.KafkaBrokers)
	}
	if cfg.TxTimeout != 30*time.Second {
		t.Errorf("TxTimeout: got %v want 30s", cfg.TxTimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("BALANCE_POLICY", "reject")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port: got %q", cfg.Port)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Errorf("DBDriver: got %q", cfg.DBDriver)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Errorf("TokenTTL: got %v", cfg.TokenTTL)
	}
	if cfg.BalancePolicy != ledger.PolicyReject {
		t.Errorf("BalancePolicy: got %q", cfg.BalancePolicy)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("KafkaBrokers: got %#v", cfg.KafkaBrokers)
	}
}

func TestFromEnvTokenTTLSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_TTL", "120")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.TokenTTL != 2*time.Minute {
		t.Errorf("TokenTTL: got %v want 2m", cfg.TokenTTL)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"unknown policy", map[string]string{"BALANCE_POLICY": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
