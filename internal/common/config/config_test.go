package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Name != "shop-api" {
		t.Fatalf("unexpected service name: %s", cfg.Server.Name)
	}
	if cfg.Auth.TokenTTLHours != 24 {
		t.Fatalf("unexpected token ttl: %d", cfg.Auth.TokenTTLHours)
	}
	if cfg.RateLimit.LoginMaxAttempts != 5 || cfg.RateLimit.LoginWindowSeconds != 60 {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Cache.TicketTTLSeconds != 60 {
		t.Fatalf("unexpected cache ttl: %d", cfg.Cache.TicketTTLSeconds)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop-api.json")
	data := `{"server": {"name": "shop-api-test", "port": 9000}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Name != "shop-api-test" || cfg.Server.Port != 9000 {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	// 文件没写的字段保持默认
	if cfg.Database.Database != "mechanic_db" {
		t.Fatalf("default database name lost: %s", cfg.Database.Database)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "user:pass@tcp(db:3306)/shop")
	t.Setenv("SHOP_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.DSN != "user:pass@tcp(db:3306)/shop" {
		t.Fatalf("DATABASE_URL not applied: %s", cfg.Database.DSN)
	}
	if cfg.Database.DatabaseDSN() != "user:pass@tcp(db:3306)/shop" {
		t.Fatalf("explicit DSN should win: %s", cfg.Database.DatabaseDSN())
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("SHOP_JWT_SECRET not applied: %s", cfg.Auth.JWTSecret)
	}
}
