package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "FOUNDER_DATABASE_URL", "MAIN_DATABASE_URL", "JWT_SECRET",
		"REDIS_ADDR", "LISTEN_ADDR", "PORT", "LOG_LEVEL", "OTEL_EXPORTER_TYPE", "OTEL_EXPORTER_ENDPOINT",
		"FOUNDER_CONFIG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFallsBackToSharedDatabaseURL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://shared/db")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, errLoad := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Database.FounderDSN != "postgres://shared/db" || cfg.Database.MainDSN != "postgres://shared/db" {
		t.Fatalf("expected shared dsn for both databases, got %+v", cfg.Database)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.Metrics.CostWindowDays != DefaultCostWindowDays {
		t.Fatalf("expected default cost window, got %d", cfg.Metrics.CostWindowDays)
	}
}

func TestLoadSpecificURLsOverrideShared(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://shared/db")
	t.Setenv("MAIN_DATABASE_URL", "postgres://main/db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")

	cfg, errLoad := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Database.MainDSN != "postgres://main/db" {
		t.Fatalf("expected main dsn override, got %q", cfg.Database.MainDSN)
	}
	if cfg.Database.FounderDSN != "postgres://shared/db" {
		t.Fatalf("expected founder dsn fallback, got %q", cfg.Database.FounderDSN)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.ListenAddr)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen-addr: ":7000"
database:
  founder-dsn: "file:founder.db"
  main-dsn: "file:main.db"
jwt:
  secret: "abc"
  expiry: 2h
metrics:
  cost-window-days: 7
`
	if errWrite := os.WriteFile(path, []byte(content), 0o644); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.ListenAddr != ":7000" {
		t.Fatalf("expected :7000, got %q", cfg.ListenAddr)
	}
	if cfg.JWT.Expiry != 2*time.Hour {
		t.Fatalf("expected 2h expiry, got %s", cfg.JWT.Expiry)
	}
	if cfg.Metrics.CostWindowDays != 7 {
		t.Fatalf("expected cost window 7, got %d", cfg.Metrics.CostWindowDays)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	if _, errLoad := Load(filepath.Join(t.TempDir(), "missing.yaml")); errLoad == nil {
		t.Fatalf("expected error when no database url is configured")
	}
}

func TestLoadDatabaseSkipsJWTSecret(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://shared/db")

	path := filepath.Join(t.TempDir(), "missing.yaml")
	if _, errLoad := Load(path); errLoad == nil {
		t.Fatalf("expected Load to require a jwt secret")
	}
	cfg, errLoad := LoadDatabase(path)
	if errLoad != nil {
		t.Fatalf("load database: %v", errLoad)
	}
	if cfg.Database.MainDSN != "postgres://shared/db" {
		t.Fatalf("unexpected main dsn %q", cfg.Database.MainDSN)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("FOUNDER_CONFIG", "")
	if got := ResolveConfigPath(""); got != DefaultConfigPath {
		t.Fatalf("expected default path, got %q", got)
	}
	t.Setenv("FOUNDER_CONFIG", "/etc/founder.yaml")
	if got := ResolveConfigPath(""); got != "/etc/founder.yaml" {
		t.Fatalf("expected env path, got %q", got)
	}
	if got := ResolveConfigPath(" ./local.yaml "); got != "./local.yaml" {
		t.Fatalf("expected explicit path, got %q", got)
	}
}
