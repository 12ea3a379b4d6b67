package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(`
env: production
server:
  port: "9090"
  feedback_delay: 2s
redis:
  addr: localhost:6379
history:
  retention: 48h
`), 0o644)
	if err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "production" || cfg.Server.Port != "9090" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Server.FeedbackDelay != 2*time.Second || cfg.Server.AckDelay != 300*time.Millisecond {
		t.Fatalf("unexpected delays %v %v", cfg.Server.FeedbackDelay, cfg.Server.AckDelay)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTL != 2*time.Hour {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.History.Retention != 48*time.Hour || cfg.History.PruneSchedule != "@daily" {
		t.Fatalf("unexpected history config %+v", cfg.History)
	}
	if cfg.Catalog.TTL != 10*time.Minute {
		t.Fatalf("unexpected catalog ttl %v", cfg.Catalog.TTL)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ADMIN_PIN", "2468")
	t.Setenv("DATABASE_URL", "postgres://quiz:quiz@db:5432/quiz")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Admin.PIN != "2468" {
		t.Fatalf("expected pin from env, got %q", cfg.Admin.PIN)
	}
	if cfg.Postgres.URL != "postgres://quiz:quiz@db:5432/quiz" {
		t.Fatalf("expected database url from env, got %q", cfg.Postgres.URL)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected port from env, got %q", cfg.Server.Port)
	}
}
