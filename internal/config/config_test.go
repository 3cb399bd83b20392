package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "STORE_BACKEND", "PROCESSING_DELAY_MS", "CORS_ORIGINS", "CURRENCY"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.StoreBackend != "memory" {
		t.Fatalf("expected memory backend, got %q", cfg.StoreBackend)
	}
	if cfg.ProcessingDelay != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s processing delay, got %s", cfg.ProcessingDelay)
	}
	if cfg.CORSOrigins != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSOrigins)
	}
	if cfg.Currency != "USD" {
		t.Fatalf("expected USD, got %q", cfg.Currency)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("PROCESSING_DELAY_MS", "0")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	cfg := FromEnv()
	if cfg.StoreBackend != "redis" {
		t.Fatalf("expected redis, got %q", cfg.StoreBackend)
	}
	if cfg.ProcessingDelay != 0 {
		t.Fatalf("expected zero delay, got %s", cfg.ProcessingDelay)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("MONGO_DB=fromfile\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("MONGO_DB", "")
	os.Unsetenv("MONGO_DB")
	cfg := Load(path)
	if cfg.MongoDB != "fromfile" {
		t.Fatalf("expected value from env file, got %q", cfg.MongoDB)
	}
	os.Unsetenv("MONGO_DB")
}
