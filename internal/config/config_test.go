package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"AI_PROVIDER", "STORAGE_BACKEND", "INGEST_UPLOAD_FAILURE_POLICY",
		"CACHE_TTL", "RATE_LIMIT_RPS", "INGEST_MAX_UPLOAD_MB", "RETRY_MAX_ATTEMPTS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.AIProvider != "ollama" {
		t.Fatalf("expected default provider ollama, got %q", cfg.AIProvider)
	}
	if cfg.StorageBackend != "localfs" {
		t.Fatalf("expected default storage localfs, got %q", cfg.StorageBackend)
	}
	if cfg.IngestUploadFailurePolicy != "abort" {
		t.Fatalf("expected default policy abort, got %q", cfg.IngestUploadFailurePolicy)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected default cache ttl 5m, got %s", cfg.CacheTTL)
	}
	if cfg.RateLimitRPS != 10 {
		t.Fatalf("expected default rps 10, got %v", cfg.RateLimitRPS)
	}
	if cfg.IngestMaxUploadBytes != 50<<20 {
		t.Fatalf("expected 50MiB upload limit, got %d", cfg.IngestMaxUploadBytes)
	}
	if cfg.RetryMaxAttempts != 1 {
		t.Fatalf("expected fail-fast retry default, got %d", cfg.RetryMaxAttempts)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("INGEST_UPLOAD_FAILURE_POLICY", "isolate")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("SESSION_TOKEN_TTL", "1h")

	cfg := Load()
	if cfg.AIProvider != "gemini" {
		t.Fatalf("expected provider override, got %q", cfg.AIProvider)
	}
	if cfg.IngestUploadFailurePolicy != "isolate" {
		t.Fatalf("expected policy override, got %q", cfg.IngestUploadFailurePolicy)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("expected cache ttl 30s, got %s", cfg.CacheTTL)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.RateLimitRPS)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
	if cfg.SessionTokenTTL != time.Hour {
		t.Fatalf("expected token ttl 1h, got %s", cfg.SessionTokenTTL)
	}
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("CACHE_SIZE", "lots")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("BREAKER_ENABLED", "maybe")

	cfg := Load()
	if cfg.CacheSize != 4096 {
		t.Fatalf("expected cache size fallback, got %d", cfg.CacheSize)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected cache ttl fallback, got %s", cfg.CacheTTL)
	}
	if !cfg.BreakerEnabled {
		t.Fatalf("expected breaker default on malformed value")
	}
}
