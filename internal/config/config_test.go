package config

import (
	"testing"
	"time"
)

func TestLoadRequiresAuthSecret(t *testing.T) {
	t.Setenv("HELMAR_AUTH_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without HELMAR_AUTH_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HELMAR_AUTH_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port 8080 got %d", cfg.AppPort)
	}
	if cfg.AccessTokenTTL != 15*time.Minute || cfg.RefreshTokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token TTLs: %v / %v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.PhoneCodeAttempts != 5 || cfg.PhoneCodeTTL != 10*time.Minute {
		t.Fatalf("unexpected phone verification defaults: %d / %v", cfg.PhoneCodeAttempts, cfg.PhoneCodeTTL)
	}
	if cfg.MaxUploadBytes != 256<<20 {
		t.Fatalf("unexpected upload limit %d", cfg.MaxUploadBytes)
	}
	if cfg.RateLimit.Requests != 10 || cfg.RateLimit.Burst != 5 {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.ObjectStore.Bucket != "" || cfg.ObjectStore.Region != "us-east-1" {
		t.Fatalf("unexpected object store defaults: %+v", cfg.ObjectStore)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HELMAR_AUTH_SECRET", "secret")
	t.Setenv("HELMAR_PORT", "9090")
	t.Setenv("HELMAR_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("HELMAR_PHONE_CODE_ATTEMPTS", "3")
	t.Setenv("HELMAR_RATE_LIMIT_WINDOW", "30s")
	t.Setenv("HELMAR_S3_BUCKET", "helmar-media")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 9090 {
		t.Fatalf("expected port override got %d", cfg.AppPort)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("expected TTL override got %v", cfg.AccessTokenTTL)
	}
	if cfg.PhoneCodeAttempts != 3 {
		t.Fatalf("expected attempts override got %d", cfg.PhoneCodeAttempts)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Fatalf("expected window override got %v", cfg.RateLimit.Window)
	}
	if cfg.ObjectStore.Bucket != "helmar-media" {
		t.Fatalf("expected bucket override got %q", cfg.ObjectStore.Bucket)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("HELMAR_AUTH_SECRET", "secret")
	t.Setenv("HELMAR_PORT", "not-a-number")
	t.Setenv("HELMAR_ACCESS_TOKEN_TTL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 8080 || cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("malformed values must fall back to defaults: %d / %v", cfg.AppPort, cfg.AccessTokenTTL)
	}
}
