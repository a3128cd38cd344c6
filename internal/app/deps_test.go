package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helmar/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependenciesWiresHandlers(t *testing.T) {
	cfg := config.Config{
		AuthSecret:        "test-secret",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   24 * time.Hour,
		ProfileCacheTTL:   30 * time.Second,
		PhoneCodeTTL:      10 * time.Minute,
		PhoneCodeAttempts: 5,
		MaxUploadBytes:    64 << 20,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, sessions, err := buildDependencies(context.Background(), fakePool{}, cfg, logger)
	if err != nil {
		t.Fatalf("buildDependencies: %v", err)
	}

	if deps.Accounts == nil || deps.Profiles == nil || deps.Videos == nil ||
		deps.Graph == nil || deps.Notifications == nil {
		t.Fatalf("expected all repositories wired: %+v", deps)
	}
	if deps.Sessions == nil || sessions == nil {
		t.Fatalf("expected a session manager")
	}
	if deps.ProfileCache == nil || deps.Notifier == nil || deps.Phone == nil || deps.Limiter == nil {
		t.Fatalf("expected cache, notifier, phone verifier, and limiter wired")
	}
	if deps.MaxUploadBytes != cfg.MaxUploadBytes {
		t.Fatalf("expected upload limit %d got %d", cfg.MaxUploadBytes, deps.MaxUploadBytes)
	}

	// Blob storage is optional and stays nil without a configured bucket.
	if deps.Blobs != nil {
		t.Fatalf("expected no blob store without an object store bucket")
	}
}
