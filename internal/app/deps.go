package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/helmar/backend/internal/auth"
	"github.com/helmar/backend/internal/config"
	"github.com/helmar/backend/internal/db"
	"github.com/helmar/backend/internal/handlers"
	"github.com/helmar/backend/internal/middleware"
	"github.com/helmar/backend/internal/notify"
	"github.com/helmar/backend/internal/phone"
	"github.com/helmar/backend/internal/profiles"
	"github.com/helmar/backend/internal/repositories"
	"github.com/helmar/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The session manager is returned separately so the authentication
// middleware can share it.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, *auth.Manager, error) {
	accountRepo := repositories.NewPostgresAccountRepository(pool)
	profileRepo := repositories.NewPostgresProfileRepository(pool)
	videoRepo := repositories.NewPostgresVideoRepository(pool)
	graphRepo := repositories.NewPostgresGraphRepository(pool)
	notificationRepo := repositories.NewPostgresNotificationRepository(pool)

	profileCache := profiles.NewCachingReader(profileRepo, cfg.ProfileCacheTTL)
	dispatcher := notify.NewDispatcher(notificationRepo, profileCache, logger)
	verifier := phone.NewVerifier(phone.NewInMemoryStore(), cfg.PhoneCodeTTL, cfg.PhoneCodeAttempts)
	sessions := auth.NewManager(cfg.AuthSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, repositories.NewPostgresSessionStore(pool))
	limiter := middleware.NewKeyRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, cfg.RateLimit.TTL)

	var blobs handlers.BlobStore
	if strings.TrimSpace(cfg.ObjectStore.Bucket) != "" {
		store, err := storage.NewS3BlobStore(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, err
		}
		blobs = store
	}

	deps := handlers.Dependencies{
		Accounts:       accountRepo,
		Sessions:       sessions,
		Profiles:       profileRepo,
		ProfileCache:   profileCache,
		Videos:         videoRepo,
		Graph:          graphRepo,
		Notifications:  notificationRepo,
		Notifier:       dispatcher,
		Phone:          verifier,
		Blobs:          blobs,
		Limiter:        limiter,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	return deps, sessions, nil
}
