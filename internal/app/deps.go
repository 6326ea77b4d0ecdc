package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vidfriends/admin/internal/auth"
	"github.com/vidfriends/admin/internal/config"
	"github.com/vidfriends/admin/internal/db"
	"github.com/vidfriends/admin/internal/handlers"
	"github.com/vidfriends/admin/internal/middleware"
	"github.com/vidfriends/admin/internal/repositories"
	"github.com/vidfriends/admin/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	if err := cfg.ValidateServer(); err != nil {
		return handlers.Dependencies{}, fmt.Errorf("invalid server config: %w", err)
	}

	var assets handlers.AssetRemover = storage.NopRemover{}
	if cfg.ObjectStore.Enabled() {
		s3, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, err
		}
		assets = s3
	}

	users := repositories.NewPostgresUserRepository(pool)
	sessions := auth.NewManager(cfg.TokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, repositories.NewPostgresSessionStore(pool)).
		WithUserLookup(users)

	return handlers.Dependencies{
		Users:             users,
		Sessions:          sessions,
		Videos:            repositories.NewPostgresVideoRepository(pool),
		Assets:            assets,
		LoginLimiter:      middleware.NewIPRateLimiter(cfg.LoginRateLimit, time.Minute, cfg.LoginRateLimit, 10*time.Minute),
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}, nil
}
