package handlers

import (
	"context"

	"github.com/vidfriends/admin/internal/auth"
	"github.com/vidfriends/admin/internal/models"
)

// UserStore captures the persistence operations required by the auth and user handlers.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) ([]string, error)
	SetRole(ctx context.Context, id, role string) (models.User, error)
}

// SessionManager issues, verifies and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, user models.User) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
	Verify(accessToken string) (auth.Claims, error)
}

// VideoStore captures persistence for the admin video workflows.
type VideoStore interface {
	ListAll(ctx context.Context) ([]models.Video, error)
	Delete(ctx context.Context, id string) (models.Video, error)
	SetShared(ctx context.Context, id string, shared bool) (models.Video, error)
}

// AssetRemover deletes stored video files.
type AssetRemover interface {
	Remove(ctx context.Context, key string) error
}
