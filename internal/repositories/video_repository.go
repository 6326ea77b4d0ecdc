package repositories

import (
	"context"

	"github.com/vidfriends/admin/internal/models"
)

// VideoRepository exposes data access for uploaded videos across all owners.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	ListAll(ctx context.Context) ([]models.Video, error)
	// Delete removes a video and returns the deleted record.
	Delete(ctx context.Context, id string) (models.Video, error)
	SetShared(ctx context.Context, id string, shared bool) (models.Video, error)
}
