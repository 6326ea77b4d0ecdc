package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidfriends/admin/internal/logging"
	"github.com/vidfriends/admin/internal/models"
	"github.com/vidfriends/admin/internal/repositories"
)

// VideoHandler serves the admin video endpoints.
type VideoHandler struct {
	Videos VideoStore
	Assets AssetRemover
}

// ListAll handles GET /api/videos/admin/all.
func (h VideoHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.Videos.ListAll(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list all videos failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list videos")
		return
	}

	respondJSON(ctx, w, http.StatusOK, videoListResponse{Videos: videos})
}

// Delete handles DELETE /api/videos/{id}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	logger := logging.FromContext(ctx).With("videoId", id)

	deleted, err := h.Videos.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("delete video failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete video")
		return
	}

	if deleted.AssetKey != "" {
		removeAssets(ctx, h.Assets, []string{deleted.AssetKey})
	}
	logger.Info("video deleted", "ownerId", deleted.Owner.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Share handles PATCH /api/videos/{id}/share.
func (h VideoHandler) Share(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	logger := logging.FromContext(ctx).With("videoId", id)

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid share payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IsShared == nil {
		respondError(ctx, w, http.StatusBadRequest, "isShared is required")
		return
	}

	video, err := h.Videos.SetShared(ctx, id, *req.IsShared)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("update share flag failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update sharing")
		return
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// removeAssets deletes stored files after their rows are gone. Failures leave
// orphaned objects behind and are logged rather than returned.
func removeAssets(ctx context.Context, assets AssetRemover, keys []string) {
	if assets == nil {
		return
	}
	logger := logging.FromContext(ctx)
	for _, key := range keys {
		if err := assets.Remove(ctx, key); err != nil {
			logger.Error("remove video asset failed", "assetKey", key, "error", err)
		}
	}
}

type shareRequest struct {
	IsShared *bool `json:"isShared"`
}

type videoListResponse struct {
	Videos []models.Video `json:"videos"`
}
