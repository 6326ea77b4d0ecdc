package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vidfriends/admin/internal/logging"
	"github.com/vidfriends/admin/internal/middleware"
	"github.com/vidfriends/admin/internal/models"
	"github.com/vidfriends/admin/internal/repositories"
)

// UserHandler serves the admin user management endpoints.
type UserHandler struct {
	Users  UserStore
	Assets AssetRemover
}

// List handles GET /api/users/.
func (h UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Users.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list users failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list users")
		return
	}

	respondJSON(ctx, w, http.StatusOK, users)
}

// Delete handles DELETE /api/users/{id}.
func (h UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	logger := logging.FromContext(ctx).With("targetUserId", id)

	if claims, ok := middleware.ClaimsFromContext(ctx); ok && claims.UserID == id {
		respondError(ctx, w, http.StatusConflict, "administrators cannot delete their own account")
		return
	}

	keys, err := h.Users.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		logger.Error("delete user failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	removeAssets(ctx, h.Assets, keys)
	logger.Info("user deleted", "removedAssets", len(keys))
	w.WriteHeader(http.StatusNoContent)
}

// SetRole handles PATCH /api/users/{id}/role.
func (h UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	logger := logging.FromContext(ctx).With("targetUserId", id)

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid role payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Role = strings.TrimSpace(strings.ToLower(req.Role))
	if !models.ValidRole(req.Role) {
		respondError(ctx, w, http.StatusBadRequest, "role must be admin or user")
		return
	}

	if claims, ok := middleware.ClaimsFromContext(ctx); ok && claims.UserID == id && req.Role != models.RoleAdmin {
		respondError(ctx, w, http.StatusConflict, "administrators cannot revoke their own admin role")
		return
	}

	user, err := h.Users.SetRole(ctx, id, req.Role)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		logger.Error("update user role failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update role")
		return
	}

	logger.Info("user role changed", "role", user.Role)
	respondJSON(ctx, w, http.StatusOK, user)
}

type roleRequest struct {
	Role string `json:"role"`
}
