package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helmar/backend/internal/auth"
	"github.com/helmar/backend/internal/logging"
	"github.com/helmar/backend/internal/models"
	"github.com/helmar/backend/internal/repositories"
)

// SocialHandler maintains follow edges between principals.
type SocialHandler struct {
	Graph    GraphStore
	Notifier Notifier
}

// Follow handles POST /api/v1/follows/{principal}. Repeated calls are no-ops
// and never produce duplicate edges or duplicate notifications.
func (h SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	caller := auth.PrincipalFromContext(ctx)
	if caller == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	target := chi.URLParam(r, "principal")
	if target == caller {
		respondError(ctx, w, http.StatusUnprocessableEntity, "cannot follow yourself")
		return
	}

	created, err := h.Graph.Follow(ctx, caller, target)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "unknown principal")
			return
		}
		logger.Error("create follow edge", "target", target, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to follow")
		return
	}

	if created {
		if err := h.Notifier.Dispatch(ctx, models.NotificationFollow, caller, target); err != nil {
			logger.Warn("dispatch follow notification", "target", target, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow handles DELETE /api/v1/follows/{principal}. Idempotent, silent.
func (h SocialHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller := auth.PrincipalFromContext(ctx)
	if caller == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	target := chi.URLParam(r, "principal")
	if err := h.Graph.Unfollow(ctx, caller, target); err != nil {
		logging.FromContext(ctx).Error("delete follow edge", "target", target, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to unfollow")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Followers handles GET /api/v1/profiles/{principal}/followers.
func (h SocialHandler) Followers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := chi.URLParam(r, "principal")
	followers, err := h.Graph.Followers(ctx, principal)
	if err != nil {
		logging.FromContext(ctx).Error("list followers", "principal", principal, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load followers")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string][]string{"followers": followers})
}

// Following handles GET /api/v1/profiles/{principal}/following.
func (h SocialHandler) Following(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := chi.URLParam(r, "principal")
	following, err := h.Graph.Following(ctx, principal)
	if err != nil {
		logging.FromContext(ctx).Error("list following", "principal", principal, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load following")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string][]string{"following": following})
}
