package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/helmar/backend/internal/auth"
	"github.com/helmar/backend/internal/logging"
	"github.com/helmar/backend/internal/models"
	"github.com/helmar/backend/internal/repositories"
)

// NotificationHandler exposes the recipient-scoped notification surface.
type NotificationHandler struct {
	Notifications NotificationStore
}

// List handles GET /api/v1/notifications, newest first.
func (h NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	notifications, err := h.Notifications.ListForRecipient(ctx, principal)
	if err != nil {
		logging.FromContext(ctx).Error("list notifications", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load notifications")
		return
	}

	out := []notificationResponse{}
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:               n.ID,
			NotificationType: n.Kind,
			Message:          n.Message,
			IsRead:           n.IsRead,
			Timestamp:        n.CreatedAt,
		})
	}

	respondJSON(ctx, w, http.StatusOK, out)
}

// UpdateStatus handles PATCH /api/v1/notifications/{id}. Only the recipient
// may flip the read flag.
func (h NotificationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	notification, err := h.Notifications.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "notification not found")
			return
		}
		logger.Error("load notification", "notificationId", id, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load notification")
		return
	}

	if notification.Recipient != principal {
		respondError(ctx, w, http.StatusForbidden, "notification belongs to another principal")
		return
	}

	if err := h.Notifications.SetRead(ctx, id, req.IsRead); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "notification not found")
			return
		}
		logger.Error("update notification status", "notificationId", id, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update notification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateNotificationRequest struct {
	IsRead bool `json:"isRead"`
}

type notificationResponse struct {
	ID               string                  `json:"id"`
	NotificationType models.NotificationKind `json:"notificationType"`
	Message          string                  `json:"message"`
	IsRead           bool                    `json:"isRead"`
	Timestamp        time.Time               `json:"timestamp"`
}
