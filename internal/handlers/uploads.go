package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/helmar/backend/internal/auth"
	"github.com/helmar/backend/internal/logging"
)

// UploadHandler accepts blob uploads and returns their references.
type UploadHandler struct {
	Blobs    BlobStore
	MaxBytes int64
}

var uploadKinds = map[string]struct{}{
	"video":  {},
	"avatar": {},
}

// Upload handles POST /api/v1/uploads (multipart, field "file", optional
// field "kind" of video|avatar). The stored object's URL is the opaque blob
// reference used on posts and profiles.
func (h UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if h.Blobs == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "blob storage is not configured")
		return
	}

	maxBytes := h.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 256 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("invalid upload payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	kind := strings.TrimSpace(r.FormValue("kind"))
	if kind == "" {
		kind = "video"
	}
	if _, ok := uploadKinds[kind]; !ok {
		respondError(ctx, w, http.StatusUnprocessableEntity, "kind must be video or avatar")
		return
	}

	key := fmt.Sprintf("%s/%s/%s%s", kind, principal, uuid.NewString(), path.Ext(header.Filename))

	ctx, span := logging.StartSpan(ctx, "uploads.save")
	defer span.End()

	url, err := h.Blobs.Save(ctx, key, file)
	if err != nil {
		logger.Error("store uploaded blob", "key", key, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]string{"url": url})
}
