package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/helmar/backend/internal/auth"
	"github.com/helmar/backend/internal/logging"
	"github.com/helmar/backend/internal/models"
	"github.com/helmar/backend/internal/repositories"
)

// VideoHandler provides endpoints for publishing and engaging with videos.
type VideoHandler struct {
	Videos   VideoStore
	Notifier Notifier
	NowFunc  func() time.Time
}

// Create handles POST /api/v1/videos.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid video payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(ctx, w, http.StatusUnprocessableEntity, "title must not be empty")
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		respondError(ctx, w, http.StatusUnprocessableEntity, "videoUrl must not be empty")
		return
	}

	post := models.VideoPost{
		ID:          uuid.NewString(),
		Creator:     principal,
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		CreatedAt:   h.now(),
	}

	if err := h.Videos.Create(ctx, post); err != nil {
		logger.Error("create video post", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create post")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]string{"id": post.ID})
}

// Feed handles GET /api/v1/videos.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx, span := logging.StartSpan(r.Context(), "videos.feed")
	defer span.End()

	posts, err := h.Videos.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list video posts", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load feed")
		return
	}

	out := []videoPostResponse{}
	for _, post := range posts {
		out = append(out, newVideoPostResponse(post))
	}

	respondJSON(ctx, w, http.StatusOK, out)
}

// Get handles GET /api/v1/videos/{id}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	post, err := h.Videos.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logging.FromContext(ctx).Error("load video post", "videoId", id, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load post")
		return
	}

	respondJSON(ctx, w, http.StatusOK, newVideoPostResponse(post))
}

// Like handles POST /api/v1/videos/{id}/like. The like toggles: a repeated
// call by the same principal removes the like instead of duplicating it.
func (h VideoHandler) Like(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	post, err := h.Videos.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("load video post", "videoId", id, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load post")
		return
	}

	liked, err := h.Videos.ToggleLike(ctx, id, principal)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("toggle like", "videoId", id, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to like post")
		return
	}

	// The like is durable at this point; a failed notification is logged
	// and never unwinds it.
	if liked {
		if err := h.Notifier.Dispatch(ctx, models.NotificationLike, principal, post.Creator); err != nil {
			logger.Warn("dispatch like notification", "videoId", id, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"liked": liked})
}

// Comment handles POST /api/v1/videos/{id}/comments.
func (h VideoHandler) Comment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		respondError(ctx, w, http.StatusUnprocessableEntity, "comment text must not be empty")
		return
	}

	id := chi.URLParam(r, "id")
	post, err := h.Videos.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("load video post", "videoId", id, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load post")
		return
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   id,
		Author:    principal,
		Text:      req.Text,
		CreatedAt: h.now(),
	}

	if err := h.Videos.AddComment(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("add comment", "videoId", id, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to add comment")
		return
	}

	if err := h.Notifier.Dispatch(ctx, models.NotificationComment, principal, post.Creator); err != nil {
		logger.Warn("dispatch comment notification", "videoId", id, "error", err)
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]string{"id": comment.ID})
}

type createVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

type videoPostResponse struct {
	ID          string            `json:"id"`
	Creator     string            `json:"creator"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	VideoURL    string            `json:"videoUrl"`
	Likes       []string          `json:"likes"`
	Comments    []commentResponse `json:"comments"`
	Timestamp   time.Time         `json:"timestamp"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func newVideoPostResponse(post models.VideoPost) videoPostResponse {
	comments := []commentResponse{}
	for _, c := range post.Comments {
		comments = append(comments, commentResponse{
			ID:        c.ID,
			Author:    c.Author,
			Text:      c.Text,
			Timestamp: c.CreatedAt,
		})
	}

	likes := post.Likes
	if likes == nil {
		likes = []string{}
	}

	return videoPostResponse{
		ID:          post.ID,
		Creator:     post.Creator,
		Title:       post.Title,
		Description: post.Description,
		VideoURL:    post.VideoURL,
		Likes:       likes,
		Comments:    comments,
		Timestamp:   post.CreatedAt,
	}
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
