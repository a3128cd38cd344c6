package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/helmar/backend/internal/auth"
	"github.com/helmar/backend/internal/logging"
	"github.com/helmar/backend/internal/models"
	"github.com/helmar/backend/internal/repositories"
)

const searchResultLimit = 25

// ProfileHandler implements profile, search, and role endpoints.
type ProfileHandler struct {
	Profiles ProfileStore
	Cache    ProfileCache
	Accounts AccountStore
	NowFunc  func() time.Time
}

// Me handles GET /api/v1/profile. A missing profile is an observable state
// reported as a null body, distinct from any error.
func (h ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.Profiles.Find(ctx, principal)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusOK, nil)
			return
		}
		logging.FromContext(ctx).Error("load caller profile", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, ownProfileResponse(profile))
}

// Save handles PUT /api/v1/profile. The caller can only ever write its own
// profile, and the write replaces all caller-editable fields.
func (h ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req saveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondError(ctx, w, http.StatusUnprocessableEntity, "username must not be empty")
		return
	}

	profile := models.UserProfile{
		Principal:      principal,
		Username:       req.Username,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		UpdatedAt:      h.now(),
	}

	if err := h.Profiles.Upsert(ctx, profile); err != nil {
		logger.Error("save profile", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	h.Cache.Invalidate(principal)

	saved, err := h.Profiles.Find(ctx, principal)
	if err != nil {
		logger.Error("reload saved profile", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, ownProfileResponse(saved))
}

// Get handles GET /api/v1/profiles/{principal}, returning the public view.
func (h ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := chi.URLParam(r, "principal")
	profile, err := h.Cache.Find(ctx, principal)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusOK, nil)
			return
		}
		logging.FromContext(ctx).Error("load profile", "principal", principal, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, publicProfileResponse(profile))
}

// Search handles GET /api/v1/profiles/search?q= over usernames.
func (h ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondJSON(ctx, w, http.StatusOK, []profileResponse{})
		return
	}

	caller := auth.PrincipalFromContext(ctx)
	profiles, err := h.Profiles.Search(ctx, query, caller, searchResultLimit)
	if err != nil {
		logging.FromContext(ctx).Error("search profiles", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to search profiles")
		return
	}

	results := []profileResponse{}
	for _, profile := range profiles {
		results = append(results, publicProfileResponse(profile))
	}

	respondJSON(ctx, w, http.StatusOK, results)
}

// Role handles GET /api/v1/role. Unauthenticated callers are guests.
func (h ProfileHandler) Role(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondJSON(ctx, w, http.StatusOK, roleResponse{Role: models.RoleGuest})
		return
	}

	account, err := h.Accounts.FindByID(ctx, principal)
	if err != nil {
		logging.FromContext(ctx).Error("load caller account", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load role")
		return
	}

	respondJSON(ctx, w, http.StatusOK, roleResponse{Role: account.Role, IsAdmin: account.Role == models.RoleAdmin})
}

// AssignRole handles POST /api/v1/admin/roles. Admin callers only.
func (h ProfileHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	caller := auth.PrincipalFromContext(ctx)
	if caller == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	account, err := h.Accounts.FindByID(ctx, caller)
	if err != nil {
		logger.Error("load caller account", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to verify caller role")
		return
	}
	if account.Role != models.RoleAdmin {
		respondError(ctx, w, http.StatusForbidden, "admin role required")
		return
	}

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Principal == "" || !models.ValidRole(req.Role) {
		respondError(ctx, w, http.StatusUnprocessableEntity, "principal and a valid role are required")
		return
	}

	if err := h.Accounts.UpdateRole(ctx, req.Principal, req.Role); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "unknown principal")
			return
		}
		logger.Error("assign role", "error", err, "target", req.Principal)
		respondError(ctx, w, http.StatusInternalServerError, "failed to assign role")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type saveProfileRequest struct {
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

type assignRoleRequest struct {
	Principal string      `json:"principal"`
	Role      models.Role `json:"role"`
}

type profileResponse struct {
	Principal      string `json:"principal"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	PhoneVerified  bool   `json:"phoneVerified"`
}

type roleResponse struct {
	Role    models.Role `json:"role"`
	IsAdmin bool        `json:"isAdmin"`
}

// publicProfileResponse strips caller-only fields from the profile.
func publicProfileResponse(profile models.UserProfile) profileResponse {
	return profileResponse{
		Principal:      profile.Principal,
		Username:       profile.Username,
		Bio:            profile.Bio,
		ProfilePicture: profile.ProfilePicture,
		PhoneVerified:  profile.PhoneVerified,
	}
}

func ownProfileResponse(profile models.UserProfile) profileResponse {
	resp := publicProfileResponse(profile)
	resp.PhoneNumber = profile.PhoneNumber
	return resp
}

func (h ProfileHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
