package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/helmar/backend/internal/auth"
	"github.com/helmar/backend/internal/logging"
	"github.com/helmar/backend/internal/phone"
	"github.com/helmar/backend/internal/repositories"
)

// PhoneHandler drives phone number verification for the caller's profile.
type PhoneHandler struct {
	Verifier PhoneVerifier
	Profiles ProfileStore
	Limiter  RateLimiter
}

// Start handles POST /api/v1/phone/start. The issued code is returned in the
// response body: delivery is in-band for this flow, and an SMS gateway would
// replace only this response field.
func (h PhoneHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if !allowRequest(h.Limiter, r, "phone") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many verification requests")
		return
	}

	var req phoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.PhoneNumber == "" {
		respondError(ctx, w, http.StatusUnprocessableEntity, "phone number is required")
		return
	}

	code, err := h.Verifier.Start(ctx, principal, req.PhoneNumber)
	if err != nil {
		logger.Error("start phone verification", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to start verification")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"code": code})
}

// Confirm handles POST /api/v1/phone/confirm.
func (h PhoneHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	principal := auth.PrincipalFromContext(ctx)
	if principal == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req confirmPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.PhoneNumber == "" || req.Code == "" {
		respondError(ctx, w, http.StatusUnprocessableEntity, "phone number and code are required")
		return
	}

	// The code is single-use, so make sure the verified flag has somewhere to
	// land before the verifier consumes it.
	if _, err := h.Profiles.Find(ctx, principal); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusUnprocessableEntity, "save a profile before verifying a phone number")
			return
		}
		logger.Error("load profile", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to confirm verification")
		return
	}

	if err := h.Verifier.Confirm(ctx, principal, req.PhoneNumber, req.Code); err != nil {
		switch {
		case errors.Is(err, phone.ErrInvalidCode), errors.Is(err, phone.ErrNoPendingCode):
			respondError(ctx, w, http.StatusUnprocessableEntity, "invalid verification code")
		case errors.Is(err, phone.ErrCodeExpired):
			respondError(ctx, w, http.StatusUnprocessableEntity, "verification code expired")
		case errors.Is(err, phone.ErrTooManyAttempts):
			respondError(ctx, w, http.StatusTooManyRequests, "too many attempts, request a new code")
		default:
			logger.Error("confirm phone verification", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to confirm verification")
		}
		return
	}

	if err := h.Profiles.SetPhoneVerified(ctx, principal, req.PhoneNumber); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusUnprocessableEntity, "save a profile before verifying a phone number")
			return
		}
		logger.Error("persist phone verification", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to persist verification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type phoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type confirmPhoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Code        string `json:"code"`
}
