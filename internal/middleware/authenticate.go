package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/helmar/backend/internal/auth"
	"github.com/helmar/backend/internal/logging"
)

// TokenVerifier checks a bearer token and returns the principal it belongs to.
type TokenVerifier interface {
	Verify(accessToken string) (string, error)
}

// Authenticate resolves the caller's principal from the Authorization header.
// Requests without a token proceed as guests; requests with a bad token are
// rejected so clients can distinguish "logged out" from "token expired".
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == header || token == "" {
				unauthorized(w, "authorization header must use the Bearer scheme")
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("bearer token rejected", "error", err)
				unauthorized(w, "invalid or expired access token")
				return
			}

			ctx := auth.WithPrincipal(r.Context(), principal)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("principal", principal))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
