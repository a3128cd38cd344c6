package auth

import "context"

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal stores the authenticated caller's principal on the context.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	if ctx == nil || principal == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext returns the caller's principal, or the empty string
// for guests.
func PrincipalFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if principal, ok := ctx.Value(principalKey).(string); ok {
		return principal
	}
	return ""
}
