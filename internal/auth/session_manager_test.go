package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T) (*Manager, *InMemorySessionStore) {
	t.Helper()

	store := NewInMemorySessionStore()
	manager := NewManager("test-secret", 15*time.Minute, 24*time.Hour, store)
	return manager, store
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	manager, store := newTestManager(t)

	tokens, err := manager.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", tokens)
	}
	if !store.Has(tokens.RefreshToken) {
		t.Fatalf("refresh token not persisted")
	}

	principal, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal != "alice" {
		t.Fatalf("expected principal alice got %q", principal)
	}
}

func TestIssueRejectsEmptyPrincipal(t *testing.T) {
	manager, _ := newTestManager(t)

	if _, err := manager.Issue(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty principal")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager, _ := newTestManager(t)

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	manager.WithNowFunc(func() time.Time { return issued })

	tokens, err := manager.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.WithNowFunc(func() time.Time { return issued.Add(16 * time.Minute) })

	if _, err := manager.Verify(tokens.AccessToken); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken got %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	manager, _ := newTestManager(t)

	other := NewManager("another-secret", 15*time.Minute, 24*time.Hour, NewInMemorySessionStore())
	tokens, err := other.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(tokens.AccessToken); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken got %v", err)
	}

	if _, err := manager.Verify("not-a-jwt"); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken got %v", err)
	}
}

func TestRefreshRotatesAndConsumesToken(t *testing.T) {
	manager, store := newTestManager(t)

	tokens, err := manager.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rotated, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatalf("expected a fresh refresh token")
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatalf("spent refresh token must be deleted")
	}

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound got %v", err)
	}

	principal, err := manager.Verify(rotated.AccessToken)
	if err != nil || principal != "alice" {
		t.Fatalf("rotated access token invalid: principal=%q err=%v", principal, err)
	}
}

func TestRefreshRejectsExpiredSession(t *testing.T) {
	manager, store := newTestManager(t)

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	manager.WithNowFunc(func() time.Time { return issued })

	tokens, err := manager.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.WithNowFunc(func() time.Time { return issued.Add(25 * time.Hour) })

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired got %v", err)
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatalf("expired session must be purged")
	}
}

func TestRevoke(t *testing.T) {
	manager, store := newTestManager(t)

	tokens, err := manager.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.Revoke(context.Background(), tokens.RefreshToken)
	if store.Has(tokens.RefreshToken) {
		t.Fatalf("revoked refresh token must be deleted")
	}

	// Revoking an unknown or empty token is a no-op.
	manager.Revoke(context.Background(), "unknown")
	manager.Revoke(context.Background(), "")
}
