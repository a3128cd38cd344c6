package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helmar/backend/internal/models"
	"github.com/helmar/backend/internal/repositories"
)

type countingReader struct {
	profiles map[string]models.UserProfile
	calls    int
}

func (r *countingReader) Find(_ context.Context, principal string) (models.UserProfile, error) {
	r.calls++
	profile, ok := r.profiles[principal]
	if !ok {
		return models.UserProfile{}, repositories.ErrNotFound
	}
	return profile, nil
}

func TestFindCachesWithinTTL(t *testing.T) {
	base := &countingReader{profiles: map[string]models.UserProfile{
		"alice": {Principal: "alice", Username: "alice"},
	}}
	cache := NewCachingReader(base, time.Minute)

	for i := 0; i < 3; i++ {
		profile, err := cache.Find(context.Background(), "alice")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if profile.Username != "alice" {
			t.Fatalf("unexpected profile %+v", profile)
		}
	}

	if base.calls != 1 {
		t.Fatalf("expected a single backing read got %d", base.calls)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	base := &countingReader{profiles: map[string]models.UserProfile{
		"alice": {Principal: "alice", Username: "alice"},
	}}
	cache := NewCachingReader(base, time.Minute)

	if _, err := cache.Find(context.Background(), "alice"); err != nil {
		t.Fatalf("find: %v", err)
	}

	base.profiles["alice"] = models.UserProfile{Principal: "alice", Username: "renamed"}
	cache.Invalidate("alice")

	profile, err := cache.Find(context.Background(), "alice")
	if err != nil {
		t.Fatalf("find after invalidate: %v", err)
	}
	if profile.Username != "renamed" {
		t.Fatalf("expected reloaded profile, got %+v", profile)
	}
	if base.calls != 2 {
		t.Fatalf("expected two backing reads got %d", base.calls)
	}
}

func TestMissesAreNotNegativelyCached(t *testing.T) {
	base := &countingReader{profiles: map[string]models.UserProfile{}}
	cache := NewCachingReader(base, time.Minute)

	if _, err := cache.Find(context.Background(), "ghost"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}

	// The profile appears later; the cache must not pin the earlier miss.
	base.profiles["ghost"] = models.UserProfile{Principal: "ghost", Username: "ghost"}
	profile, err := cache.Find(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("find after creation: %v", err)
	}
	if profile.Username != "ghost" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestUsernameResolvesThroughCache(t *testing.T) {
	base := &countingReader{profiles: map[string]models.UserProfile{
		"alice": {Principal: "alice", Username: "alice"},
	}}
	cache := NewCachingReader(base, time.Minute)

	username, err := cache.Username(context.Background(), "alice")
	if err != nil {
		t.Fatalf("username: %v", err)
	}
	if username != "alice" {
		t.Fatalf("expected alice got %q", username)
	}

	if _, err := cache.Username(context.Background(), "ghost"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
