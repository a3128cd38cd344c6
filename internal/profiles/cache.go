package profiles

import (
	"context"
	"sync"
	"time"

	"github.com/helmar/backend/internal/models"
)

// Reader fetches profiles by principal.
type Reader interface {
	Find(ctx context.Context, principal string) (models.UserProfile, error)
}

type cacheEntry struct {
	profile models.UserProfile
	expires time.Time
}

// CachingReader wraps another Reader with a TTL-based in-memory cache.
// Profile reads back both the public profile endpoints and notification
// message rendering, so they are the hottest lookups in the service.
type CachingReader struct {
	base Reader
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingReader returns a Reader that caches lookups for the provided TTL.
func NewCachingReader(base Reader, ttl time.Duration) *CachingReader {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachingReader{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Find returns the cached profile when fresh, otherwise it delegates to the
// underlying reader and stores the result. Misses are not negatively cached.
func (c *CachingReader) Find(ctx context.Context, principal string) (models.UserProfile, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[principal]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.profile, nil
	}

	profile, err := c.base.Find(ctx, principal)
	if err != nil {
		return models.UserProfile{}, err
	}

	c.mu.Lock()
	c.items[principal] = cacheEntry{profile: profile, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return profile, nil
}

// Username resolves the username for a principal through the cache.
func (c *CachingReader) Username(ctx context.Context, principal string) (string, error) {
	profile, err := c.Find(ctx, principal)
	if err != nil {
		return "", err
	}
	return profile.Username, nil
}

// Invalidate drops the cached entry for a principal. Called after profile
// writes so readers never see a stale username past the write.
func (c *CachingReader) Invalidate(principal string) {
	c.mu.Lock()
	delete(c.items, principal)
	c.mu.Unlock()
}
