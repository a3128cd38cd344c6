package phone

import (
	"context"
	"sync"
)

// NewInMemoryStore returns a Store backed by an in-memory map.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{pending: make(map[storeKey]Verification)}
}

type storeKey struct {
	principal   string
	phoneNumber string
}

// InMemoryStore holds pending verifications in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	pending map[storeKey]Verification
}

// Save stores or overwrites the pending verification for the key.
func (s *InMemoryStore) Save(_ context.Context, v Verification) error {
	s.mu.Lock()
	s.pending[storeKey{v.Principal, v.PhoneNumber}] = v
	s.mu.Unlock()
	return nil
}

// Find retrieves the pending verification for the key.
func (s *InMemoryStore) Find(_ context.Context, principal, phoneNumber string) (Verification, error) {
	s.mu.RLock()
	v, ok := s.pending[storeKey{principal, phoneNumber}]
	s.mu.RUnlock()
	if !ok {
		return Verification{}, ErrNoPendingCode
	}
	return v, nil
}

// Delete removes the pending verification for the key.
func (s *InMemoryStore) Delete(_ context.Context, principal, phoneNumber string) error {
	s.mu.Lock()
	delete(s.pending, storeKey{principal, phoneNumber})
	s.mu.Unlock()
	return nil
}
