package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry keeps sessions in process memory. Sessions do not survive a restart.
type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryRegistry returns an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]*Session), now: time.Now}
}

// Create stores s.
func (r *MemoryRegistry) Create(_ context.Context, s *Session) error {
	copied := *s
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.sessions[s.ID] = &copied
	return nil
}

// Get returns the live session with id.
func (r *MemoryRegistry) Get(_ context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired(r.now()) {
		delete(r.sessions, id)
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

// Revoke removes the session. Unknown IDs are ignored.
func (r *MemoryRegistry) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MemoryRegistry) sweepLocked() {
	now := r.now()
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
		}
	}
}
