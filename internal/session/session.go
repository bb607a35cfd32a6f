// Package session tracks issued admin sessions so tokens can be revoked before they expire.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown, revoked or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is one signed-in admin.
type Session struct {
	ID        string    `json:"id"`
	AdminID   uint64    `json:"admin_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New returns a session for the admin valid for ttl.
func New(adminID uint64, username, role string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Username:  username,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// MarshalBinary implements encoding.BinaryMarshaler for Redis.
func (s *Session) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for Redis.
func (s *Session) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, s)
}

// Registry stores live sessions.
type Registry interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Revoke(ctx context.Context, id string) error
}
