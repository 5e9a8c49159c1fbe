// Package session tracks the viewers connected to the live server.
//
// A browser on the /live websocket owns an interaction controller for the
// lifetime of its connection. The session records who is connected and which
// diagram they are looking at. Hover and selection stay in the controller and
// are gone when the connection closes.
//
// # Usage
//
//	sess := session.New(session.DefaultTTL)
//	sess.Diagram = d.Hash
//	store.Set(ctx, sess)
//	defer store.Delete(ctx, sess.ID)
//
//	active, err := store.List(ctx)
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session describes one connected viewer.
type Session struct {
	ID        string    `json:"id"`
	Diagram   string    `json:"diagram,omitempty"` // content hash of the diagram
	Remote    string    `json:"remote,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch marks the session as seen now and extends it by ttl.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now()
	s.LastSeen = now
	s.ExpiresAt = now.Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the live sessions, oldest first.
	List(ctx context.Context) ([]Session, error)

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// DefaultTTL is how long a session survives without activity. The server
// touches sessions on every event and keepalive, so only connections that
// vanished without a close frame ever reach it.
const DefaultTTL = 5 * time.Minute

// GenerateID returns a random session ID.
func GenerateID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like a generated session ID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// New creates an empty session.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        GenerateID(),
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: now.Add(ttl),
	}
}
