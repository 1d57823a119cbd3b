// Package session provides session management for CV editors.
//
// Editing a CV requires an authenticated session. Authentication is
// whitelist-based: a configured set of email addresses is allowed to edit,
// and a verified email yields a bearer session token.
//
// The package defines interfaces for session storage and login state
// management, with implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - redis: Redis-backed storage for production multi-instance deployments
//   - file: File-based storage for CLI applications
//
// # Architecture
//
// Sessions store the editor's identity with automatic expiration. The Store
// interface supports:
//   - Get/Set/Delete operations
//   - Automatic expiration checking
//   - Cleanup of expired sessions
//
// Login state tokens provide CSRF protection during the email verification
// flow. The StateStore interface supports:
//   - Token generation with TTL
//   - Single-use validation (tokens are deleted after validation)
//
// # Usage
//
// Create a session store:
//
//	// Development
//	store := session.NewMemoryStore()
//
//	// Production
//	store, err := session.NewRedisStore(ctx, "localhost:6379", "", 0)
//
//	// CLI
//	store, err := session.NewFileStore("")  // Uses ~/.config/virtualcv/sessions/
//
// Manage sessions:
//
//	// Create session after email verification
//	sess, err := session.New(&session.User{Email: email}, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	// Retrieve session
//	sess, err := store.Get(ctx, sessionID)
//	if err != nil {
//	    return err
//	}
//	if sess == nil || sess.IsExpired() {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")

	// ErrInvalidState is returned when a login state token is invalid or already used.
	ErrInvalidState = errors.New("invalid or expired state token")
)

// User identifies an authenticated editor.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Session stores editor session data.
//
// Server-side, ID doubles as the bearer token. Client-side (the CLI), the
// session is stored under a fixed ID and Token carries the API bearer token
// issued by the server.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token,omitempty"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserID returns a storage-compatible user identifier.
// Format: "email:{address}" to namespace by auth method.
// This format is used in cache keys and draft ownership.
func (s *Session) UserID() string {
	if s == nil || s.User == nil || s.User.Email == "" {
		return ""
	}
	return "email:" + strings.ToLower(s.User.Email)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	// Returns nil, ErrExpired if the session exists but has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (optional, may be no-op for Redis).
	Cleanup(ctx context.Context) error
}

// StateStore manages login state tokens for CSRF protection.
// State tokens are short-lived (typically 10 minutes) and single-use.
// For multi-instance deployments, use Redis to share state across instances.
type StateStore interface {
	// Generate creates a new state token and stores it with the given TTL.
	// Returns the generated state token.
	Generate(ctx context.Context, ttl time.Duration) (string, error)

	// Validate checks if a state token is valid and removes it (single-use).
	// Returns true if the token was valid and not expired.
	Validate(ctx context.Context, state string) (bool, error)

	// Cleanup removes expired state tokens (optional, may be no-op for Redis).
	Cleanup(ctx context.Context) error
}

// Default durations.
const (
	// DefaultTTL is the default session duration.
	DefaultTTL = 24 * time.Hour

	// DefaultStateTTL is the default login state token duration.
	DefaultStateTTL = 10 * time.Minute
)

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GenerateState creates a cryptographically secure random state token.
func GenerateState() (string, error) {
	return GenerateID() // Same implementation, different semantic meaning
}

// New creates a new session for the given user.
func New(user *User, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		User:      user,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// MockLocal creates a mock session for local development without authentication.
// This is used when --no-auth is enabled in standalone mode.
func MockLocal() *Session {
	now := time.Now()
	return &Session{
		ID: "local-session",
		User: &User{
			Email: "local@localhost",
			Name:  "Local User",
		},
		ExpiresAt: now.Add(365 * 24 * time.Hour), // Never expires
		CreatedAt: now,
	}
}

// =============================================================================
// Email Whitelist
// =============================================================================

// Whitelist is the set of email addresses allowed to edit.
// Matching is case-insensitive. An empty whitelist denies everyone.
type Whitelist map[string]bool

// NewWhitelist builds a whitelist from a list of email addresses.
func NewWhitelist(emails []string) Whitelist {
	w := make(Whitelist, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			w[e] = true
		}
	}
	return w
}

// Allowed reports whether the given email may edit.
func (w Whitelist) Allowed(email string) bool {
	return w[strings.ToLower(strings.TrimSpace(email))]
}
