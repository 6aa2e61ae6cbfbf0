// Package auth implements password hashing and server-side sessions.
//
// A session is an opaque random token mapped to a user id with an expiry. The
// mapping lives in a SessionStore: the SQL database by default, or Redis when
// configured. Logging out deletes the mapping, so tokens are revocable.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"incometracker/internal/core"
)

// ErrSessionNotFound is returned by stores for unknown tokens.
var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(at time.Time) bool {
	return !at.Before(s.ExpiresAt)
}

type SessionStore interface {
	SaveSession(ctx context.Context, s Session) error
	// LoadSession returns ErrSessionNotFound when the token is unknown.
	LoadSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	// PurgeSessions removes sessions expired at the given time.
	PurgeSessions(ctx context.Context, at time.Time) (int64, error)
}

// Manager issues and resolves sessions with a fixed lifetime.
type Manager struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store SessionStore, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start creates a new session for userID.
func (m *Manager) Start(ctx context.Context, userID int64) (Session, error) {
	now := m.now().UTC()
	s := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.SaveSession(ctx, s); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Resolve returns the live session for token. Unknown, malformed or expired
// tokens yield a core.ErrUnauthorized error.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	if _, err := uuid.Parse(token); err != nil {
		return Session{}, core.Unauthorized("auth.login_required")
	}
	s, err := m.store.LoadSession(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return Session{}, core.Unauthorized("auth.login_required")
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if s.Expired(m.now()) {
		if err := m.store.DeleteSession(ctx, token); err != nil {
			return Session{}, fmt.Errorf("delete expired session: %w", err)
		}
		return Session{}, core.Unauthorized("auth.login_required")
	}
	return s, nil
}

// End deletes the session. Ending an unknown session is not an error.
func (m *Manager) End(ctx context.Context, token string) error {
	if err := m.store.DeleteSession(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Sweep deletes expired sessions and reports how many were removed.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	n, err := m.store.PurgeSessions(ctx, m.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration, onError func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
