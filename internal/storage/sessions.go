package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"incometracker/internal/auth"
)

// SessionStore keeps sessions in the sessions table.
type SessionStore struct {
	store *Store
}

var _ auth.SessionStore = (*SessionStore)(nil)

func (s *Store) Sessions() *SessionStore {
	return &SessionStore{store: s}
}

func (ss *SessionStore) SaveSession(ctx context.Context, sess auth.Session) error {
	s := ss.store
	_, err := s.sb.Insert("sessions").
		Columns("token", "user_id", "created_at", "expires_at").
		Values(sess.Token, sess.UserID, formatTimestamp(sess.CreatedAt), formatTimestamp(sess.ExpiresAt)).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (ss *SessionStore) LoadSession(ctx context.Context, token string) (auth.Session, error) {
	s := ss.store
	var (
		sess             auth.Session
		created, expires string
	)
	err := s.sb.Select("token", "user_id", "created_at", "expires_at").
		From("sessions").
		Where(sq.Eq{"token": token}).
		RunWith(s.db).QueryRowContext(ctx).
		Scan(&sess.Token, &sess.UserID, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("get session: %w", err)
	}
	if sess.CreatedAt, err = parseTimestamp(created); err != nil {
		return auth.Session{}, err
	}
	if sess.ExpiresAt, err = parseTimestamp(expires); err != nil {
		return auth.Session{}, err
	}
	return sess, nil
}

func (ss *SessionStore) DeleteSession(ctx context.Context, token string) error {
	s := ss.store
	if _, err := s.sb.Delete("sessions").Where(sq.Eq{"token": token}).RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeSessions deletes sessions whose expiry is at or before at.
func (ss *SessionStore) PurgeSessions(ctx context.Context, at time.Time) (int64, error) {
	s := ss.store
	res, err := s.sb.Delete("sessions").
		Where(sq.LtOrEq{"expires_at": formatTimestamp(at)}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
