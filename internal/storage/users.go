package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"incometracker/internal/core"
)

var userColumns = []string{"id", "username", "email", "created_at"}

func scanUser(row rowScanner, extra ...any) (core.User, error) {
	var (
		u       core.User
		created string
	)
	dest := append([]any{&u.ID, &u.Username, &u.Email, &created}, extra...)
	if err := row.Scan(dest...); err != nil {
		return core.User{}, err
	}
	t, err := parseTimestamp(created)
	if err != nil {
		return core.User{}, err
	}
	u.CreatedAt = t
	return u, nil
}

// CreateUser inserts the user and seeds the default categories in one
// transaction. Duplicate usernames or emails are conflicts.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (core.User, error) {
	var user core.User
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if taken, err := s.exists(ctx, tx, "users", sq.Eq{"username": username}); err != nil {
			return err
		} else if taken {
			return core.Conflict("auth.user_exists")
		}
		if taken, err := s.exists(ctx, tx, "users", sq.Eq{"email": email}); err != nil {
			return err
		} else if taken {
			return core.Conflict("auth.email_exists")
		}

		now := s.timestamp()
		query := s.sb.Insert("users").
			Columns("username", "email", "password_hash", "created_at").
			Values(username, email, passwordHash, now).
			Suffix("RETURNING " + joinColumns(userColumns))
		u, err := scanUser(query.RunWith(tx).QueryRowContext(ctx))
		if err != nil {
			if isUniqueViolation(err) {
				return core.Conflict("auth.user_exists")
			}
			return fmt.Errorf("insert user: %w", err)
		}

		seed := s.sb.Insert("categories").Columns("user_id", "name", "type", "color", "created_at")
		for _, c := range core.DefaultCategories {
			seed = seed.Values(u.ID, c.Name, string(c.Type), c.Color, now)
		}
		if _, err := seed.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("seed default categories: %w", err)
		}
		user = u
		return nil
	})
	return user, err
}

func (s *Store) User(ctx context.Context, id int64) (core.User, error) {
	query := s.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": id})
	u, err := scanUser(query.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFound("common.not_found")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// UserByLogin finds a user by username or email and returns the password hash.
func (s *Store) UserByLogin(ctx context.Context, login string) (core.User, string, error) {
	var hash string
	query := s.sb.Select(append(userColumns, "password_hash")...).
		From("users").
		Where(sq.Or{sq.Eq{"username": login}, sq.Eq{"email": strings.ToLower(login)}}).
		OrderBy("id").
		Limit(1)
	u, err := scanUser(query.RunWith(s.db).QueryRowContext(ctx), &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, "", core.Unauthorized("auth.invalid_credentials")
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("get user by login: %w", err)
	}
	return u, hash, nil
}

func (s *Store) PasswordHash(ctx context.Context, userID int64) (string, error) {
	var hash string
	query := s.sb.Select("password_hash").From("users").Where(sq.Eq{"id": userID})
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.NotFound("common.not_found")
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	res, err := s.sb.Update("users").
		Set("password_hash", hash).
		Where(sq.Eq{"id": userID}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFound("common.not_found")
	}
	return nil
}

// exists reports whether any row of table matches where.
func (s *Store) exists(ctx context.Context, runner sq.BaseRunner, table string, where sq.Sqlizer) (bool, error) {
	var n int64
	query := s.sb.Select("COUNT(*)").From(table).Where(where)
	if err := query.RunWith(runner).QueryRowContext(ctx).Scan(&n); err != nil {
		return false, fmt.Errorf("check %s: %w", table, err)
	}
	return n > 0, nil
}
