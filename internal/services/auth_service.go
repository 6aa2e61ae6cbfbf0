// Package services holds the use cases behind the HTTP API. Each service
// validates input, enforces ownership through explicit user ids and talks to
// storage through a narrow interface.
package services

import (
	"context"
	"fmt"
	"strings"

	"incometracker/internal/auth"
	"incometracker/internal/core"
)

type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (core.User, error)
	User(ctx context.Context, id int64) (core.User, error)
	UserByLogin(ctx context.Context, login string) (core.User, string, error)
	PasswordHash(ctx context.Context, userID int64) (string, error)
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
}

type AuthService struct {
	users    UserStore
	sessions *auth.Manager
}

func NewAuthService(users UserStore, sessions *auth.Manager) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

type Registration struct {
	Username string
	Email    string
	Password string
}

// Register creates the account together with its default categories.
func (s *AuthService) Register(ctx context.Context, in Registration) (core.User, error) {
	username := strings.TrimSpace(in.Username)
	email := auth.NormalizeEmail(in.Email)
	if err := auth.ValidateRegistration(username, email, in.Password); err != nil {
		return core.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, err
	}
	u, err := s.users.CreateUser(ctx, username, email, hash)
	if err != nil {
		return core.User{}, fmt.Errorf("register %q: %w", username, err)
	}
	return u, nil
}

// Login accepts a username or an email and opens a session.
func (s *AuthService) Login(ctx context.Context, login, password string) (core.User, auth.Session, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return core.User{}, auth.Session{}, core.Invalid("auth.username_required")
	}
	if password == "" {
		return core.User{}, auth.Session{}, core.Invalid("auth.password_required")
	}

	u, hash, err := s.users.UserByLogin(ctx, login)
	if err != nil {
		return core.User{}, auth.Session{}, err
	}
	ok, err := auth.CheckPassword(hash, password)
	if err != nil {
		return core.User{}, auth.Session{}, err
	}
	if !ok {
		return core.User{}, auth.Session{}, core.Unauthorized("auth.invalid_credentials")
	}

	sess, err := s.sessions.Start(ctx, u.ID)
	if err != nil {
		return core.User{}, auth.Session{}, err
	}
	return u, sess, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.End(ctx, token)
}

// Authenticate maps a session token to its user id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (int64, error) {
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return 0, err
	}
	return sess.UserID, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (core.User, error) {
	return s.users.User(ctx, userID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if current == "" {
		return core.Invalid("auth.password_required")
	}
	if err := auth.ValidatePassword(next); err != nil {
		return err
	}

	hash, err := s.users.PasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := auth.CheckPassword(hash, current)
	if err != nil {
		return err
	}
	if !ok {
		return core.Unauthorized("auth.current_password_wrong")
	}

	newHash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, newHash)
}
