package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incometracker/internal/core"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := CheckPassword(hash, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "secret2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "secret1")
	assert.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]string{
		"":         "auth.password_required",
		"abc12":    "auth.weak_password",
		"abcdefg":  "auth.weak_password",
		"1234567":  "auth.weak_password",
		"abc123":   "",
		"P4ssw0rd": "",
	}
	for pw, key := range cases {
		err := ValidatePassword(pw)
		if key == "" {
			assert.NoError(t, err, pw)
			continue
		}
		assert.Equal(t, []string{key}, core.Keys(err), pw)
	}
}

func TestValidateRegistration(t *testing.T) {
	cases := []struct {
		username, email, password, key string
	}{
		{"alice", "alice@example.com", "abc123", ""},
		{"", "alice@example.com", "abc123", "auth.username_required"},
		{"al", "alice@example.com", "abc123", "auth.username_invalid"},
		{"abcdefghijklmnopqrstu", "alice@example.com", "abc123", "auth.username_invalid"},
		{"alice", "", "abc123", "auth.email_required"},
		{"alice", "alice@example", "abc123", "auth.invalid_email"},
		{"alice", "alice@example.com", "abc", "auth.weak_password"},
	}
	for _, tc := range cases {
		err := ValidateRegistration(tc.username, tc.email, tc.password)
		if tc.key == "" {
			assert.NoError(t, err)
			continue
		}
		assert.ErrorIs(t, err, core.ErrValidation)
		assert.Equal(t, []string{tc.key}, core.Keys(err), tc)
	}
	assert.Equal(t, "bob@example.com", NormalizeEmail("  Bob@Example.COM "))
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(store, time.Hour).WithClock(func() time.Time { return now })

	s, err := m.Start(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.UserID)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)

	got, err := m.Resolve(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.UserID, got.UserID)

	require.NoError(t, m.End(ctx, s.Token))
	_, err = m.Resolve(ctx, s.Token)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	// ending twice is fine
	assert.NoError(t, m.End(ctx, s.Token))
}

func TestManagerRejectsBadTokens(t *testing.T) {
	m := NewManager(NewMemoryStore(), time.Hour)
	for _, token := range []string{"", "abc", "00000000-0000-0000-0000-000000000000"} {
		_, err := m.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, core.ErrUnauthorized, token)
	}
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(store, time.Hour).WithClock(func() time.Time { return now })

	expired, err := m.Start(ctx, 1)
	require.NoError(t, err)
	now = now.Add(30 * time.Minute)
	live, err := m.Start(ctx, 2)
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	_, err = m.Resolve(ctx, expired.Token)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = store.LoadSession(ctx, expired.Token)
	assert.True(t, errors.Is(err, ErrSessionNotFound), "expired session should be deleted on resolve")

	now = now.Add(time.Hour)
	n, err := m.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = store.LoadSession(ctx, live.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

type failingStore struct{ *MemoryStore }

func (f *failingStore) LoadSession(context.Context, string) (Session, error) {
	return Session{}, errors.New("store down")
}

func TestManagerStoreError(t *testing.T) {
	m := NewManager(&failingStore{NewMemoryStore()}, time.Hour)
	_, err := m.Resolve(context.Background(), "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrUnauthorized))
}
