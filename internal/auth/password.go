package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"incometracker/internal/core"
)

const (
	MinPasswordLen = 6
	MinUsernameLen = 3
	MaxUsernameLen = 20
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A mismatch is not an
// error; a malformed hash is.
func CheckPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

// ValidatePassword requires at least six characters with a letter and a digit.
func ValidatePassword(password string) error {
	if password == "" {
		return core.Invalid("auth.password_required")
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if utf8.RuneCountInString(password) < MinPasswordLen || !letter || !digit {
		return core.Invalid("auth.weak_password")
	}
	return nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateRegistration(username, email, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.Invalid("auth.username_required")
	}
	if n := utf8.RuneCountInString(username); n < MinUsernameLen || n > MaxUsernameLen {
		return core.Invalid("auth.username_invalid")
	}
	if email == "" {
		return core.Invalid("auth.email_required")
	}
	if !emailPattern.MatchString(email) {
		return core.Invalid("auth.invalid_email")
	}
	return ValidatePassword(password)
}
