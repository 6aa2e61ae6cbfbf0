package core

import (
	"errors"
	"strings"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// KeyedError carries message catalog keys alongside one of the sentinel kinds,
// so the HTTP layer can localize the message and still use errors.Is.
type KeyedError struct {
	Kind error
	Keys []string
}

func (e *KeyedError) Error() string {
	return e.Kind.Error() + ": " + strings.Join(e.Keys, "; ")
}

func (e *KeyedError) Unwrap() error {
	return e.Kind
}

func Invalid(keys ...string) error {
	return &KeyedError{Kind: ErrValidation, Keys: keys}
}

func NotFound(key string) error {
	return &KeyedError{Kind: ErrNotFound, Keys: []string{key}}
}

func Conflict(key string) error {
	return &KeyedError{Kind: ErrConflict, Keys: []string{key}}
}

func Unauthorized(key string) error {
	return &KeyedError{Kind: ErrUnauthorized, Keys: []string{key}}
}

// Keys returns the catalog keys attached to err, if any.
func Keys(err error) []string {
	return keysOf(err)
}

func keysOf(err error) []string {
	var ke *KeyedError
	if errors.As(err, &ke) {
		return ke.Keys
	}
	return nil
}
