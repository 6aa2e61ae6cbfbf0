package backend

import (
	"context"

	"incometracker/internal/auth"
	"incometracker/internal/services"
	"incometracker/internal/sheets"
	"incometracker/internal/storage"
)

// CleanupFunc releases a resource created by the factory.
type CleanupFunc func() error

// SessionResult carries the session store and its cleanup, if any.
type SessionResult struct {
	Store   auth.SessionStore
	Cleanup CleanupFunc
}

// PublisherResult holds a nil Publisher when ledger events are disabled.
type PublisherResult struct {
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Factory builds the infrastructure behind the services.
type Factory interface {
	OpenStore(ctx context.Context) (*storage.Store, error)
	SessionStore(ctx context.Context, store *storage.Store) (*SessionResult, error)
	Publisher(ctx context.Context) (*PublisherResult, error)
	Mirror(ctx context.Context) (sheets.LedgerMirror, error)
}

// SessionBackend selects where sessions live.
type SessionBackend string

const (
	SQLSessions    SessionBackend = "sql"
	RedisSessions  SessionBackend = "redis"
	MemorySessions SessionBackend = "memory"
)

func (b SessionBackend) IsValid() bool {
	switch b {
	case SQLSessions, RedisSessions, MemorySessions:
		return true
	default:
		return false
	}
}

// MirrorBackend selects the ledger mirror used by the worker.
type MirrorBackend string

const (
	MemoryMirror MirrorBackend = "memory"
	SheetsMirror MirrorBackend = "sheets"
)

func (b MirrorBackend) String() string {
	return string(b)
}

func (b MirrorBackend) IsValid() bool {
	switch b {
	case MemoryMirror, SheetsMirror:
		return true
	default:
		return false
	}
}
