package backend

import (
	"context"
	"fmt"
	"log/slog"

	"incometracker/internal/amqp"
	"incometracker/internal/auth"
	"incometracker/internal/sheets"
	gsheet "incometracker/internal/sheets/google"
	"incometracker/internal/sheets/memory"
	"incometracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	config Config
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(config Config, logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{config: config, logger: logger}
}

var _ Factory = (*DefaultFactory)(nil)

// OpenStore connects to the database and applies migrations.
func (f *DefaultFactory) OpenStore(ctx context.Context) (*storage.Store, error) {
	store, err := storage.Open(ctx, f.config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", f.config.Storage.Dialect, err)
	}
	f.logger.Info("Initialized storage", "dialect", store.Dialect())
	return store, nil
}

// SessionStore returns the SQL session table, a Redis keyspace or a
// process-local map.
func (f *DefaultFactory) SessionStore(ctx context.Context, store *storage.Store) (*SessionResult, error) {
	switch f.config.Sessions {
	case RedisSessions:
		client, err := auth.DialRedis(ctx, f.config.RedisAddr, f.config.RedisPassword, f.config.RedisDB)
		if err != nil {
			return nil, err
		}
		f.logger.Info("Initialized redis session store", "addr", f.config.RedisAddr)
		return &SessionResult{Store: auth.NewRedisStore(client, ""), Cleanup: client.Close}, nil
	case SQLSessions:
		if store == nil {
			return nil, fmt.Errorf("sql session store needs an open store")
		}
		return &SessionResult{Store: store.Sessions()}, nil
	case MemorySessions:
		f.logger.Warn("Using in-memory sessions, logins are lost on restart")
		return &SessionResult{Store: auth.NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", f.config.Sessions)
	}
}

// Publisher connects to the broker. A connection failure is logged and the
// application runs without ledger events.
func (f *DefaultFactory) Publisher(ctx context.Context) (*PublisherResult, error) {
	if f.config.AMQPURL == "" {
		f.logger.Info("AMQP disabled, ledger events will not be published")
		return &PublisherResult{}, nil
	}
	client, err := amqp.NewClient(f.config.AMQPURL, f.config.AMQPExchange, f.config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", "error", err)
		return &PublisherResult{}, nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", f.config.AMQPExchange,
		"queue", f.config.AMQPQueue)
	return &PublisherResult{Publisher: client, Cleanup: client.Close}, nil
}

// Consumer connects to the broker for the worker; unlike Publisher a missing
// broker is an error.
func (f *DefaultFactory) Consumer(ctx context.Context) (*amqp.Client, error) {
	if f.config.AMQPURL == "" {
		return nil, fmt.Errorf("AMQP_URL is required for the ledger worker")
	}
	return amqp.NewClient(f.config.AMQPURL, f.config.AMQPExchange, f.config.AMQPQueue)
}

func (f *DefaultFactory) Mirror(ctx context.Context) (sheets.LedgerMirror, error) {
	switch f.config.Mirror {
	case SheetsMirror:
		cli, err := gsheet.New(ctx, f.config.Sheets)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets mirror", "sheet", f.config.Sheets.SheetName)
		return cli, nil
	case MemoryMirror:
		f.logger.Info("Initialized memory mirror")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported mirror backend: %s", f.config.Mirror)
	}
}
