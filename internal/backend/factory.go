package backend

import (
	"context"
	"fmt"

	"bookkeeping/internal/log"
	"bookkeeping/internal/storage"
)

// cacheSize bounds the sqlite read cache; the client only keeps a handful of slots.
const cacheSize = 64

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentStorage),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	kv, err := storage.NewSQLite(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
	}

	f.logger.DebugContext(ctx, "Initialized SQLite storage", "db_path", config.SQLiteDBPath)

	if config.CacheTTL > 0 {
		cached := storage.NewCached(kv, cacheSize, config.CacheTTL)
		return &BackendResult{Storage: cached, Cleanup: cached.Close}, nil
	}
	return &BackendResult{
		Storage: kv,
		Cleanup: kv.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	kv := storage.NewMemory()

	f.logger.WarnContext(ctx, "Using memory storage, the session will not survive a restart")

	return &BackendResult{
		Storage: kv,
		Cleanup: kv.Close,
	}, nil
}
