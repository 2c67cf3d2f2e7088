package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgetvs/internal/session"
	"budgetvs/internal/storage"
)

var (
	_ Backend = (*session.Store)(nil)
	_ Backend = (*storage.SQLiteRepository)(nil)
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized in-memory SQLite backend", "session_ttl", config.SessionTTL.String())

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := session.NewStore(config.MaxSessions, config.SessionTTL)

	f.logger.Info("Initialized memory backend",
		"max_sessions", config.MaxSessions,
		"session_ttl", config.SessionTTL.String())

	return &BackendResult{
		Backend: store,
		Cleanup: store.Close,
	}, nil
}
