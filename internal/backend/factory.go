package backend

import (
	"context"
	"fmt"

	"paydash/internal/core"
	"paydash/internal/log"
	"paydash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
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
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"schema_version", repo.SchemaVersion(),
		log.FieldOperation, log.OpMigrate)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	ds := core.DefaultDataset()
	if config.Dataset != nil {
		ds = *config.Dataset
	}

	f.logger.Info("Initialized memory backend", log.FieldRows, ds.Len())

	return &BackendResult{Backend: &memoryBackend{ds: ds}}, nil
}

type memoryBackend struct {
	ds core.Dataset
}

func (m *memoryBackend) LoadDataset(context.Context) (core.Dataset, error) {
	if m.ds.Len() == 0 {
		return core.Dataset{}, core.ErrNoRows
	}
	return m.ds, nil
}

func (m *memoryBackend) Ping(context.Context) error { return nil }
