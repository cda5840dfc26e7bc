// Package infrastructure assembles the systems a screening run depends on:
// logging, lifecycle coordination, and the configured checkpoint store with
// its backing database or blob container.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/screener/internal/checkpoint"
	"github.com/JaimeStill/screener/internal/config"
	"github.com/JaimeStill/screener/pkg/database"
	"github.com/JaimeStill/screener/pkg/lifecycle"
	"github.com/JaimeStill/screener/pkg/storage"
)

// Infrastructure holds the core systems required by a run. Database and
// Storage are nil unless the checkpoint backend needs them.
type Infrastructure struct {
	Lifecycle   *lifecycle.Coordinator
	Logger      *slog.Logger
	Checkpoints checkpoint.Store
	Database    database.System
	Storage     storage.System

	backend  string
	database *database.Config
}

// NewLogger creates the text logger used by every subsystem.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// New creates an Infrastructure from the configuration. It initializes all
// systems but does not start them; call Start separately.
func New(lc *lifecycle.Coordinator, cfg *config.Config) (*Infrastructure, error) {
	logger := NewLogger(os.Stderr, cfg.Level())

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		backend:   cfg.Checkpoint.Backend,
	}

	switch cfg.Checkpoint.Backend {
	case config.BackendFile:
		store, err := checkpoint.NewFileStore(cfg.Checkpoint.Dir)
		if err != nil {
			return nil, fmt.Errorf("checkpoint init failed: %w", err)
		}
		infra.Checkpoints = store

	case config.BackendSQLite, config.BackendPostgres:
		db, err := database.New(&cfg.Checkpoint.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.database = &cfg.Checkpoint.Database
		infra.Checkpoints = checkpoint.NewSQLStore(db.Connection(), cfg.Checkpoint.Database.Driver)

	case config.BackendBlob:
		blobs, err := storage.New(&cfg.Checkpoint.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = blobs
		infra.Checkpoints = checkpoint.NewBlobStore(blobs)

	default:
		return nil, fmt.Errorf("%w: %s", checkpoint.ErrUnknownBackend, cfg.Checkpoint.Backend)
	}

	return infra, nil
}

// Start registers infrastructure systems with the lifecycle coordinator.
// A SQLite checkpoint database is migrated here since it is local to the
// run; PostgreSQL schemas are applied with the migrate command.
func (i *Infrastructure) Start() error {
	if i.backend == config.BackendSQLite {
		if err := checkpoint.Migrate(i.database.Driver, i.database.URL()); err != nil {
			return fmt.Errorf("checkpoint migration failed: %w", err)
		}
	}

	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	return nil
}
