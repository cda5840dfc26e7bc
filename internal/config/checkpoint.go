package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/screener/pkg/database"
	"github.com/JaimeStill/screener/pkg/storage"
)

// Checkpoint backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBlob     = "blob"
)

const (
	EnvCheckpointBackend = "SCREENER_CHECKPOINT_BACKEND"
	EnvCheckpointDir     = "SCREENER_CHECKPOINT_DIR"
)

var databaseEnv = &database.Env{
	Host:            "SCREENER_DB_HOST",
	Port:            "SCREENER_DB_PORT",
	Name:            "SCREENER_DB_NAME",
	User:            "SCREENER_DB_USER",
	Password:        "SCREENER_DB_PASSWORD",
	SSLMode:         "SCREENER_DB_SSL_MODE",
	Path:            "SCREENER_DB_PATH",
	MaxOpenConns:    "SCREENER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SCREENER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SCREENER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SCREENER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "SCREENER_STORAGE_CONTAINER_NAME",
	ConnectionString: "SCREENER_STORAGE_CONNECTION_STRING",
	Prefix:           "SCREENER_STORAGE_PREFIX",
}

// CheckpointConfig selects where run checkpoints are persisted. Only the
// section matching Backend is finalized.
type CheckpointConfig struct {
	Backend  string          `toml:"backend"`
	Dir      string          `toml:"dir"`
	Database database.Config `toml:"database"`
	Storage  storage.Config  `toml:"storage"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CheckpointConfig) Finalize() error {
	if v := os.Getenv(EnvCheckpointBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvCheckpointDir); v != "" {
		c.Dir = v
	}
	if c.Backend == "" {
		c.Backend = BackendFile
	}

	switch c.Backend {
	case BackendFile:
		if c.Dir == "" {
			c.Dir = ".checkpoints"
		}
		return nil
	case BackendSQLite, BackendPostgres:
		c.Database.Driver = c.Backend
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		return nil
	case BackendBlob:
		if err := c.Storage.Finalize(storageEnv); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *CheckpointConfig) Merge(overlay *CheckpointConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
}
