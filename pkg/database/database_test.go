package database_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/screener/pkg/database"
	"github.com/JaimeStill/screener/pkg/lifecycle"
)

func sqliteConfig(t *testing.T) *database.Config {
	t.Helper()
	cfg := &database.Config{Path: filepath.Join(t.TempDir(), "test.db")}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestNewSQLitePing(t *testing.T) {
	sys, err := database.New(sqliteConfig(t), slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sys.Connection().Close()

	if sys.Ready() {
		t.Error("should not be ready before ping")
	}
	if err := sys.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if !sys.Ready() {
		t.Error("should be ready after ping")
	}
	if sys.Driver() != database.DriverSQLite {
		t.Errorf("Driver() = %s, want sqlite", sys.Driver())
	}
}

func TestNewSetsPoolParams(t *testing.T) {
	cfg := &database.Config{
		Driver:          database.DriverPostgres,
		Name:            "testdb",
		User:            "testuser",
		MaxOpenConns:    42,
		ConnMaxLifetime: "10m",
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	sys, err := database.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sys.Connection().Close()

	if got := sys.Connection().Stats().MaxOpenConnections; got != 42 {
		t.Errorf("MaxOpenConnections = %d, want 42", got)
	}
}

func TestStartLifecycle(t *testing.T) {
	sys, err := database.New(sqliteConfig(t), slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lc := lifecycle.New(context.Background())
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	if !sys.Ready() {
		t.Error("should be ready after startup")
	}
	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := sys.Connection().Ping(); err == nil {
		t.Error("connection should be closed after shutdown")
	}
}
