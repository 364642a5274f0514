package core

import (
	"fmt"
	"os"

	"stitchcore/internal/infra/persistence/memory"
	"stitchcore/internal/infra/persistence/postgres"
	"stitchcore/internal/infra/persistence/sqlite"
	"stitchcore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

type (
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)

// StorageConfig selects a persistence backend.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// StorageConfigFromEnv reads the backend selection from environment variables.
// Defaults to sqlite when unset.
//
//	STITCHCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	STITCHCORE_SQLITE_PATH: path to sqlite file (default ./stitchcore.db)
//	STITCHCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func StorageConfigFromEnv() StorageConfig {
	driver := StorageDriver(os.Getenv("STITCHCORE_STORAGE_DRIVER"))
	if driver == "" {
		driver = StorageSQLite
	}
	return StorageConfig{
		Driver:      driver,
		SQLitePath:  os.Getenv("STITCHCORE_SQLITE_PATH"),
		PostgresDSN: os.Getenv("STITCHCORE_POSTGRES_DSN"),
	}
}

// OpenPersistentStore constructs the backend described by cfg, wiring the
// supplied rules engine into it.
func OpenPersistentStore(cfg StorageConfig, engine *RulesEngine) (PersistentStore, error) {
	switch cfg.Driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, engine)
	case StoragePostgres:
		return postgres.NewStore(cfg.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
