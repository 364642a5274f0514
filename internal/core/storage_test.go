package core

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStorageConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("STITCHCORE_STORAGE_DRIVER", "")
	t.Setenv("STITCHCORE_SQLITE_PATH", "")
	t.Setenv("STITCHCORE_POSTGRES_DSN", "")
	cfg := StorageConfigFromEnv()
	if cfg.Driver != StorageSQLite {
		t.Fatalf("expected sqlite default, got %s", cfg.Driver)
	}
}

func TestStorageConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("STITCHCORE_STORAGE_DRIVER", "postgres")
	t.Setenv("STITCHCORE_POSTGRES_DSN", "postgres://example/db")
	cfg := StorageConfigFromEnv()
	if cfg.Driver != StoragePostgres || cfg.PostgresDSN != "postgres://example/db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestOpenPersistentStoreMemory(t *testing.T) {
	store, err := OpenPersistentStore(StorageConfig{Driver: StorageMemory}, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateMaterial(Material{Name: "Jersey"})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestOpenPersistentStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.db")
	store, err := OpenPersistentStore(StorageConfig{Driver: StorageSQLite, SQLitePath: path}, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	if _, err := OpenPersistentStore(StorageConfig{Driver: "cassandra"}, nil); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
