package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"stitchcore/internal/infra/persistence/postgres/testutil"
	"stitchcore/pkg/domain"
)

func newStubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err := NewStore("postgres://stub", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("new postgres store: %v", err)
	}
	return store, conn
}

func TestPostgresStorePersistsBuckets(t *testing.T) {
	store, conn := newStubStore(t)
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateGarment(domain.Garment{Name: "Snapshot Tee", Category: "tops"})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	for _, bucket := range bucketNames {
		if _, ok := conn.State[bucket]; !ok {
			t.Fatalf("expected bucket %s persisted, have %v", bucket, keys(conn.State))
		}
	}
	if payload := string(conn.State["garments"]); !strings.Contains(payload, "Snapshot Tee") {
		t.Fatalf("garments payload missing record: %s", payload)
	}
}

func TestPostgresStoreHydratesFromExistingState(t *testing.T) {
	first, _ := newStubStore(t)
	if _, err := first.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateMaterial(domain.Material{Name: "Denim"})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// a second store opened over the same database sees the snapshot
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return first.DB(), nil })
	defer restore()
	second, err := NewStore("postgres://stub", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	materials := second.ListMaterials()
	if len(materials) != 1 || materials[0].Name != "Denim" {
		t.Fatalf("expected hydrated material, got %+v", materials)
	}
}

func TestPostgresStorePingFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("postgres://stub", domain.NewRulesEngine()); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestPostgresStorePersistFailureSurfacing(t *testing.T) {
	store, conn := newStubStore(t)
	conn.FailBegin = true
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateGarment(domain.Garment{Name: "Doomed", Category: "tops"})
		return err
	}); err == nil {
		t.Fatalf("expected begin failure to surface")
	}

	conn.FailBegin = false
	conn.FailCommit = true
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateGarment(domain.Garment{Name: "Doomed Again", Category: "tops"})
		return err
	}); err == nil {
		t.Fatalf("expected commit failure to surface")
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
