package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"stitchcore/pkg/domain"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		g, err := tx.CreateGarment(domain.Garment{Name: "Persisted Tee", Category: "tops"})
		if err != nil {
			return err
		}
		m, err := tx.CreateMaterial(domain.Material{Name: "Cotton"})
		if err != nil {
			return err
		}
		_, err = tx.UpsertGarmentMaterial(domain.GarmentMaterial{GarmentID: g.ID, MaterialID: m.ID, Percentage: decimal.NewFromInt(100)})
		return err
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file missing: %v", err)
	}

	reloaded, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload sqlite store: %v", err)
	}
	defer func() { _ = reloaded.Close() }()
	garments := reloaded.ListGarments()
	if len(garments) != 1 || garments[0].Name != "Persisted Tee" {
		t.Fatalf("expected persisted garment, got %+v", garments)
	}
	if err := reloaded.View(ctx, func(view domain.TransactionView) error {
		rows := view.MaterialsFor(garments[0].ID)
		if len(rows) != 1 || !rows[0].Percentage.Equal(decimal.NewFromInt(100)) {
			return fmt.Errorf("expected composition to survive reload, got %+v", rows)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if reloaded.Path() != path {
		t.Fatalf("expected path %s, got %s", path, reloaded.Path())
	}
	if reloaded.DB() == nil {
		t.Fatalf("expected db handle")
	}
}

func TestSQLiteStoreSequencesSurviveReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seq.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateGarment(domain.Garment{Name: "First", Category: "tops"})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = store.Close()

	reloaded, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer func() { _ = reloaded.Close() }()
	var created domain.Garment
	if _, err := reloaded.RunInTransaction(ctx, func(tx domain.Transaction) error {
		g, err := tx.CreateGarment(domain.Garment{Name: "Second", Category: "tops"})
		created = g
		return err
	}); err != nil {
		t.Fatalf("create after reload: %v", err)
	}
	if created.ID != 2 {
		t.Fatalf("expected sequence continuation, got id %d", created.ID)
	}
}

func TestSQLiteStorePersistError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "closed.db"), domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	_ = store.DB().Close()
	if _, err := store.RunInTransaction(context.Background(), func(_ domain.Transaction) error { return nil }); err == nil {
		t.Fatalf("expected persist error after closing db")
	}
}

func TestSQLiteStoreBlockedTransactionNotPersisted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blocked.db")
	engine := domain.NewRulesEngine()
	engine.Register(blockAll{})
	store, err := NewStore(path, engine)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateGarment(domain.Garment{Name: "Blocked", Category: "tops"})
		return err
	}); err == nil {
		t.Fatalf("expected rule violation")
	}
	_ = store.Close()

	reloaded, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer func() { _ = reloaded.Close() }()
	if got := reloaded.ListGarments(); len(got) != 0 {
		t.Fatalf("expected nothing persisted, got %+v", got)
	}
}

type blockAll struct{}

func (blockAll) Name() string { return "block_all" }

func (blockAll) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "block_all",
		Severity: domain.SeverityBlock,
		Message:  "all mutations blocked",
	}}}, nil
}
