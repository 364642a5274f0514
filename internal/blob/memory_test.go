package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	if store.Driver() != DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	info, err := store.Put(ctx, "exports/1.json", bytes.NewReader([]byte(`{"a":1}`)), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"garment": "42"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ContentType != "application/json" {
		t.Fatalf("unexpected info %+v", info)
	}

	if _, err := store.Put(ctx, "exports/1.json", bytes.NewReader(nil), PutOptions{}); err == nil {
		t.Fatal("duplicate put accepted")
	}

	got, rc, err := store.Get(ctx, "exports/1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"a":1}` || got.Metadata["garment"] != "42" {
		t.Fatalf("unexpected content %q info %+v", body, got)
	}

	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatal("expected head error for missing key")
	}
	if _, _, err := store.Get(ctx, "missing"); err == nil {
		t.Fatal("expected get error for missing key")
	}
}

func TestMemoryStoreListAndDelete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	for _, key := range []string{"exports/b", "exports/a", "other/c"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "exports/")
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %d", err, len(list))
	}
	if list[0].Key != "exports/a" || list[1].Key != "exports/b" {
		t.Fatalf("list not key-ordered: %+v", list)
	}

	if ok, err := store.Delete(ctx, "exports/a"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "exports/a"); err != nil || ok {
		t.Fatalf("second delete should report missing: %v %v", ok, err)
	}

	if _, err := store.PresignURL(ctx, "exports/b", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
