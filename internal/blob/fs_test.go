package blob

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFSStore(t *testing.T) *FilesystemStore {
	t.Helper()
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	return store
}

func TestFilesystemStoreRoundTrip(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "techpacks/42/export.json", bytes.NewReader([]byte("payload")), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"format": "json"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if !strings.HasPrefix(info.URL, "http://local.blob/") {
		t.Fatalf("unexpected url %q", info.URL)
	}

	head, err := store.Head(ctx, "techpacks/42/export.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ETag != info.ETag || head.Metadata["format"] != "json" {
		t.Fatalf("head mismatch %+v", head)
	}

	got, rc, err := store.Get(ctx, "techpacks/42/export.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" || got.Size != 7 {
		t.Fatalf("unexpected content %q info %+v", body, got)
	}

	if _, err := store.Put(ctx, "techpacks/42/export.json", bytes.NewReader(nil), PutOptions{}); err == nil {
		t.Fatal("duplicate put accepted")
	}
}

func TestFilesystemStoreKeySanitisation(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "  ", "../escape", "/absolute", "a/../../b"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), PutOptions{}); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}

func TestFilesystemStoreListAndDelete(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()
	for _, key := range []string{"exports/2.csv", "exports/1.json", "misc/readme"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte(key)), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "exports/")
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %d", err, len(list))
	}
	if list[0].Key != "exports/1.json" || list[1].Key != "exports/2.csv" {
		t.Fatalf("list not key-ordered: %+v", list)
	}

	if ok, err := store.Delete(ctx, "exports/1.json"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "exports/1.json"); err != nil || ok {
		t.Fatalf("second delete should report missing: %v %v", ok, err)
	}
	if _, err := store.Head(ctx, "exports/1.json"); err == nil {
		t.Fatal("head after delete should fail")
	}
}

func TestFilesystemStorePresign(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()
	url, err := store.PresignURL(ctx, "exports/x", SignedURLOptions{})
	if err != nil || !strings.Contains(url, "exports/x") {
		t.Fatalf("presign: %v %q", err, url)
	}
	if _, err := store.PresignURL(ctx, "exports/x", SignedURLOptions{Method: "PUT"}); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported for PUT, got %v", err)
	}
}

func TestFilesystemStoreDefaultRoot(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	store, err := NewFilesystem("")
	if err != nil {
		t.Fatalf("default root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "blobdata")); err != nil {
		t.Fatalf("default root directory missing: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
}
