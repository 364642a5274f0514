package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.go", "package x\n\nimport \"fmt\"\n\nvar _ = fmt.Sprintf\n")
	writeFile(t, dir, "bad.go", "package x\n\nimport _ \"stitchcore/internal/core\"\n")
	writeFile(t, dir, "bad_test.go", "package x\n\nimport _ \"stitchcore/internal/blob\"\n")

	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 {
		t.Fatalf("expected one violation (test files skipped), got %v", viols)
	}
}

func TestInternalImportForbidden(t *testing.T) {
	if !InternalImportForbidden("stitchcore/internal/core") {
		t.Fatal("internal import not flagged")
	}
	if InternalImportForbidden("github.com/shopspring/decimal") {
		t.Fatal("external import flagged")
	}
}
