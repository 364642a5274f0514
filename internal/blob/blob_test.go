package blob

import (
	"context"
	"testing"
)

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	ctx := context.Background()

	t.Setenv("STITCHCORE_BLOB_DRIVER", "memory")
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	t.Setenv("STITCHCORE_BLOB_DRIVER", "fs")
	t.Setenv("STITCHCORE_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	t.Setenv("STITCHCORE_BLOB_DRIVER", "gcs")
	if _, err := Open(ctx); err == nil {
		t.Fatal("unknown driver accepted")
	}
}

func TestOpenS3DriverRequiresBucket(t *testing.T) {
	t.Setenv("STITCHCORE_BLOB_DRIVER", "s3")
	t.Setenv("STITCHCORE_BLOB_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("expected missing bucket error")
	}
}
