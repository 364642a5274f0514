package exports

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stitchcore/internal/blob"
	"stitchcore/internal/core"
)

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newExportFixture(t *testing.T) (*core.Service, *Worker, *blob.MemoryStore) {
	t.Helper()
	svc := core.NewInMemoryService(nil)
	store := blob.NewMemory()
	worker := NewWorker(svc, store, nil)
	worker.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := worker.Stop(ctx); err != nil {
			t.Fatalf("stop worker: %v", err)
		}
	})
	return svc, worker, store
}

func seedGarment(t *testing.T, svc *core.Service) core.Garment {
	t.Helper()
	ctx := context.Background()
	garment, _, err := svc.CreateGarment(ctx, core.CreateGarmentInput{Name: "Raglan Tee", Category: "tops"})
	if err != nil {
		t.Fatalf("create garment: %v", err)
	}
	cotton, _, err := svc.CreateMaterial(ctx, "Cotton")
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	if _, _, err := svc.AddMaterialToGarment(ctx, garment.ID, cotton.ID, pct(100)); err != nil {
		t.Fatalf("add material: %v", err)
	}
	return garment
}

func waitForJob(t *testing.T, worker *Worker, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := worker.GetJob(id)
		if !ok {
			t.Fatalf("job %s vanished", id)
		}
		if job.Status == StatusSucceeded || job.Status == StatusFailed {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return Job{}
}

func TestWorkerRendersBothFormats(t *testing.T) {
	svc, worker, store := newExportFixture(t)
	garment := seedGarment(t, svc)
	ctx := context.Background()

	job, err := worker.Enqueue(ctx, Input{GarmentID: garment.ID, RequestedBy: "designer"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if job.Status != StatusPending || len(job.Formats) != 2 {
		t.Fatalf("unexpected pending job %+v", job)
	}

	done := waitForJob(t, worker, job.ID)
	if done.Status != StatusSucceeded {
		t.Fatalf("job failed: %s", done.Error)
	}
	if len(done.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(done.Artifacts))
	}
	if done.CompletedAt == nil {
		t.Fatal("completed job missing CompletedAt")
	}

	var jsonKey, csvKey string
	for _, a := range done.Artifacts {
		switch a.Format {
		case FormatJSON:
			jsonKey = a.Key
		case FormatCSV:
			csvKey = a.Key
		}
	}

	_, rc, err := store.Get(ctx, jsonKey)
	if err != nil {
		t.Fatalf("get json artifact: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !strings.Contains(string(body), `"Raglan Tee"`) || !strings.Contains(string(body), `"total_percentage": "100"`) {
		t.Fatalf("unexpected json payload: %s", body)
	}

	_, rc, err = store.Get(ctx, csvKey)
	if err != nil {
		t.Fatalf("get csv artifact: %v", err)
	}
	body, _ = io.ReadAll(rc)
	_ = rc.Close()
	if !strings.Contains(string(body), "Cotton,100") {
		t.Fatalf("unexpected csv payload: %s", body)
	}
}

func TestWorkerFailsForMissingGarment(t *testing.T) {
	_, worker, _ := newExportFixture(t)
	job, err := worker.Enqueue(context.Background(), Input{GarmentID: 9999, Formats: []Format{FormatJSON}})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	done := waitForJob(t, worker, job.ID)
	if done.Status != StatusFailed {
		t.Fatalf("expected failure, got %s", done.Status)
	}
	if !strings.Contains(done.Error, "not found") {
		t.Fatalf("unexpected error %q", done.Error)
	}
}

func TestEnqueueValidation(t *testing.T) {
	_, worker, _ := newExportFixture(t)
	ctx := context.Background()
	if _, err := worker.Enqueue(ctx, Input{GarmentID: 0}); err == nil {
		t.Fatal("missing garment id accepted")
	}
	if _, err := worker.Enqueue(ctx, Input{GarmentID: 1, Formats: []Format{"parquet"}}); err == nil {
		t.Fatal("unsupported format accepted")
	}
}

func TestEnqueueDeduplicatesFormats(t *testing.T) {
	svc, worker, _ := newExportFixture(t)
	garment := seedGarment(t, svc)
	job, err := worker.Enqueue(context.Background(), Input{
		GarmentID: garment.ID,
		Formats:   []Format{FormatJSON, FormatJSON, FormatCSV},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if len(job.Formats) != 2 {
		t.Fatalf("expected deduplicated formats, got %v", job.Formats)
	}
	done := waitForJob(t, worker, job.ID)
	if done.Status != StatusSucceeded || len(done.Artifacts) != 2 {
		t.Fatalf("unexpected result %+v", done)
	}
}

func TestListJobsNewestFirst(t *testing.T) {
	svc, worker, _ := newExportFixture(t)
	garment := seedGarment(t, svc)
	ctx := context.Background()

	first, err := worker.Enqueue(ctx, Input{GarmentID: garment.ID, Formats: []Format{FormatJSON}})
	if err != nil {
		t.Fatalf("enqueue first: %v", err)
	}
	waitForJob(t, worker, first.ID)
	second, err := worker.Enqueue(ctx, Input{GarmentID: garment.ID, Formats: []Format{FormatCSV}})
	if err != nil {
		t.Fatalf("enqueue second: %v", err)
	}
	waitForJob(t, worker, second.ID)

	jobs := worker.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].CreatedAt.Before(jobs[1].CreatedAt) {
		t.Fatalf("jobs not newest-first: %v then %v", jobs[0].CreatedAt, jobs[1].CreatedAt)
	}
	if _, ok := worker.GetJob("unknown"); ok {
		t.Fatal("unknown job id resolved")
	}
}

func TestJobSnapshotIsolation(t *testing.T) {
	svc, worker, _ := newExportFixture(t)
	garment := seedGarment(t, svc)
	job, err := worker.Enqueue(context.Background(), Input{GarmentID: garment.ID, Formats: []Format{FormatJSON}})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	done := waitForJob(t, worker, job.ID)
	done.Artifacts[0].Key = "tampered"
	fresh, _ := worker.GetJob(job.ID)
	if fresh.Artifacts[0].Key == "tampered" {
		t.Fatal("snapshot mutation leaked into worker state")
	}
}
