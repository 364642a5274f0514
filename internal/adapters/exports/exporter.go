// Package exports renders tech packs for garments asynchronously. A tech
// pack is the full garment aggregate (composition, attributes, supplier
// engagements) serialized to JSON or CSV and stored as a blob artifact.
package exports

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"stitchcore/internal/blob"
	"stitchcore/internal/core"
	"stitchcore/pkg/domain"
)

// Format selects a tech pack rendition.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Status describes the lifecycle stage of an export job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact describes one stored tech pack rendition.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Job tracks a tech pack export request and its resulting artifacts.
type Job struct {
	ID          string     `json:"id"`
	GarmentID   int64      `json:"garment_id"`
	Formats     []Format   `json:"formats"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Input represents an enqueue request for the worker.
type Input struct {
	GarmentID   int64
	Formats     []Format
	RequestedBy string
}

// GarmentSource supplies the aggregate a tech pack is rendered from.
// *core.Service satisfies it.
type GarmentSource interface {
	GetGarment(ctx context.Context, id int64) (core.GarmentDetail, bool, error)
}

// TechPack is the JSON document rendered for a garment.
type TechPack struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	TotalPercentage string             `json:"total_percentage"`
	Detail          core.GarmentDetail `json:"detail"`
}

// Worker renders tech packs asynchronously off a single queue goroutine.
type Worker struct {
	source GarmentSource
	store  blob.Store
	logger core.Logger

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id        string
	garmentID int64
}

// NewWorker constructs an export worker. A nil logger disables logging.
func NewWorker(source GarmentSource, store blob.Store, logger core.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		source: source,
		store:  store,
		logger: logger,
		queue:  make(chan task, 32),
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for in-flight work.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue schedules a tech pack export and returns the pending job.
func (w *Worker) Enqueue(_ context.Context, input Input) (Job, error) {
	if input.GarmentID <= 0 {
		return Job{}, domain.Validationf("garment id required")
	}
	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{})
	for _, f := range formats {
		if _, dup := seen[f]; dup {
			continue
		}
		if f != FormatJSON && f != FormatCSV {
			return Job{}, domain.Validationf("unsupported export format %q", f)
		}
		uniq = append(uniq, f)
		seen[f] = struct{}{}
	}

	id := newJobID()
	now := time.Now().UTC()
	job := Job{
		ID:          id,
		GarmentID:   input.GarmentID,
		Formats:     uniq,
		Status:      StatusPending,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &job
	snapshot := job.copy()
	w.mu.Unlock()

	select {
	case w.queue <- task{id: id, garmentID: input.GarmentID}:
	default:
		w.mu.Lock()
		delete(w.jobs, id)
		w.mu.Unlock()
		return Job{}, errors.New("export queue full")
	}
	return snapshot, nil
}

// GetJob returns a snapshot of the job record.
func (w *Worker) GetJob(id string) (Job, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	job, ok := w.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.copy(), true
}

// ListJobs returns snapshots of every job, newest first.
func (w *Worker) ListJobs() []Job {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Job, 0, len(w.jobs))
	for _, job := range w.jobs {
		out = append(out, job.copy())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (w *Worker) process(t task) {
	w.setStatus(t.id, StatusRunning, "")

	detail, found, err := w.source.GetGarment(w.ctx, t.garmentID)
	if err != nil {
		w.fail(t.id, fmt.Sprintf("load garment: %v", err))
		return
	}
	if !found {
		w.fail(t.id, fmt.Sprintf("garment %d not found", t.garmentID))
		return
	}

	formats := w.formatsFor(t.id)
	artifacts := make([]Artifact, 0, len(formats))
	for _, format := range formats {
		payload, contentType, err := render(format, detail)
		if err != nil {
			w.fail(t.id, fmt.Sprintf("render %s: %v", format, err))
			return
		}
		key := fmt.Sprintf("techpacks/%d/%s.%s", t.garmentID, t.id, format)
		info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: contentType,
			Metadata: map[string]string{
				"garment_id": strconv.FormatInt(t.garmentID, 10),
				"format":     string(format),
			},
		})
		if err != nil {
			w.fail(t.id, fmt.Sprintf("store %s artifact: %v", format, err))
			return
		}
		url := info.URL
		if signed, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{}); err == nil {
			url = signed
		}
		artifacts = append(artifacts, Artifact{
			Key:         key,
			Format:      format,
			ContentType: contentType,
			SizeBytes:   info.Size,
			URL:         url,
			CreatedAt:   info.LastModified,
		})
	}

	w.complete(t.id, artifacts)
	if w.logger != nil {
		w.logger.Info("tech pack exported", "job", t.id, "garment_id", t.garmentID, "artifacts", len(artifacts))
	}
}

func render(format Format, detail core.GarmentDetail) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		pack := TechPack{
			GeneratedAt:     time.Now().UTC(),
			TotalPercentage: detail.TotalPercentage().String(),
			Detail:          detail,
		}
		payload, err := json.MarshalIndent(pack, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return payload, "application/json", nil
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		if err := writer.Write([]string{"garment_id", "garment_name", "lifecycle_state", "material", "percentage"}); err != nil {
			return nil, "", err
		}
		g := detail.Garment
		for _, line := range detail.Materials {
			row := []string{
				strconv.FormatInt(g.ID, 10),
				g.Name,
				string(g.LifecycleState),
				line.Material.Name,
				line.Percentage.String(),
			}
			if err := writer.Write(row); err != nil {
				return nil, "", err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %s", format)
	}
}

func (w *Worker) formatsFor(id string) []Format {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if job, ok := w.jobs[id]; ok {
		return append([]Format(nil), job.Formats...)
	}
	return nil
}

func (w *Worker) setStatus(id string, status Status, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if job, ok := w.jobs[id]; ok {
		job.Status = status
		job.Error = message
		job.UpdatedAt = time.Now().UTC()
	}
}

func (w *Worker) complete(id string, artifacts []Artifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	defer w.mu.Unlock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusSucceeded
		job.Error = ""
		job.Artifacts = artifacts
		job.UpdatedAt = now
		job.CompletedAt = &now
	}
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusFailed
		job.Error = reason
		job.UpdatedAt = now
		job.CompletedAt = &now
	}
	w.mu.Unlock()
	if w.logger != nil {
		w.logger.Error("tech pack export failed", "job", id, "error", reason)
	}
}

func (j *Job) copy() Job {
	dup := *j
	dup.Formats = append([]Format(nil), j.Formats...)
	if len(j.Artifacts) > 0 {
		dup.Artifacts = append([]Artifact(nil), j.Artifacts...)
	}
	return dup
}

func newJobID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b[:])
}
