package core

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

type captureLogger struct{ calls []string }

func (c *captureLogger) Debug(msg string, _ ...any) { c.calls = append(c.calls, "d:"+msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.calls = append(c.calls, "i:"+msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.calls = append(c.calls, "w:"+msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.calls = append(c.calls, "e:"+msg) }

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus, predicate func(AuditEntry) bool) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			if predicate == nil || predicate(entry) {
				return true
			}
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureTracer struct {
	ended []spanRecord
}

type spanRecord struct {
	op  string
	err error
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, record := range c.ended {
		if record.op == op && (record.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

func TestServiceEmitsObservabilitySignals(t *testing.T) {
	ctx := context.Background()
	audit := &captureAuditRecorder{}
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	log := &captureLogger{}

	svc := NewInMemoryService(nil,
		WithAuditRecorder(audit),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
		WithLogger(log),
	)

	garment, _, err := svc.CreateGarment(ctx, CreateGarmentInput{Name: "Observed Tee", Category: "tops"})
	if err != nil {
		t.Fatalf("create garment: %v", err)
	}
	if !audit.has("create_garment", AuditStatusSuccess, func(entry AuditEntry) bool { return entry.EntityID == garment.ID }) {
		t.Fatalf("expected audit entry for create_garment success")
	}
	if !metrics.has("create_garment", true) {
		t.Fatalf("expected metrics entry for create_garment")
	}
	if !tracer.has("create_garment", true) {
		t.Fatalf("expected trace span for create_garment")
	}

	if _, err := svc.DeleteMaterial(ctx, 404); err == nil {
		t.Fatalf("expected delete_material error for missing id")
	}
	if !audit.has("delete_material", AuditStatusError, nil) {
		t.Fatalf("expected audit error entry for delete_material")
	}
	if !metrics.has("delete_material", false) {
		t.Fatalf("expected metrics entry for failed delete_material")
	}
	if !tracer.has("delete_material", false) {
		t.Fatalf("expected trace span for failed delete_material")
	}

	var sawError bool
	for _, call := range log.calls {
		if strings.HasPrefix(call, "e:") {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected error log entry, got %v", log.calls)
	}
}

func TestAuditEntryCarriesMetadataAndClock(t *testing.T) {
	fixed := time.Date(2026, 5, 2, 16, 45, 0, 0, time.UTC)
	audit := &captureAuditRecorder{}
	svc := NewInMemoryService(nil,
		WithAuditRecorder(audit),
		WithClock(ClockFunc(func() time.Time { return fixed })),
	)

	material, _, err := svc.CreateMaterial(context.Background(), "Hemp")
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Entity != EntityMaterial || entry.Action != ActionCreate {
		t.Fatalf("unexpected metadata %+v", entry)
	}
	if entry.EntityID != material.ID {
		t.Fatalf("expected entity id %d, got %d", material.ID, entry.EntityID)
	}
	if !entry.Timestamp.Equal(fixed) {
		t.Fatalf("expected timestamp %v, got %v", fixed, entry.Timestamp)
	}
}

func TestRecordAuditIgnoresUnknownOperation(t *testing.T) {
	audit := &captureAuditRecorder{}
	svc := NewInMemoryService(nil, WithAuditRecorder(audit))
	svc.recordAudit(context.Background(), "unknown_operation", 1, time.Second, AuditStatusSuccess)
	if len(audit.entries) != 0 {
		t.Fatalf("expected no audit entries for unknown operation, got %d", len(audit.entries))
	}
}

func TestDefaultServiceOptions(t *testing.T) {
	opts := defaultServiceOptions()
	if opts.clock == nil || opts.logger == nil || opts.audit == nil || opts.metrics == nil || opts.tracer == nil {
		t.Fatalf("expected defaults populated")
	}
	_ = opts.clock.Now()
	opts.logger.Debug("noop")
	opts.logger.Info("noop")
	opts.logger.Warn("noop")
	opts.logger.Error("noop")
	opts.audit.Record(context.Background(), AuditEntry{})
	opts.metrics.Observe(context.Background(), "noop", true, 0)
	ctx, span := opts.tracer.Start(context.Background(), "noop")
	if ctx == nil {
		t.Fatalf("expected context from tracer")
	}
	span.End(nil)
}

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatalf("expected generated name")
	}
	rec.Observe(context.Background(), "create_garment", true, 20*time.Millisecond)
	rec.Observe(context.Background(), "create_garment", false, 5*time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Millisecond) // ignored

	snap := rec.Snapshot()
	if snap.DurationsMS["create_garment"] < 24 {
		t.Fatalf("expected accumulated duration, got %v", snap.DurationsMS)
	}
	if snap.Results["create_garment"]["success"] != 1 || snap.Results["create_garment"]["error"] != 1 {
		t.Fatalf("unexpected results %v", snap.Results)
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	svc := NewInMemoryService(nil, WithTracer(tracer))

	if _, _, err := svc.CreateMaterial(context.Background(), "Linen"); err != nil {
		t.Fatalf("create material: %v", err)
	}
	if _, err := svc.DeleteMaterial(context.Background(), 404); err == nil {
		t.Fatalf("expected delete failure")
	}

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected two spans, got %d", len(entries))
	}
	if entries[0].Operation != "create_material" || entries[0].Status != "success" {
		t.Fatalf("unexpected first span %+v", entries[0])
	}
	if entries[1].Operation != "delete_material" || entries[1].Status != "error" || entries[1].Error == "" {
		t.Fatalf("unexpected second span %+v", entries[1])
	}
	if !strings.Contains(buf.String(), "delete_material") {
		t.Fatalf("expected spans written to the writer, got %q", buf.String())
	}
}
