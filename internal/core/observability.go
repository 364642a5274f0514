package core

import (
	"context"
	"time"
)

// Logger receives structured operation logs from the service. The signature
// matches log/slog so a slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// AuditStatus marks the outcome recorded for an audited operation.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one audited service operation.
type AuditEntry struct {
	Operation string        `json:"operation"`
	Entity    EntityType    `json:"entity"`
	Action    Action        `json:"action"`
	EntityID  int64         `json:"entity_id,omitempty"`
	Status    AuditStatus   `json:"status"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// AuditRecorder consumes audit entries emitted after each service operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// MetricsRecorder observes per-operation timing and outcome.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan finishes a span, recording the terminal error if any.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

// Clock supplies audit timestamps; overridable for deterministic tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type serviceOptions struct {
	clock   Clock
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
}

// ServiceOption customises service observability wiring.
type ServiceOption func(*serviceOptions)

// WithClock overrides the audit timestamp source.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger attaches a structured logger to the service.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder attaches an audit sink to the service.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder attaches a metrics sink to the service.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer attaches a tracer to the service.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

type operationMeta struct {
	entity EntityType
	action Action
}

// operations maps audited operation names to the entity and action they act
// on. Operations absent from the map are logged and measured but not audited.
var operations = map[string]operationMeta{
	"create_garment":         {entity: EntityGarment, action: ActionCreate},
	"update_garment":         {entity: EntityGarment, action: ActionUpdate},
	"delete_garment":         {entity: EntityGarment, action: ActionDelete},
	"add_garment_material":   {entity: EntityGarmentMaterial, action: ActionUpdate},
	"add_garment_attribute":  {entity: EntityGarmentAttribute, action: ActionCreate},
	"create_material":        {entity: EntityMaterial, action: ActionCreate},
	"delete_material":        {entity: EntityMaterial, action: ActionDelete},
	"create_attribute":       {entity: EntityAttribute, action: ActionCreate},
	"delete_attribute":       {entity: EntityAttribute, action: ActionDelete},
	"record_incompatibility": {entity: EntityIncompatibility, action: ActionCreate},
	"create_supplier":        {entity: EntitySupplier, action: ActionCreate},
	"delete_supplier":        {entity: EntitySupplier, action: ActionDelete},
	"link_supplier":          {entity: EntityGarmentSupplier, action: ActionCreate},
	"update_supplier_status": {entity: EntityGarmentSupplier, action: ActionUpdate},
	"add_supplier_offer":     {entity: EntitySupplierOffer, action: ActionCreate},
	"add_sample_set":         {entity: EntitySampleSet, action: ActionCreate},
	"update_sample_set":      {entity: EntitySampleSet, action: ActionUpdate},
}

func (s *Service) recordAudit(ctx context.Context, operation string, entityID int64, duration time.Duration, status AuditStatus) {
	meta, ok := operations[operation]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: operation,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    status,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	})
}

// instrument wraps a service operation with tracing, timing, logging, and
// audit recording. fn returns the id of the entity it acted on, when known.
func (s *Service) instrument(ctx context.Context, operation string, fn func(context.Context) (int64, error)) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	entityID, err := fn(ctx)
	duration := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "error", err)
		s.recordAudit(ctx, operation, entityID, duration, AuditStatusError)
		return err
	}
	s.logger.Debug("operation completed", "operation", operation, "entity_id", entityID)
	s.recordAudit(ctx, operation, entityID, duration, AuditStatusSuccess)
	return nil
}
