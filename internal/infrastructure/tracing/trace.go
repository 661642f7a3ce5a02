package tracing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ComputeEngine/internal/shared/id"
)

// Header and metadata keys used for propagation.
const (
	HeaderTraceID   = "X-Trace-ID"
	HeaderSpanID    = "X-Span-ID"
	MetadataTraceID = "x-trace-id"
	MetadataSpanID  = "x-span-id"
)

const spanBuffer = 1000

// Span represents a single operation in a trace.
type Span struct {
	TraceID   id.TraceID
	SpanID    id.SpanID
	ParentID  id.SpanID
	Name      string
	Service   string
	StartTime time.Time
	Duration  time.Duration
	Error     error

	mu   sync.Mutex
	tags map[string]string
}

// SetTag adds a tag to the span.
func (s *Span) SetTag(key, value string) {
	s.mu.Lock()
	s.tags[key] = value
	s.mu.Unlock()
}

// SetError records an error in the span.
func (s *Span) SetError(err error) {
	s.Error = err
}

// Tracer starts spans and exports finished ones to the log.
type Tracer struct {
	service string
	logger  *logging.Logger
	spans   chan *Span

	// mu guards closed against sends racing Close.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// New creates a tracer and starts its collector. Call Close to stop it.
func New(service string, logger *logging.Logger) *Tracer {
	if logger == nil {
		logger = logging.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger.Named("trace"),
		spans:   make(chan *Span, spanBuffer),
		done:    make(chan struct{}),
	}

	go t.collect()

	return t
}

// StartSpan opens a span, continuing the trace found in ctx or starting one.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := TraceIDFrom(ctx)
	if traceID == "" {
		traceID = id.NewTraceID()
	}

	span := &Span{
		TraceID:   traceID,
		SpanID:    id.NewSpanID(),
		ParentID:  SpanIDFrom(ctx),
		Name:      name,
		Service:   t.service,
		StartTime: time.Now(),
		tags:      make(map[string]string),
	}

	return span, WithSpan(ctx, traceID, span.SpanID)
}

// Finish stamps the duration and queues the span for export.
func (t *Tracer) Finish(span *Span) {
	span.Duration = time.Since(span.StartTime)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span_id", string(span.SpanID)),
		)
	}
}

// Close drains queued spans and stops the collector. Spans finished after
// Close are dropped.
func (t *Tracer) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		close(t.spans)
		t.mu.Unlock()
		<-t.done
	})
}

func (t *Tracer) collect() {
	defer close(t.done)
	for span := range t.spans {
		t.export(span)
	}
}

func (t *Tracer) export(span *Span) {
	fields := []zap.Field{
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
		zap.String("service", span.Service),
	}

	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}

	span.mu.Lock()
	for k, v := range span.tags {
		fields = append(fields, zap.String(k, v))
	}
	span.mu.Unlock()

	if span.Error != nil {
		fields = append(fields, zap.Error(span.Error))
		t.logger.Warn("span completed with error", fields...)
		return
	}
	t.logger.Debug("span completed", fields...)
}

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// WithSpan returns ctx carrying the given trace and span ids. Empty ids are
// left out.
func WithSpan(ctx context.Context, traceID id.TraceID, spanID id.SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	return ctx
}

// TraceIDFrom retrieves the trace id from ctx.
func TraceIDFrom(ctx context.Context) id.TraceID {
	traceID, _ := ctx.Value(traceIDKey).(id.TraceID)
	return traceID
}

// SpanIDFrom retrieves the current span id from ctx.
func SpanIDFrom(ctx context.Context) id.SpanID {
	spanID, _ := ctx.Value(spanIDKey).(id.SpanID)
	return spanID
}

// Fields returns zap fields for the trace in ctx, for request-scoped logs.
func Fields(ctx context.Context) []zap.Field {
	traceID := TraceIDFrom(ctx)
	if traceID == "" {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", string(traceID)),
		zap.String("span_id", string(SpanIDFrom(ctx))),
	}
}
