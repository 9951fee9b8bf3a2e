package projection

import (
	"context"
	"time"

	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/metrics"
	"github.com/metaschema/registry/internal/registry"
	"github.com/metaschema/registry/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Source is the read side of the registry the engine projects from
type Source interface {
	GetSchema(ctx context.Context, id string) (*registry.Schema, bool)
	GetEncodingScheme(ctx context.Context, id string) (*registry.EncodingScheme, bool)
	GetControlledVocabulary(ctx context.Context, id string) (*registry.ControlledVocabulary, bool)
	JSONSchema(ctx context.Context, schemaID string) (map[string]interface{}, error)
}

// Engine renders registered schemas into serialization formats,
// documentation and code skeletons
type Engine struct {
	src     Source
	metrics *metrics.RegistryMetrics
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithMetrics attaches Prometheus recorders
func WithMetrics(m *metrics.RegistryMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock overrides the time source used for generation timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a projection engine reading from src
func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{
		src: src,
		now: func() time.Time { return time.Now().UTC() },
		log: logger.WithComponent("projection"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// schema loads a schema inside a projection span
func (e *Engine) schema(ctx context.Context, kind, target, id string) (context.Context, trace.Span, *registry.Schema, error) {
	ctx, span := otel.Tracer("metaregistry.projection").Start(ctx, "projection."+kind,
		trace.WithAttributes(
			attribute.String(tracing.AttrEntityID, id),
			attribute.String(tracing.AttrProjectionKind, kind),
			attribute.String(tracing.AttrProjectionTarget, target),
		),
	)
	s, ok := e.src.GetSchema(ctx, id)
	if !ok {
		err := registry.NotFoundError{Kind: registry.KindSchema, ID: id}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ctx, span, nil, err
	}
	e.metrics.RecordProjection(kind, target)
	return ctx, span, s, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
