package registry

import (
	"context"
	"time"

	"github.com/metaschema/registry/internal/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "metaregistry.registry"

// op is one traced, measured registry operation
type op struct {
	r     *Registry
	name  string
	start time.Time
	span  trace.Span
}

func (r *Registry) begin(ctx context.Context, name string, kind Kind, id string) (context.Context, *op) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "registry."+name,
		trace.WithAttributes(
			attribute.String(tracing.AttrOperation, name),
			attribute.String(tracing.AttrCatalog, string(kind)),
			attribute.String(tracing.AttrEntityID, id),
		),
	)
	return ctx, &op{r: r, name: name, start: time.Now(), span: span}
}

// end records the outcome. err may be nil.
func (o *op) end(err error) {
	o.r.metrics.RecordOperation(o.name, err, time.Since(o.start))
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		o.span.SetAttributes(attribute.String(tracing.AttrStatus, "error"))
	} else {
		o.span.SetAttributes(attribute.String(tracing.AttrStatus, "ok"))
	}
	o.span.End()
}
