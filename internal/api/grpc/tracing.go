package grpc

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/metaschema/registry/internal/tracing"
)

// tracingInterceptor opens a server span per unary call
func (s *Server) tracingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	// Extract trace context from gRPC metadata
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, metadataCarrier(md))

	ctx, span := otel.Tracer("metaregistry.grpc").Start(ctx, info.FullMethod,
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	// Format: /package.Service/Method
	serviceName := ""
	methodName := info.FullMethod
	if len(info.FullMethod) > 0 && info.FullMethod[0] == '/' {
		parts := splitMethodName(info.FullMethod[1:])
		if len(parts) == 2 {
			serviceName = parts[0]
			methodName = parts[1]
		}
	}

	span.SetAttributes(
		attribute.String("rpc.system", "grpc"),
		attribute.String(tracing.AttrRPCService, serviceName),
		attribute.String(tracing.AttrRPCMethod, methodName),
	)

	resp, err := handler(ctx, req)

	if err != nil {
		st, _ := status.FromError(err)
		span.SetAttributes(attribute.String(tracing.AttrRPCStatus, st.Code().String()))
		span.SetStatus(codes.Error, st.Message())
	} else {
		span.SetAttributes(attribute.String(tracing.AttrRPCStatus, "OK"))
		span.SetStatus(codes.Ok, "")
	}

	return resp, err
}

// splitMethodName splits a method name into service and method parts
func splitMethodName(fullMethod string) []string {
	for i := len(fullMethod) - 1; i >= 0; i-- {
		if fullMethod[i] == '/' {
			return []string{fullMethod[:i], fullMethod[i+1:]}
		}
	}
	return []string{fullMethod}
}

// metadataCarrier adapts gRPC metadata to propagation.TextMapCarrier
type metadataCarrier metadata.MD

// Get returns the value associated with the passed key.
func (m metadataCarrier) Get(key string) string {
	vals := metadata.MD(m).Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// Set stores the key-value pair.
func (m metadataCarrier) Set(key, value string) {
	metadata.MD(m).Set(key, value)
}

// Keys lists the keys stored in this carrier.
func (m metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
