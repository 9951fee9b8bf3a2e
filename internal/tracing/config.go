package tracing

import "fmt"

// Sampling strategies
const (
	SamplingAlways = "always"
	SamplingNever  = "never"
	SamplingRatio  = "ratio"
)

// TracingConfig holds configuration for OpenTelemetry tracing
type TracingConfig struct {
	// Enabled enables/disables tracing
	Enabled bool

	// ServiceName is the service name for traces
	ServiceName string

	// ServiceVersion is the service version
	ServiceVersion string

	// Endpoint is the OTLP endpoint (host:port)
	Endpoint string

	// Insecure disables TLS for the exporter connection
	Insecure bool

	// Headers contains additional headers for OTLP export
	Headers map[string]string

	// ExporterType specifies the exporter type: "grpc" or "http"
	ExporterType string

	// SamplingStrategy is one of always, never or ratio
	SamplingStrategy string

	// SamplingRatio is the fraction of root spans sampled by the ratio strategy
	SamplingRatio float64
}

// DefaultTracingConfig returns a default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:          false,
		ServiceName:      "metaregistry",
		ServiceVersion:   "0.1.0",
		Headers:          make(map[string]string),
		ExporterType:     "grpc",
		SamplingStrategy: SamplingAlways,
		SamplingRatio:    1.0,
	}
}

// Validate checks the exporter type and sampling settings
func (c TracingConfig) Validate() error {
	switch c.ExporterType {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("unsupported tracing exporter: %s", c.ExporterType)
	}
	switch c.SamplingStrategy {
	case "", SamplingAlways, SamplingNever:
	case SamplingRatio:
		if c.SamplingRatio < 0 || c.SamplingRatio > 1 {
			return fmt.Errorf("sampling ratio must be within [0, 1], got %v", c.SamplingRatio)
		}
	default:
		return fmt.Errorf("unsupported sampling strategy: %s", c.SamplingStrategy)
	}
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}
	return nil
}
