package tracing

// Span attribute keys following OpenTelemetry semantic conventions
const (
	// Catalog attributes
	AttrCatalog       = "metaregistry.catalog"
	AttrEntityID      = "metaregistry.entity.id"
	AttrSchemaVersion = "metaregistry.schema.version"
	AttrElementCount  = "metaregistry.schema.element_count"
	AttrErrorCount    = "metaregistry.validation.error_count"

	// Projection attributes
	AttrProjectionKind   = "metaregistry.projection.kind"
	AttrProjectionTarget = "metaregistry.projection.target"

	// Operation attributes
	AttrOperation = "metaregistry.operation"
	AttrStatus    = "metaregistry.status"
	AttrError     = "metaregistry.error"

	// HTTP attributes (OpenTelemetry semantic conventions)
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"
	AttrHTTPUserAgent  = "http.user_agent"
	AttrHTTPRequestID  = "http.request_id"

	// gRPC attributes (OpenTelemetry semantic conventions)
	AttrRPCService = "rpc.service"
	AttrRPCMethod  = "rpc.method"
	AttrRPCStatus  = "rpc.status_code"
)
