package metrics

// Metric name constants following Prometheus naming conventions
// Format: metaregistry_{component}_{metric}_{unit}

// Catalog metrics
const (
	MetricCatalogEntries         = "metaregistry_catalog_entries"
	MetricOperationsTotal        = "metaregistry_operations_total"
	MetricOperationDuration      = "metaregistry_operation_duration_seconds"
	MetricValidationFailures     = "metaregistry_validation_failures_total"
	MetricRecordValidationsTotal = "metaregistry_record_validations_total"
	MetricProjectionsTotal       = "metaregistry_projections_total"
)

// API metrics
const (
	MetricAPIRequestsTotal   = "metaregistry_api_requests_total"
	MetricAPIRequestDuration = "metaregistry_api_request_duration_seconds"
)

// Label name constants
const (
	LabelCatalog   = "catalog"
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelKind      = "kind"
	LabelTarget    = "target"
	LabelMethod    = "method"
	LabelEndpoint  = "endpoint"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
