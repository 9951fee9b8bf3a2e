package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RegistryMetrics tracks catalog, validation, projection and API metrics.
// All recorders are safe to call on a nil receiver.
type RegistryMetrics struct {
	catalogEntries     *prometheus.GaugeVec
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	validationFailures *prometheus.CounterVec
	recordValidations  *prometheus.CounterVec
	projectionsTotal   *prometheus.CounterVec
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
}

// NewRegistryMetrics initializes registry metrics with the collector
func NewRegistryMetrics(collector *Collector) *RegistryMetrics {
	return &RegistryMetrics{
		catalogEntries: collector.RegisterGauge(
			MetricCatalogEntries,
			"Number of entries per catalog",
			[]string{LabelCatalog},
		),
		operationsTotal: collector.RegisterCounter(
			MetricOperationsTotal,
			"Total registry operations by type and status",
			[]string{LabelOperation, LabelStatus},
		),
		operationDuration: collector.RegisterHistogram(
			MetricOperationDuration,
			"Registry operation latency in seconds",
			[]string{LabelOperation},
			[]float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		),
		validationFailures: collector.RegisterCounter(
			MetricValidationFailures,
			"Total rejected candidates by catalog",
			[]string{LabelCatalog},
		),
		recordValidations: collector.RegisterCounter(
			MetricRecordValidationsTotal,
			"Total record validations by outcome",
			[]string{LabelStatus},
		),
		projectionsTotal: collector.RegisterCounter(
			MetricProjectionsTotal,
			"Total projections by kind and target",
			[]string{LabelKind, LabelTarget},
		),
		apiRequestsTotal: collector.RegisterCounter(
			MetricAPIRequestsTotal,
			"Total HTTP requests by method, endpoint, and status",
			[]string{LabelMethod, LabelEndpoint, LabelStatus},
		),
		apiRequestDuration: collector.RegisterHistogram(
			MetricAPIRequestDuration,
			"API request latency in seconds",
			[]string{LabelMethod, LabelEndpoint},
			prometheus.DefBuckets,
		),
	}
}

// SetCatalogSize sets the entry gauge for a catalog
func (m *RegistryMetrics) SetCatalogSize(catalog string, n int) {
	if m == nil {
		return
	}
	m.catalogEntries.WithLabelValues(catalog).Set(float64(n))
}

// RecordOperation records a registry operation with its outcome and latency
func (m *RegistryMetrics) RecordOperation(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordValidationFailure counts a candidate rejected by validation
func (m *RegistryMetrics) RecordValidationFailure(catalog string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(catalog).Inc()
}

// RecordRecordValidation counts a record validation outcome
func (m *RegistryMetrics) RecordRecordValidation(valid bool) {
	if m == nil {
		return
	}
	status := "valid"
	if !valid {
		status = "invalid"
	}
	m.recordValidations.WithLabelValues(status).Inc()
}

// RecordProjection counts a projection of the given kind and target
func (m *RegistryMetrics) RecordProjection(kind, target string) {
	if m == nil {
		return
	}
	m.projectionsTotal.WithLabelValues(kind, target).Inc()
}

// RecordAPIRequest records an API request
func (m *RegistryMetrics) RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.apiRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}
