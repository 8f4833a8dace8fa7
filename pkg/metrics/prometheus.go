// Package metrics provides Prometheus metrics for the championship standings service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	recordsIngested prometheus.Counter
	recordsRejected prometheus.Counter
	snapshotsStored prometheus.Counter

	// Standings computation
	standingsComputed  prometheus.Counter
	standingsCacheHits prometheus.Counter
	standingsLatency   prometheus.Histogram
	swimmersScored     prometheus.Gauge
	eventsSelected     prometheus.Counter
	eventsExcluded     *prometheus.CounterVec
	workerCount        prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// Repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram
	repositorySnapshots     prometheus.Gauge

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry the
// metrics are registered on the Prometheus default registerer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swimchamps",
		subsystem:        "standings",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.recordsIngested = auto.NewCounter(m.counter("records_ingested_total",
		"Total number of performance records accepted"))
	m.recordsRejected = auto.NewCounter(m.counter("records_rejected_total",
		"Total number of performance records rejected as malformed"))
	m.snapshotsStored = auto.NewCounter(m.counter("snapshots_stored_total",
		"Total number of meet snapshots stored"))

	m.standingsComputed = auto.NewCounter(m.counter("computations_total",
		"Total number of full standings computations"))
	m.standingsCacheHits = auto.NewCounter(m.counter("cache_hits_total",
		"Total number of standings served from the per-snapshot cache"))
	m.standingsLatency = auto.NewHistogram(m.histogram("computation_latency_milliseconds",
		"Standings computation latency in milliseconds", m.histogramBuckets))
	m.swimmersScored = auto.NewGauge(m.gauge("swimmers_scored",
		"Swimmers in the most recent standings computation"))
	m.eventsSelected = auto.NewCounter(m.counter("events_selected_total",
		"Total number of events counted towards a swimmer's score"))
	m.eventsExcluded = auto.NewCounterVec(m.counter("events_excluded_total",
		"Total number of events not counted, by reason"), []string{"reason"})
	m.workerCount = auto.NewGauge(m.gauge("worker_count",
		"Configured number of selection workers"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counter("errors_by_component_total",
		"Total number of errors by component"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counter("errors_by_type_total",
		"Total number of errors by type"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.repositoryUpdateLatency = auto.NewHistogram(m.histogram("repository_update_latency_milliseconds",
		"Repository write latency in milliseconds", m.histogramBuckets))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogram("repository_query_latency_milliseconds",
		"Repository read latency in milliseconds", m.histogramBuckets))
	m.repositorySnapshots = auto.NewGauge(m.gauge("repository_snapshots",
		"Number of meet snapshots held by the repository"))

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes",
		"System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordRecordsIngested adds n accepted records.
func RecordRecordsIngested(n int) {
	globalManager.recordsIngested.Add(float64(n))
}

// RecordRecordsRejected adds n rejected records.
func RecordRecordsRejected(n int) {
	globalManager.recordsRejected.Add(float64(n))
}

// RecordSnapshotStored increments the stored snapshot counter.
func RecordSnapshotStored() {
	globalManager.snapshotsStored.Inc()
}

// RecordStandingsComputed records one full computation and its latency.
func RecordStandingsComputed(latencyMs float64, swimmers int) {
	globalManager.standingsComputed.Inc()
	globalManager.standingsLatency.Observe(latencyMs)
	globalManager.swimmersScored.Set(float64(swimmers))
}

// RecordStandingsCacheHit increments the cache hit counter.
func RecordStandingsCacheHit() {
	globalManager.standingsCacheHits.Inc()
}

// RecordEventsSelected adds n counted events.
func RecordEventsSelected(n int) {
	globalManager.eventsSelected.Add(float64(n))
}

// RecordEventsExcluded adds n events not counted for the given reason.
func RecordEventsExcluded(reason string, n int) {
	globalManager.eventsExcluded.WithLabelValues(reason).Add(float64(n))
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRepositoryUpdateLatency records repository write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// UpdateRepositorySnapshots sets the number of stored snapshots.
func UpdateRepositorySnapshots(count int) {
	globalManager.repositorySnapshots.Set(float64(count))
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
