// Package metrics provides Prometheus metrics for the agenda service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by agenda.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// Custom-event store
	storeOperations    *prometheus.CounterVec
	storeLatency       *prometheus.HistogramVec
	storeReadFallbacks prometheus.Counter
	customEventsTotal  prometheus.Gauge

	// Upstream ingestion
	ingestFetches      *prometheus.CounterVec
	ingestLatency      *prometheus.HistogramVec
	snapshotEvents     *prometheus.GaugeVec
	snapshotLastUpdate *prometheus.GaugeVec

	// Client reconciliation
	mutations          *prometheus.CounterVec
	pendingMutations   prometheus.Gauge
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	dispatchLatency    prometheus.Histogram

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "agenda",
		subsystem:        "calendar",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors grouped by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors grouped by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors grouped by HTTP endpoint", "endpoint", "method", "error_type")

	m.storeOperations = m.counterVec("store_operations_total", "Custom-event store operations by result", "operation", "result")
	m.storeLatency = m.histogramVec("store_operation_latency_milliseconds", "Custom-event store operation latency", "operation")
	m.storeReadFallbacks = m.counter("store_read_fallbacks_total", "Reads that degraded to an empty collection")
	m.customEventsTotal = m.gauge("custom_events", "Number of stored custom events")

	m.ingestFetches = m.counterVec("ingest_fetches_total", "Upstream fetches by source and result", "source", "result")
	m.ingestLatency = m.histogramVec("ingest_fetch_latency_milliseconds", "Upstream fetch latency", "source")
	m.snapshotEvents = m.gaugeVec("snapshot_events", "Events in the latest snapshot per source", "source")
	m.snapshotLastUpdate = m.gaugeVec("snapshot_last_update_unix", "Unix time of the last successful snapshot write", "source")

	m.mutations = m.counterVec("client_mutations_total", "Client mutations by kind and outcome", "kind", "outcome")
	m.pendingMutations = m.gauge("client_pending_mutations", "Optimistic mutations awaiting confirmation")
	m.queueSize = m.gauge("client_queue_size", "Mutations waiting in the dispatch queue")
	m.queueCapacity = m.gauge("client_queue_capacity", "Capacity of the dispatch queue")
	m.queueEnqueued = m.counter("client_queue_enqueued_total", "Mutations accepted by the dispatch queue")
	m.queueDequeued = m.counter("client_queue_dequeued_total", "Mutations handed to the dispatcher")
	m.queueEnqueueErrors = m.counter("client_queue_enqueue_errors_total", "Mutations refused by the dispatch queue")
	m.dispatchLatency = m.histogram("client_dispatch_latency_milliseconds", "Round-trip latency of dispatched mutations")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Allocated heap bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds")
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
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

// RecordStoreOperation records one load/save cycle step of the custom-event store.
func RecordStoreOperation(operation, result string, latencyMs float64) {
	globalManager.storeOperations.WithLabelValues(operation, result).Inc()
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreReadFallback counts a lenient read that returned an empty collection.
func RecordStoreReadFallback() {
	globalManager.storeReadFallbacks.Inc()
}

// UpdateCustomEventsTotal sets the number of stored custom events.
func UpdateCustomEventsTotal(count int) {
	globalManager.customEventsTotal.Set(float64(count))
}

// RecordIngest records an upstream fetch.
func RecordIngest(source, result string, latencyMs float64) {
	globalManager.ingestFetches.WithLabelValues(source, result).Inc()
	globalManager.ingestLatency.WithLabelValues(source).Observe(latencyMs)
}

// UpdateSnapshot records a successful snapshot write.
func UpdateSnapshot(source string, count int, unix int64) {
	globalManager.snapshotEvents.WithLabelValues(source).Set(float64(count))
	globalManager.snapshotLastUpdate.WithLabelValues(source).Set(float64(unix))
}

// RecordMutation records a client mutation outcome (applied, confirmed, rejected).
func RecordMutation(kind, outcome string) {
	globalManager.mutations.WithLabelValues(kind, outcome).Inc()
}

// UpdatePendingMutations sets the number of unconfirmed mutations.
func UpdatePendingMutations(count int) {
	globalManager.pendingMutations.Set(float64(count))
}

// UpdateQueueSize sets the dispatch queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the dispatch queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordDispatchLatency records how long a dispatched mutation took.
func RecordDispatchLatency(latencyMs float64) {
	globalManager.dispatchLatency.Observe(latencyMs)
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
