// Package metrics provides Prometheus metrics for the netstats engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the engine's Prometheus collectors.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring
	scoresBySource   *prometheus.CounterVec
	scoringLatency   prometheus.Histogram
	recordsDropped   prometheus.Counter
	recordsReplaced  prometheus.Counter
	fetchErrors      prometheus.Counter
	cacheRequests    *prometheus.CounterVec
	incompleteRoster prometheus.Counter

	// Aggregation
	aggregationLatency prometheus.Histogram
	gamesAggregated    prometheus.Counter

	// Queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueDequeued           prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository
	repositoryQueryLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "netstats",
		subsystem:        "engine",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.scoresBySource = m.counterVec("scores_total", "Game scores produced, by reconciliation source", "source")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Time to reconcile one game score")
	m.recordsDropped = m.counter("records_dropped_total", "Stat records dropped as malformed or foreign")
	m.recordsReplaced = m.counter("records_superseded_total", "Stat records replaced by a newer write to the same slot")
	m.fetchErrors = m.counter("fetch_errors_total", "Failed stat record fetches")
	m.cacheRequests = m.counterVec("cache_requests_total", "Score cache lookups by result", "result")
	m.incompleteRoster = m.counter("incomplete_rosters_total", "Aggregated games whose roster had empty slots")

	m.aggregationLatency = m.histogram("aggregation_latency_milliseconds", "Time to aggregate player performance")
	m.gamesAggregated = m.counter("games_aggregated_total", "Games contributing to player aggregations")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the fan-out queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the fan-out queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected by the queue")
	m.workerCount = m.gauge("worker_count", "Running workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one job")
	m.workerErrors = m.counter("worker_errors_total", "Jobs that failed in a worker")

	m.repositoryQueryLatency = m.histogramVec("repository_query_latency_milliseconds", "Repository query latency", "operation")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration",
		"endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "type")
}

// RecordScore counts a produced score under its source.
func RecordScore(source string) {
	globalManager.scoresBySource.WithLabelValues(source).Inc()
}

// RecordScoringLatency records reconciliation latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordRecordsDropped adds n dropped stat records.
func RecordRecordsDropped(n int) {
	if n > 0 {
		globalManager.recordsDropped.Add(float64(n))
	}
}

// RecordRecordsSuperseded adds n superseded stat records.
func RecordRecordsSuperseded(n int) {
	if n > 0 {
		globalManager.recordsReplaced.Add(float64(n))
	}
}

// RecordFetchError counts a failed fetch.
func RecordFetchError() {
	globalManager.fetchErrors.Inc()
}

// RecordCacheHit counts a cache hit.
func RecordCacheHit() { globalManager.cacheRequests.WithLabelValues("hit").Inc() }

// RecordCacheMiss counts a cache miss.
func RecordCacheMiss() { globalManager.cacheRequests.WithLabelValues("miss").Inc() }

// RecordCacheError counts a cache backend failure.
func RecordCacheError() { globalManager.cacheRequests.WithLabelValues("error").Inc() }

// RecordIncompleteRosters adds n games with incomplete rosters.
func RecordIncompleteRosters(n int) {
	if n > 0 {
		globalManager.incompleteRoster.Add(float64(n))
	}
}

// RecordAggregationLatency records aggregation latency in milliseconds.
func RecordAggregationLatency(latencyMs float64) {
	globalManager.aggregationLatency.Observe(latencyMs)
}

// RecordGamesAggregated adds n contributing games.
func RecordGamesAggregated(n int) {
	if n > 0 {
		globalManager.gamesAggregated.Add(float64(n))
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue counts an enqueued job.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeued job.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount adds delta to the running worker gauge.
func UpdateWorkerCount(delta int) { globalManager.workerCount.Add(float64(delta)) }

// RecordWorkerProcessingLatency records per-job latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordRepositoryQueryLatency records a repository call in milliseconds.
func RecordRepositoryQueryLatency(operation string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry the global collectors live on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
