// Package metrics provides Prometheus metrics for the Pelota tuning service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the Pelota service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest Metrics - Session sample intake and pipeline outcomes
	samplesIngested   *prometheus.CounterVec
	samplesProcessed  *prometheus.CounterVec
	processingLatency prometheus.Histogram
	tierAssignments   *prometheus.CounterVec
	tuningUpdates     prometheus.Counter

	// Operational Health Metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueDrops       prometheus.Counter
	workerCount      prometheus.Gauge
	playersTracked   prometheus.Gauge
	boardSize        prometheus.Gauge

	// Feed Metrics - External data source health
	feedFetches       *prometheus.CounterVec
	feedFetchDuration *prometheus.HistogramVec
	feedFallbacks     *prometheus.CounterVec

	// Report Metrics - Correlation report construction
	reportsBuilt        prometheus.Counter
	reportBuildDuration prometheus.Histogram
	reportCacheHits     prometheus.Counter
	correlations        *prometheus.CounterVec

	// Store Metrics - Sample store performance
	storeQueries      *prometheus.CounterVec
	storeQueryLatency prometheus.Histogram

	// Live Update Metrics - WebSocket fanout
	wsClients  prometheus.Gauge
	wsMessages prometheus.Counter
	wsDrops    prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pelota",
		subsystem:        "tuner",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Ingest Metrics - Every sample that enters the pipeline is accounted for
	m.samplesIngested = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "samples_ingested_total",
			Help:      "Total number of session samples received, by intake status",
		},
		[]string{"status"},
	)

	m.samplesProcessed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "samples_processed_total",
			Help:      "Total number of session samples fully processed, by resulting tier",
		},
		[]string{"tier"},
	)

	m.processingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sample_processing_latency_milliseconds",
		Help:      "Histogram of end-to-end sample processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.tierAssignments = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "tier_assignments_total",
			Help:      "Total number of skill tier assignments, by tier",
		},
		[]string{"tier"},
	)

	m.tuningUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tuning_updates_total",
		Help:      "Total number of parameter bundle recomputations",
	})

	// Operational Health Metrics - System stability indicators
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the sample queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum sample queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of samples enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of samples dequeued",
	})

	m.queueDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dropped_total",
		Help:      "Total number of samples rejected because the queue was full",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of active workers (processing capacity)",
	})

	m.playersTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_tracked",
		Help:      "Total number of players with recorded history (business scale)",
	})

	m.boardSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "board_size",
		Help:      "Total number of players on the ranking board",
	})

	// Feed Metrics - External data source health
	m.feedFetches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feed_fetches_total",
			Help:      "Total number of feed fetches by feed, origin, and outcome",
		},
		[]string{"feed", "origin", "status"},
	)

	m.feedFetchDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feed_fetch_duration_milliseconds",
			Help:      "Feed fetch duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"feed"},
	)

	m.feedFallbacks = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feed_fallbacks_total",
			Help:      "Total number of times a feed fell back to synthetic data",
		},
		[]string{"feed"},
	)

	// Report Metrics - Correlation report construction
	m.reportsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_built_total",
		Help:      "Total number of correlation reports built from fresh feed data",
	})

	m.reportBuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_build_duration_milliseconds",
		Help:      "Correlation report build duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.reportCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_cache_hits_total",
		Help:      "Total number of correlation reports served from cache",
	})

	m.correlations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "correlations_computed_total",
			Help:      "Total number of correlation results computed, by strength band",
		},
		[]string{"band"},
	)

	// Store Metrics - Sample store performance
	m.storeQueries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_queries_total",
			Help:      "Total number of sample store queries by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Sample store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Live Update Metrics - WebSocket fanout
	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_clients",
		Help:      "Current number of connected WebSocket clients",
	})

	m.wsMessages = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_messages_total",
		Help:      "Total number of tuning updates broadcast to WebSocket clients",
	})

	m.wsDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_dropped_total",
		Help:      "Total number of messages dropped because a client was too slow",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_errors_total",
			Help:      "Total number of HTTP errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordSampleIngested increments the ingested samples counter for a status.
func RecordSampleIngested(status string) {
	globalManager.samplesIngested.WithLabelValues(status).Inc()
}

// RecordSampleProcessed increments the processed samples counter for a tier.
func RecordSampleProcessed(tier string) {
	globalManager.samplesProcessed.WithLabelValues(tier).Inc()
}

// RecordProcessingLatency records sample processing latency in milliseconds.
func RecordProcessingLatency(latencyMs float64) {
	globalManager.processingLatency.Observe(latencyMs)
}

// RecordTierAssignment increments the tier assignment counter for a tier.
func RecordTierAssignment(tier string) {
	globalManager.tierAssignments.WithLabelValues(tier).Inc()
}

// RecordTuningUpdate increments the tuning updates counter.
func RecordTuningUpdate() {
	globalManager.tuningUpdates.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueDrop increments the dropped samples counter.
func RecordQueueDrop() {
	globalManager.queueDrops.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdatePlayersTracked sets the number of players with recorded history.
func UpdatePlayersTracked(count int) {
	globalManager.playersTracked.Set(float64(count))
}

// UpdateBoardSize sets the number of players on the ranking board.
func UpdateBoardSize(count int) {
	globalManager.boardSize.Set(float64(count))
}

// Feed Metrics Functions.

// RecordFeedFetch records a feed fetch outcome.
func RecordFeedFetch(feed, origin, status string) {
	globalManager.feedFetches.WithLabelValues(feed, origin, status).Inc()
}

// RecordFeedFetchDuration records feed fetch duration in milliseconds.
func RecordFeedFetchDuration(feed string, durationMs float64) {
	globalManager.feedFetchDuration.WithLabelValues(feed).Observe(durationMs)
}

// RecordFeedFallback increments the fallback counter for a feed.
func RecordFeedFallback(feed string) {
	globalManager.feedFallbacks.WithLabelValues(feed).Inc()
}

// Report Metrics Functions.

// RecordReportBuilt increments the reports built counter.
func RecordReportBuilt() {
	globalManager.reportsBuilt.Inc()
}

// RecordReportBuildDuration records report build duration in milliseconds.
func RecordReportBuildDuration(durationMs float64) {
	globalManager.reportBuildDuration.Observe(durationMs)
}

// RecordReportCacheHit increments the report cache hit counter.
func RecordReportCacheHit() {
	globalManager.reportCacheHits.Inc()
}

// RecordCorrelation increments the correlation counter for a strength band.
func RecordCorrelation(band string) {
	globalManager.correlations.WithLabelValues(band).Inc()
}

// Store Metrics Functions.

// RecordStoreQuery records a sample store query outcome.
func RecordStoreQuery(operation, status string) {
	globalManager.storeQueries.WithLabelValues(operation, status).Inc()
}

// RecordStoreQueryLatency records store query latency in milliseconds.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// Live Update Metrics Functions.

// UpdateWSClients sets the number of connected WebSocket clients.
func UpdateWSClients(count int) {
	globalManager.wsClients.Set(float64(count))
}

// RecordWSMessage increments the broadcast messages counter.
func RecordWSMessage() {
	globalManager.wsMessages.Inc()
}

// RecordWSDrop increments the dropped messages counter.
func RecordWSDrop() {
	globalManager.wsDrops.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError records an HTTP error with type and severity labels.
func RecordHTTPError(errorType, severity string) {
	globalManager.httpErrors.WithLabelValues(errorType, severity).Inc()
}

// System Performance Metrics Functions.

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

// FamilyCount reports how many metric families the registry currently exposes.
func FamilyCount() (int, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrObserveFailed, err)
	}
	return len(families), nil
}
