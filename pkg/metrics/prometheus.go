// Package metrics provides Prometheus metrics for the wordle buddy service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Submissions
	messagesReceived    prometheus.Counter
	submissionsAccepted prometheus.Counter
	submissionsRejected *prometheus.CounterVec
	messagesSkipped     *prometheus.CounterVec

	// Commands and leaderboards
	commands          *prometheus.CounterVec
	leaderboardRows   prometheus.Histogram
	scrapeProcessed   prometheus.Counter
	acknowledgedTotal prometheus.Gauge

	// Store
	storeWriteLatency prometheus.Histogram
	storeLoadLatency  prometheus.Histogram
	storeErrors       *prometheus.CounterVec

	// Queue and worker
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejected *prometheus.CounterVec
	jobLatency    prometheus.Histogram
	jobsProcessed *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wordle",
		subsystem:        "buddy",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.messagesReceived = auto.NewCounter(m.counterOpts("messages_received_total",
		"Total number of chat messages received from the watch channel"))
	m.submissionsAccepted = auto.NewCounter(m.counterOpts("submissions_accepted_total",
		"Total number of result messages parsed, validated and stored"))
	m.submissionsRejected = auto.NewCounterVec(m.counterOpts("submissions_rejected_total",
		"Total number of result messages rejected, by reason"), []string{"reason"})
	m.messagesSkipped = auto.NewCounterVec(m.counterOpts("messages_skipped_total",
		"Total number of messages ignored before parsing, by reason"), []string{"reason"})

	m.commands = auto.NewCounterVec(m.counterOpts("commands_total",
		"Total number of commands dispatched, by command"), []string{"command"})
	m.leaderboardRows = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboard_rows",
		Help:        "Number of ranked rows per rendered leaderboard",
		Buckets:     prometheus.LinearBuckets(0, 5, 10),
		ConstLabels: m.constLabels,
	})
	m.scrapeProcessed = auto.NewCounter(m.counterOpts("scrape_messages_total",
		"Total number of history messages re-run through the pipeline"))
	m.acknowledgedTotal = auto.NewGauge(m.gaugeOpts("acknowledged_messages",
		"Number of message ids currently tracked as acknowledged"))

	m.storeWriteLatency = auto.NewHistogram(m.histogramOpts("store_write_latency_milliseconds",
		"Latency of record writes in milliseconds"))
	m.storeLoadLatency = auto.NewHistogram(m.histogramOpts("store_load_latency_milliseconds",
		"Latency of leaderboard loads in milliseconds"))
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total",
		"Total number of store failures, by operation"), []string{"operation"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of queued jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum number of queued jobs"))
	m.queueRejected = auto.NewCounterVec(m.counterOpts("queue_rejected_total",
		"Total number of jobs refused by the queue, by reason"), []string{"reason"})
	m.jobLatency = auto.NewHistogram(m.histogramOpts("job_latency_milliseconds",
		"Time spent handling one job in the worker"))
	m.jobsProcessed = auto.NewCounterVec(m.counterOpts("jobs_processed_total",
		"Total number of jobs handled by the worker, by kind"), []string{"kind"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
	m.httpRateLimited = auto.NewCounter(m.counterOpts("http_rate_limited_total",
		"Total number of HTTP requests refused by the rate limiter"))
}

// RecordMessageReceived increments the received messages counter.
func RecordMessageReceived() { globalManager.messagesReceived.Inc() }

// RecordSubmissionAccepted increments the accepted submissions counter.
func RecordSubmissionAccepted() { globalManager.submissionsAccepted.Inc() }

// RecordSubmissionRejected increments the rejected submissions counter for reason.
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

// RecordMessageSkipped counts a message dropped before it reached the pipeline.
func RecordMessageSkipped(reason string) {
	globalManager.messagesSkipped.WithLabelValues(reason).Inc()
}

// RecordCommand increments the command counter.
func RecordCommand(command string) { globalManager.commands.WithLabelValues(command).Inc() }

// ObserveLeaderboardRows records the size of a rendered leaderboard.
func ObserveLeaderboardRows(rows int) { globalManager.leaderboardRows.Observe(float64(rows)) }

// RecordScrapeProcessed increments the reprocessed history counter.
func RecordScrapeProcessed() { globalManager.scrapeProcessed.Inc() }

// UpdateAcknowledged sets the acknowledged message gauge.
func UpdateAcknowledged(n int64) { globalManager.acknowledgedTotal.Set(float64(n)) }

// RecordStoreWriteLatency records a record write in milliseconds.
func RecordStoreWriteLatency(ms float64) { globalManager.storeWriteLatency.Observe(ms) }

// RecordStoreLoadLatency records a load in milliseconds.
func RecordStoreLoadLatency(ms float64) { globalManager.storeLoadLatency.Observe(ms) }

// RecordStoreError increments the store error counter for operation.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueRejected counts a job refused by the queue.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// RecordJobLatency records how long the worker spent on one job.
func RecordJobLatency(ms float64) { globalManager.jobLatency.Observe(ms) }

// RecordJobProcessed increments the processed jobs counter for kind.
func RecordJobProcessed(kind string) { globalManager.jobsProcessed.WithLabelValues(kind).Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPRateLimited counts a request refused by the limiter.
func RecordHTTPRateLimited() { globalManager.httpRateLimited.Inc() }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
