package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Search metrics
	SearchJobsTotal      *prometheus.CounterVec
	SearchJobDuration    *prometheus.HistogramVec
	SearchJobsInProgress prometheus.Gauge
	AdRecordsNormalized  *prometheus.CounterVec
	AdRecordsFilteredOut prometheus.Counter

	// External API metrics
	ExternalAPICalls    *prometheus.CounterVec
	ExternalAPIDuration *prometheus.HistogramVec
	ExternalAPIFailures *prometheus.CounterVec

	// Collection and creative metrics
	CollectionOperations *prometheus.CounterVec
	GeneratedImages      *prometheus.CounterVec
}

// New registers collectors on the default Prometheus registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		SearchJobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ad_search_jobs_total",
				Help: "Total number of ad library searches",
			},
			[]string{"status", "stage"},
		),

		SearchJobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ad_search_job_duration_seconds",
				Help:    "Ad library search duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"stage"},
		),

		SearchJobsInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ad_search_jobs_in_progress",
				Help: "Number of ad library searches currently running",
			},
		),

		AdRecordsNormalized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ad_records_normalized_total",
				Help: "Total number of raw ad items normalized",
			},
			[]string{"source"},
		),

		AdRecordsFilteredOut: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ad_records_filtered_out_total",
				Help: "Total number of normalized ads dropped by the date range filter",
			},
		),

		ExternalAPICalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_calls_total",
				Help: "Total number of external API calls",
			},
			[]string{"api", "status"},
		),

		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "external_api_duration_seconds",
				Help:    "External API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"api"},
		),

		ExternalAPIFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_failures_total",
				Help: "Total number of external API failures",
			},
			[]string{"api", "error_type"},
		),

		CollectionOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collection_operations_total",
				Help: "Total number of collection store operations",
			},
			[]string{"operation", "status"},
		),

		GeneratedImages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generated_images_total",
				Help: "Total number of AI image variants generated",
			},
			[]string{"status"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Search job metrics
func (m *Metrics) RecordSearchJob(status, stage string, duration time.Duration) {
	m.SearchJobsTotal.WithLabelValues(status, stage).Inc()
	m.SearchJobDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *Metrics) RecordNormalized(source string, count int) {
	m.AdRecordsNormalized.WithLabelValues(source).Add(float64(count))
}

func (m *Metrics) RecordFilteredOut(count int) {
	m.AdRecordsFilteredOut.Add(float64(count))
}

// External API call metrics
func (m *Metrics) RecordExternalAPICall(api, status string, duration time.Duration) {
	m.ExternalAPICalls.WithLabelValues(api, status).Inc()
	m.ExternalAPIDuration.WithLabelValues(api).Observe(duration.Seconds())
}

// External API failure metrics
func (m *Metrics) RecordExternalAPIFailure(api, errorType string) {
	m.ExternalAPIFailures.WithLabelValues(api, errorType).Inc()
}

func (m *Metrics) RecordCollectionOperation(operation, status string) {
	m.CollectionOperations.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) RecordGeneratedImage(status string) {
	m.GeneratedImages.WithLabelValues(status).Inc()
}

func (m *Metrics) IncSearchJobsInProgress() {
	m.SearchJobsInProgress.Inc()
}

func (m *Metrics) DecSearchJobsInProgress() {
	m.SearchJobsInProgress.Dec()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
