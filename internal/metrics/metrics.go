package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitExceededTotal *prometheus.CounterVec

	// Domain metrics
	SignupsTotal      *prometheus.CounterVec
	LoginsTotal       *prometheus.CounterVec
	PostsCreatedTotal prometheus.Counter
	LikesTotal        prometheus.Counter
	CommentsTotal     prometheus.Counter
	FollowsTotal      *prometheus.CounterVec
	FeedQueryDuration prometheus.Histogram

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = newMetrics(promauto.With(prometheus.DefaultRegisterer))
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}

// NewWithRegistry builds an independent set of metrics on reg.
// Tests use it to read counters without touching the default registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetrics(promauto.With(reg))
}

func newMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path", "status"},
		),
		HTTPResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "path", "status"},
		),
		HTTPActiveConnections: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of currently active HTTP connections",
			},
			[]string{"method", "path"},
		),

		RateLimitExceededTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_exceeded_total",
				Help: "Total number of rate limit violations",
			},
			[]string{"endpoint", "method"},
		),

		SignupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webfinal_signups_total",
				Help: "Signup attempts by outcome",
			},
			[]string{"outcome"},
		),
		LoginsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webfinal_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		PostsCreatedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "webfinal_posts_created_total",
				Help: "Total number of posts created",
			},
		),
		LikesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "webfinal_likes_total",
				Help: "Total number of likes applied",
			},
		),
		CommentsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "webfinal_comments_created_total",
				Help: "Total number of comments created",
			},
		),
		FollowsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webfinal_follow_changes_total",
				Help: "Follow and unfollow operations",
			},
			[]string{"action"},
		),
		FeedQueryDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webfinal_feed_query_duration_seconds",
				Help:    "Time to load one feed page in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
			},
		),

		ErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total number of errors by type",
			},
			[]string{"error_type", "endpoint"},
		),
	}
}
