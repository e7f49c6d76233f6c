package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds. Upstream classifiers routinely take seconds.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderator_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"path", "method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moderator_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"path"},
	)

	StrategyAttempts = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderator_strategy_attempts_total",
			Help: "Classification attempts per strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	StrategyLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moderator_strategy_latency_ms",
			Help:    "Strategy latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"strategy"},
	)

	RateLimited = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "moderator_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

// Initialize registers process metrics and makes the private registry the default one.
func Initialize() {
	_ = registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	_ = registry.Register(collectors.NewGoCollector())

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

func Gatherer() prometheus.Gatherer {
	return registry
}
