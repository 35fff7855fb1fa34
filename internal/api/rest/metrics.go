package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logextractor",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "logextractor",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"method", "path"},
	)

	// extractionResults counts terminal outcomes per use case, errors
	// included.
	extractionResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logextractor",
			Subsystem: "extraction",
			Name:      "results_total",
			Help:      "Terminal extraction outcomes by use case",
		},
		[]string{"use_case", "outcome"},
	)
)
