package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Catalog metrics
var (
	// CatalogLookupsTotal counts single-movie lookups by result ("hit" or "miss").
	CatalogLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "Total number of movie lookups by identifier.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		CatalogLookupsTotal,
	)
}
