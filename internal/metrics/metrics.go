// Package metrics declares the Prometheus collectors shared by the HTTP
// layer and the marketplace workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Workflows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_workflows_total",
		Help: "Marketplace workflow executions by operation and result",
	}, []string{"operation", "result"})
	BooksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_books_created_total",
		Help: "Books created by approving a submission with a new (title, author)",
	})
	EventPublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_event_publish_errors_total",
		Help: "Events that could not be published to the broker",
	}, []string{"type"})
	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookstore_http_request_duration_seconds",
		Help:    "HTTP request latency by route, method and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_cache_lookups_total",
		Help: "Response cache lookups by outcome",
	}, []string{"outcome"})
)
