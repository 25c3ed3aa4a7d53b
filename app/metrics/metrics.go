// Package metrics exposes Prometheus collectors for the headlines service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sourceFetchTotal           *prometheus.CounterVec
	sourceFetchDurationSeconds *prometheus.HistogramVec
	itemsExtractedTotal        *prometheus.CounterVec
	aggregateItems             prometheus.Histogram
	cacheRequestsTotal         *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	tasksTotal                 *prometheus.CounterVec

	once sync.Once
)

// Init registers the collectors. It is safe to call more than once.
func Init() {
	once.Do(func() {
		sourceFetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headlines_source_fetch_total",
				Help: "Total number of upstream fetches, labeled by source and outcome.",
			},
			[]string{"source", "outcome"},
		)

		sourceFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "headlines_source_fetch_duration_seconds",
				Help:    "Histogram of upstream fetch latencies, labeled by source.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 7, 10},
			},
			[]string{"source"},
		)

		itemsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headlines_items_extracted_total",
				Help: "Total number of items extracted, labeled by feed format.",
			},
			[]string{"format"},
		)

		aggregateItems = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "headlines_aggregate_items",
				Help:    "Number of items left after deduplication in one aggregation.",
				Buckets: []float64{0, 10, 20, 40, 80, 120, 200},
			},
		)

		cacheRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headlines_cache_requests_total",
				Help: "Total number of edge cache lookups, labeled by result.",
			},
			[]string{"result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route"},
		)

		tasksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headlines_tasks_total",
				Help: "Total number of background tasks executed, labeled by type and status.",
			},
			[]string{"type", "status"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one upstream fetch attempt.
func ObserveFetch(source, outcome string, duration time.Duration) {
	Init()
	sourceFetchTotal.WithLabelValues(source, outcome).Inc()
	sourceFetchDurationSeconds.WithLabelValues(source).Observe(duration.Seconds())
}

func ObserveExtracted(format string, count int) {
	Init()
	if count > 0 {
		itemsExtractedTotal.WithLabelValues(format).Add(float64(count))
	}
}

func ObserveAggregate(count int) {
	Init()
	aggregateItems.Observe(float64(count))
}

// ObserveCache records an edge cache lookup result (hit, miss, stale, error).
func ObserveCache(result string) {
	Init()
	cacheRequestsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

func ObserveTask(taskType, status string) {
	Init()
	tasksTotal.WithLabelValues(taskType, status).Inc()
}
