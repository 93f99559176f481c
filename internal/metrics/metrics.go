// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pathway"

var (
	MatchesComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_computed_total",
			Help:      "Number of career match rankings computed (cache misses)",
		},
	)

	RoadmapsSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roadmaps_selected_total",
			Help:      "Number of roadmap selections by outcome",
		},
		[]string{"outcome"}, // match, no_match
	)

	MilestoneToggles = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestone_toggles_total",
			Help:      "Number of persisted milestone toggles",
		},
	)

	Enrollments = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrollments_total",
			Help:      "Number of course enrollments",
		},
	)

	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog reload attempts by result",
		},
		[]string{"result"}, // changed, unchanged, error
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by kind and result",
		},
		[]string{"kind", "result"}, // result: hit, miss, error
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome labels a roadmap selection result
func Outcome(selected int) string {
	if selected == 0 {
		return "no_match"
	}
	return "match"
}

// ObserveRequest records one HTTP request
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the default Prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
