// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Adapter fetch outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var (
	// CacheLookups counts tiered cache reads by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "content",
		Name:      "cache_lookups_total",
		Help:      "Tiered cache lookups by result.",
	}, []string{"result"})

	// AdapterFetches counts adapter calls by adapter and outcome.
	AdapterFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "content",
		Name:      "adapter_fetches_total",
		Help:      "Source adapter calls by outcome.",
	}, []string{"adapter", "outcome"})

	// AggregateDuration observes uncached aggregation latency.
	AggregateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "content",
		Name:      "aggregate_duration_seconds",
		Help:      "Latency of aggregations that missed the cache.",
		Buckets:   prometheus.DefBuckets,
	})
)
