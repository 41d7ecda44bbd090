// Package metrics provides Prometheus metrics for the identification
// pipeline and its clients.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IdentifyMetrics contains Prometheus metrics for identification pipeline
// operations
type IdentifyMetrics struct {
	registry *prometheus.Registry

	searchesTotal     *prometheus.CounterVec
	stageResultsTotal *prometheus.CounterVec
	cacheLookupsTotal *prometheus.CounterVec
	searchDuration    *prometheus.HistogramVec
}

// NewIdentifyMetrics creates and registers new identification metrics
func NewIdentifyMetrics(registry *prometheus.Registry) (*IdentifyMetrics, error) {
	m := &IdentifyMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *IdentifyMetrics) initMetrics() {
	m.searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identify_searches_total",
			Help: "Total number of identification searches by final outcome source",
		},
		[]string{"source"}, // perenual, ai, ai_verified, web_discovery, none, error
	)

	m.stageResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identify_stage_results_total",
			Help: "Per-stage outcomes within the identification cascade",
		},
		[]string{"stage", "result"}, // stage: catalog, ai_identify, web_verify, web_discover, spelling
	)

	m.cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identify_cache_lookups_total",
			Help: "Cache lookups by cache name and outcome",
		},
		[]string{"cache", "outcome"}, // outcome: hit, miss
	)

	m.searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "identify_search_duration_seconds",
			Help: "End-to-end identification search duration",
			// LLM-backed stages dominate: 100ms up to ~50s
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)
}

// Describe implements prometheus.Collector
func (m *IdentifyMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.searchesTotal.Describe(ch)
	m.stageResultsTotal.Describe(ch)
	m.cacheLookupsTotal.Describe(ch)
	m.searchDuration.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *IdentifyMetrics) Collect(ch chan<- prometheus.Metric) {
	m.searchesTotal.Collect(ch)
	m.stageResultsTotal.Collect(ch)
	m.cacheLookupsTotal.Collect(ch)
	m.searchDuration.Collect(ch)
}

// RecordSearch counts a completed search by its final source.
func (m *IdentifyMetrics) RecordSearch(source string) {
	m.searchesTotal.WithLabelValues(source).Inc()
}

// RecordStageResult counts a stage outcome within the cascade.
func (m *IdentifyMetrics) RecordStageResult(stage, result string) {
	m.stageResultsTotal.WithLabelValues(stage, result).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *IdentifyMetrics) RecordCacheLookup(cache, outcome string) {
	m.cacheLookupsTotal.WithLabelValues(cache, outcome).Inc()
}

// RecordSearchDuration observes an end-to-end search duration in seconds.
func (m *IdentifyMetrics) RecordSearchDuration(source string, seconds float64) {
	m.searchDuration.WithLabelValues(source).Observe(seconds)
}
