// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus collectors for map generation and an
// HTTP handler for scraping. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors.
type Metrics struct {
	FilesExtracted *prometheus.CounterVec
	FilesSkipped   prometheus.Counter
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	RankIterations prometheus.Histogram
	MapTokens      prometheus.Histogram
	MapDuration    prometheus.Histogram
	MapsGenerated  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. If reg is nil the
// collectors are created but not registered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FilesExtracted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repomap_files_extracted_total",
				Help: "Files whose tags were extracted or loaded from cache, by language.",
			},
			[]string{"language"},
		),
		FilesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "repomap_files_skipped_total",
				Help: "Files with no adapter for their language.",
			},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "repomap_tag_cache_hits_total",
				Help: "Tag cache hits.",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "repomap_tag_cache_misses_total",
				Help: "Tag cache misses.",
			},
		),
		RankIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "repomap_rank_iterations",
				Help:    "Power iterations per ranking.",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200},
			},
		),
		MapTokens: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "repomap_map_tokens",
				Help:    "Estimated tokens in rendered maps.",
				Buckets: prometheus.ExponentialBuckets(64, 2, 10),
			},
		),
		MapDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "repomap_map_duration_seconds",
				Help:    "End-to-end map generation latency.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		MapsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repomap_maps_generated_total",
				Help: "Map generation requests by outcome (ok, invalid, cancelled).",
			},
			[]string{"outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.FilesExtracted,
			m.FilesSkipped,
			m.CacheHits,
			m.CacheMisses,
			m.RankIterations,
			m.MapTokens,
			m.MapDuration,
			m.MapsGenerated,
		)
	}
	return m
}

// ObserveFile records one extracted file.
func (m *Metrics) ObserveFile(language string, cacheHit bool) {
	if m == nil {
		return
	}
	m.FilesExtracted.WithLabelValues(language).Inc()
	if cacheHit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// ObserveSkipped records a file with an unsupported language.
func (m *Metrics) ObserveSkipped() {
	if m == nil {
		return
	}
	m.FilesSkipped.Inc()
}

// ObserveMap records a completed map generation.
func (m *Metrics) ObserveMap(iterations, tokens int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RankIterations.Observe(float64(iterations))
	m.MapTokens.Observe(float64(tokens))
	m.MapDuration.Observe(elapsed.Seconds())
	m.MapsGenerated.WithLabelValues("ok").Inc()
}

// ObserveOutcome records a request that ended without a map.
func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.MapsGenerated.WithLabelValues(outcome).Inc()
}

// Handler returns an HTTP handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
