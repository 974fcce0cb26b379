package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dynqr_generations_total",
		Help: "Number of code images requested, by result.",
	}, []string{"result"})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dynqr_generation_duration_seconds",
		Help:    "Time spent encoding and drawing a code image.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	logoClampsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dynqr_logo_clamps_total",
		Help: "Number of logos shrunk to keep the code readable.",
	})

	recordsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dynqr_records",
		Help: "Number of stored records.",
	})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dynqr_cache_hits_total",
		Help: "Number of rendered images served from the cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dynqr_cache_misses_total",
		Help: "Number of rendered images not found in the cache.",
	})
)
