// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StreamOutcomes counts terminal stream events by request kind and outcome.
	StreamOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ailawyer",
		Name:      "stream_outcomes_total",
		Help:      "Completed and failed generation streams.",
	}, []string{"kind", "outcome"})

	RetrievalHits = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ailawyer",
		Name:      "retrieval_hits",
		Help:      "Chunks returned per retrieval after thresholding.",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})

	IndexedChunks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ailawyer",
		Name:      "indexed_chunks",
		Help:      "Chunks currently searchable.",
	})

	IndexJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ailawyer",
		Name:      "index_jobs_total",
		Help:      "Document indexing jobs by result.",
	}, []string{"result"})
)
