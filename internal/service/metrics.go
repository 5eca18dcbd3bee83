package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techhaven_search_sync_operations_total",
		Help: "Index sync operations by type and outcome.",
	}, []string{"operation", "status"})

	syncedDocuments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techhaven_search_synced_documents_total",
		Help: "Documents written to or rejected by the search index.",
	}, []string{"status"})

	resyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "techhaven_search_resync_duration_seconds",
		Help:    "Duration of full catalog resyncs.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
