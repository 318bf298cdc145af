package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	filesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siciap_files_processed_total",
		Help: "Total number of uploaded files processed, by domain and outcome",
	}, []string{"domain", "outcome"})

	rowsInsertedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siciap_rows_inserted_total",
		Help: "Total number of rows loaded into destination tables",
	}, []string{"domain"})

	duplicatesRemovedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siciap_duplicates_removed_total",
		Help: "Total number of rows collapsed by business-key deduplication",
	}, []string{"domain"})

	ingestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "siciap_ingest_duration_seconds",
		Help:    "Time taken to process and load one uploaded file",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	}, []string{"domain"})
)

func init() {
	prometheus.MustRegister(
		filesProcessedTotal,
		rowsInsertedTotal,
		duplicatesRemovedTotal,
		ingestDuration,
	)
}
