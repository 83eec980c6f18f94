package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawdown_uploads_total",
			Help: "CSV uploads by category and outcome",
		},
		[]string{"category", "status"},
	)

	UploadRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drawdown_upload_rows",
			Help:    "Price rows kept after cleaning an upload",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"category"},
	)

	UploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "drawdown_upload_duration_seconds",
			Help: "Time to parse, compute and store an upload",
		},
		[]string{"category"},
	)

	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawdown_store_errors_total",
			Help: "Failed store operations",
		},
		[]string{"op"},
	)
)
