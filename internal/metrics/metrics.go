// Package metrics holds the prometheus collectors for uploads and previews.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload result labels.
const (
	ResultSuccess          = "success"
	ResultCredentialsError = "credentials_error"
	ResultUploadError      = "upload_error"
)

// Preview result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bucketdrop_uploads_total",
		Help: "Upload attempts by result",
	}, []string{"result"})

	UploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bucketdrop_uploaded_bytes_total",
		Help: "Bytes delivered by successful uploads",
	})

	UploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bucketdrop_upload_duration_seconds",
		Help:    "Duration of put-object calls",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
	})

	// source is "local" or "icon", result is ResultOK or ResultError.
	PreviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bucketdrop_previews_total",
		Help: "Preview resolutions by source and result",
	}, []string{"source", "result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
