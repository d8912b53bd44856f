package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dss_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dss_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dss_predictions_total",
			Help: "Total number of diagnoses by predicted label",
		},
		[]string{"label", "status"}, // status: success|error
	)

	PredictionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dss_prediction_latency_seconds",
			Help:    "Pipeline prediction latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		},
	)

	SubmissionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dss_submissions_rejected_total",
			Help: "Form submissions rejected before prediction",
		},
		[]string{"reason"}, // reason: validation|schema
	)

	ArtifactLoadSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dss_artifact_load_seconds",
			Help: "Time spent loading each artifact at startup",
		},
		[]string{"artifact"},
	)

	DatasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dss_dataset_rows",
			Help: "Rows in the reference dataset",
		},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			HTTPDuration,
			Predictions,
			PredictionLatency,
			SubmissionsRejected,
			ArtifactLoadSeconds,
			DatasetRows,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveArtifact(name string, took time.Duration) {
	ArtifactLoadSeconds.WithLabelValues(name).Set(took.Seconds())
}

func ObservePrediction(label string, took time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		label = "none"
	}
	Predictions.WithLabelValues(label, status).Inc()
	PredictionLatency.Observe(took.Seconds())
}

func ObserveRejection(reason string) {
	SubmissionsRejected.WithLabelValues(reason).Inc()
}
