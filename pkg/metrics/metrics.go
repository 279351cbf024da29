package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "examscore_predictions_total",
		Help: "Total number of predictions served, by model variant.",
	}, []string{"model"})

	failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "examscore_prediction_failures_total",
		Help: "Total number of rejected prediction requests, by reason.",
	}, []string{"reason"})

	clipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "examscore_predictions_clipped_total",
		Help: "Total number of predictions clipped to the score range.",
	})

	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "examscore_prediction_duration_seconds",
		Help:    "Duration of a single encode and score pass.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})

	artifactLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "examscore_artifact_loads_total",
		Help: "Total number of artifact load attempts, by status.",
	}, []string{"status"})

	artifactLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "examscore_artifact_load_duration_seconds",
		Help:    "Duration of loading the model artifacts.",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0},
	})
)

// ObservePrediction records a successful prediction.
func ObservePrediction(model string, d time.Duration, wasClipped bool) {
	predictions.WithLabelValues(model).Inc()
	predictionDuration.Observe(d.Seconds())
	if wasClipped {
		clipped.Inc()
	}
}

// ObserveFailure records a rejected prediction.
func ObserveFailure(reason string) {
	failures.WithLabelValues(reason).Inc()
}

// ObserveArtifactLoad records one artifact load attempt.
func ObserveArtifactLoad(d time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	artifactLoads.WithLabelValues(status).Inc()
	artifactLoadDuration.Observe(d.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
