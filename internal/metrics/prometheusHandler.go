package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var passagesIndexed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "passages_indexed_total",
	Help: "Number of passages written to the vector index",
})

var passagesSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "passages_skipped_total",
	Help: "Number of passages skipped because their source was already indexed",
})

var askDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ask_request_duration_seconds",
	Help:    "Total time spent answering a question.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

// WriteHeader records the status code so handlers that write through the
// embedded writer still get the right http_requests_total label.
func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func AddPassagesIndexed(count int) {
	passagesIndexed.Add(float64(count))
}

func AddPassagesSkipped(count int) {
	passagesSkipped.Add(float64(count))
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureAskMetrics(label string, timeElapsed time.Duration) {
	askDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
