package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	latencySeconds        *prometheus.HistogramVec
	errorsTotal           *prometheus.CounterVec
	sessionsStarted       prometheus.Counter
	submissionsGraded     prometheus.Counter
	proctorFramesIngested prometheus.Counter
	quotaDenials          *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the
// assessment engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exam_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_errors_total",
			Help: "Total number of error responses.",
		}, []string{"method", "route", "status"})

		sessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_sessions_started_total",
			Help: "Total number of exam sessions started.",
		})

		submissionsGraded = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_submissions_graded_total",
			Help: "Total number of exam submissions graded.",
		})

		proctorFramesIngested = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proctor_frames_ingested_total",
			Help: "Total number of proctoring frames stored.",
		})

		quotaDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tenant_quota_denials_total",
			Help: "Total number of creations rejected by tenant quotas.",
		}, []string{"resource_kind"})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal,
			sessionsStarted, submissionsGraded, proctorFramesIngested, quotaDenials)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// SessionsStarted exposes the counter for started sessions.
func SessionsStarted() prometheus.Counter {
	RegisterMetrics()
	return sessionsStarted
}

// SubmissionsGraded exposes the counter for graded submissions.
func SubmissionsGraded() prometheus.Counter {
	RegisterMetrics()
	return submissionsGraded
}

// ProctorFramesIngested exposes the counter for stored proctoring frames.
func ProctorFramesIngested() prometheus.Counter {
	RegisterMetrics()
	return proctorFramesIngested
}

// QuotaDenials exposes the counter for quota-rejected creations.
func QuotaDenials() *prometheus.CounterVec {
	RegisterMetrics()
	return quotaDenials
}
