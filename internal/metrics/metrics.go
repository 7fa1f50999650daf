// Package metrics exposes Prometheus collectors for the HTTP surface and
// questionnaire submissions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/middleware"
)

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
	fitScore        prometheus.Histogram
	cvAnalyses      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "personality_submissions_total",
				Help: "Questionnaire submissions by outcome",
			},
			[]string{"outcome"},
		),
		fitScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "personality_fit_score",
			Help:    "Fit score of completed questionnaires",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		cvAnalyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cv_analyses_total",
				Help: "Résumé analyses by outcome",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.submissions,
		m.fitScore,
		m.cvAnalyses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSubmission implements services.SubmissionObserver.
func (m *Metrics) ObserveSubmission(outcome string, fitScore int) {
	m.submissions.WithLabelValues(outcome).Inc()
	if outcome == "completed" {
		m.fitScore.Observe(float64(fitScore))
	}
}

// ObserveAnalysis counts résumé analyses.
func (m *Metrics) ObserveAnalysis(outcome string) {
	m.cvAnalyses.WithLabelValues(outcome).Inc()
}

// Middleware records request count and latency by route pattern, so path
// parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		endpoint := middleware.RoutePattern(r)
		m.requests.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
