package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "harmony"

// Prometheus exposes generation and HTTP metrics on its own registry
type Prometheus struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	runs       *prometheus.CounterVec
	attempts   *prometheus.HistogramVec
	duration   *prometheus.HistogramVec
	rejections *prometheus.CounterVec
}

// NewPrometheus registers the collectors on a fresh registry along with the
// Go runtime and process collectors.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by endpoint and status code",
		}, []string{"endpoint", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: "http",
			Name:      "latency_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: "generation",
			Name:      "runs_total",
			Help:      "Generation requests by preset and outcome",
		}, []string{"preset", "outcome"}),
		attempts: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: "generation",
			Name:      "attempts",
			Help:      "Budgeted attempts used per successful search",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		}, []string{"preset"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"preset"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: "generation",
			Name:      "rejections_total",
			Help:      "Audited rule violations by code",
		}, []string{"code"}),
	}
}

func (p *Prometheus) RecordAPIRequest(_ context.Context, endpoint string, statusCode int, duration time.Duration) {
	p.requests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	p.latency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (p *Prometheus) RecordGeneration(_ context.Context, s GenerationSample) {
	preset := presetLabel(s.Preset)
	p.runs.WithLabelValues(preset, outcome(s)).Inc()
	if !s.Success || s.Cached {
		return
	}
	p.attempts.WithLabelValues(preset).Observe(float64(s.Attempts))
	p.duration.WithLabelValues(preset).Observe(s.Duration.Seconds())
	for code, n := range s.Rejections {
		p.rejections.WithLabelValues(code).Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func outcome(s GenerationSample) string {
	switch {
	case !s.Success:
		return "failed"
	case s.Cached:
		return "cached"
	case s.Fallback:
		return "fallback"
	default:
		return "ok"
	}
}
