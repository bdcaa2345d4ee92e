// Package metrics exposes Prometheus instrumentation for the job pipeline
// and the HTTP boundary.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "mindweb"

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
type Metrics struct {
	JobsSubmitted  prometheus.Counter
	JobsRejected   prometheus.Counter
	JobsFinished   *prometheus.CounterVec
	JobsRunning    prometheus.Gauge
	QueueDepth     prometheus.Gauge
	StageDuration  *prometheus.HistogramVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	SummaryMethods *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers all collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.JobsSubmitted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: "jobs", Name: "submitted_total",
		Help: "Scrape jobs accepted into the queue.",
	})
	m.JobsRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: "jobs", Name: "rejected_total",
		Help: "Scrape jobs failed because the queue was full.",
	})
	m.JobsFinished = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: "jobs", Name: "finished_total",
		Help: "Scrape jobs that reached a terminal status.",
	}, []string{"status"})
	m.JobsRunning = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace, Subsystem: "jobs", Name: "running",
		Help: "Pipelines currently executing.",
	})
	m.QueueDepth = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace, Subsystem: "jobs", Name: "queue_depth",
		Help: "Jobs waiting for a worker.",
	})
	m.StageDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace, Subsystem: "pipeline", Name: "stage_duration_seconds",
		Help:    "Duration of each pipeline stage.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"stage", "outcome"})
	m.SummaryMethods = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: "pipeline", Name: "summaries_total",
		Help: "Summaries produced, by strategy.",
	}, []string{"method"})
	m.HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"method", "route", "code"})
	m.HTTPDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) JobSubmitted() {
	if m != nil {
		m.JobsSubmitted.Inc()
	}
}

func (m *Metrics) JobRejected() {
	if m != nil {
		m.JobsRejected.Inc()
	}
}

func (m *Metrics) JobFinished(status string) {
	if m != nil {
		m.JobsFinished.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) PipelineStarted() {
	if m != nil {
		m.JobsRunning.Inc()
	}
}

func (m *Metrics) PipelineDone() {
	if m != nil {
		m.JobsRunning.Dec()
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}

// ObserveStage records how long stage took and whether it succeeded.
func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StageDuration.WithLabelValues(stage, outcome).Observe(d.Seconds())
}

func (m *Metrics) SummaryProduced(method string) {
	if m != nil {
		m.SummaryMethods.WithLabelValues(method).Inc()
	}
}

// ObserveRequest records one served request. route is the router pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
