// Package monitoring exports service metrics in the Prometheus text format.
package monitoring

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsclf/inference"
)

const namespace = "newsclf"

// Prediction outcomes used as the "outcome" label.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeNotReady     = "not_ready"
	OutcomeFailed       = "failed"
)

// Metrics owns a private registry so tests and multiple servers never collide
// on the global one. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	predictions  *prometheus.CounterVec
	outcomes     *prometheus.CounterVec
	reloads      *prometheus.CounterVec
	modelVersion prometheus.Gauge
	modelsReady  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Successful predictions by category.",
		}, []string{"category"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_requests_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_reloads_total",
			Help:      "Model reloads by result.",
		}, []string{"result"}),
		modelVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_bundle_version",
			Help:      "Version of the model bundle currently serving.",
		}),
		modelsReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "models_ready",
			Help:      "1 when all three artifacts are loaded.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.predictions,
		m.outcomes,
		m.reloads,
		m.modelVersion,
		m.modelsReady,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served request. route is the matched mux
// pattern, or empty when nothing matched.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}

// ObservePrediction records the outcome of one Predict call.
func (m *Metrics) ObservePrediction(category string, err error) {
	if m == nil {
		return
	}
	outcome := Outcome(err)
	m.outcomes.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.predictions.WithLabelValues(category).Inc()
	}
}

// ObserveEvent tracks reload results and the serving bundle. It is meant to
// be passed to inference.Service.Subscribe.
func (m *Metrics) ObserveEvent(ev inference.Event) {
	if m == nil {
		return
	}
	result := "success"
	if ev.Type == inference.EventReloadFailed {
		result = "failure"
	}
	m.reloads.WithLabelValues(result).Inc()
	m.SetBundle(ev.Health)
}

// SetBundle publishes the version and readiness of the serving bundle.
func (m *Metrics) SetBundle(h inference.HealthStatus) {
	if m == nil {
		return
	}
	m.modelVersion.Set(float64(h.Version))
	if h.Status == inference.StatusHealthy {
		m.modelsReady.Set(1)
	} else {
		m.modelsReady.Set(0)
	}
}

// Outcome classifies a Predict error into a bounded label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, inference.ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, inference.ErrModelsNotReady):
		return OutcomeNotReady
	default:
		return OutcomeFailed
	}
}
