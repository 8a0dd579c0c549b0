package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trading-relay/internal/domain"
)

const (
	namespace = "trading_relay"

	// otherModel agrupa los modelos fuera de la lista conocida.
	otherModel = "other"
)

// Metrics agrupa los colectores Prometheus del relay.
// Un *Metrics nil es válido: todos los métodos son no-op.
type Metrics struct {
	registry *prometheus.Registry
	models   map[string]struct{}

	activeConnections prometheus.Gauge
	framesTotal       *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec
	tokensTotal       *prometheus.CounterVec
	healthChecks      *prometheus.CounterVec
}

// New registra los colectores en registry; si es nil crea uno propio.
// models es la lista de modelos que se etiquetan por nombre (DefaultModel siempre
// está incluido); el resto se cuenta como "other" porque el modelo viene del cliente.
func New(registry *prometheus.Registry, models ...string) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	known := map[string]struct{}{domain.DefaultModel: {}}
	for _, model := range models {
		if model != "" {
			known[model] = struct{}{}
		}
	}
	m := &Metrics{
		registry: registry,
		models:   known,
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of open WebSocket connections",
		}),
		framesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Inbound frames processed, by outcome",
		}, []string{"outcome"}),
		completionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Duration of upstream completion calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model", "status"}),
		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens reported by the provider",
		}, []string{"model", "type"}),
		healthChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_checks_total",
			Help:      "Liveness probe results",
		}, []string{"status"}),
	}

	registry.MustRegister(
		m.activeConnections,
		m.framesTotal,
		m.completionLatency,
		m.tokensTotal,
		m.healthChecks,
	)
	return m
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

// FrameProcessed cuenta un frame por outcome: "success", "invalid", "rate_limited", "error".
func (m *Metrics) FrameProcessed(outcome string) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CompletionObserved(model, status string, d time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = m.modelLabel(model)
	m.completionLatency.WithLabelValues(model, status).Observe(d.Seconds())
	if inputTokens > 0 {
		m.tokensTotal.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.tokensTotal.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) modelLabel(model string) string {
	if _, ok := m.models[model]; ok {
		return model
	}
	return otherModel
}

func (m *Metrics) HealthChecked(status string) {
	if m == nil {
		return
	}
	m.healthChecks.WithLabelValues(status).Inc()
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
