package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	resolutionsTotal    *prometheus.CounterVec
	buildDegradedTotal  *prometheus.CounterVec
	attachOutcomesTotal *prometheus.CounterVec
	activeSessions      prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metrics     *moduleMetrics
)

// EnsureRegistered registers the control-plane metrics with the default
// registry. Safe to call from every package constructor.
func EnsureRegistered() {
	metricsOnce.Do(func() {
		metrics = &moduleMetrics{
			resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "agentplane",
				Name:      "resolutions_total",
				Help:      "Config resolutions by winning provider and model source.",
			}, []string{"provider_source", "model_source"}),
			buildDegradedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "agentplane",
				Name:      "build_degraded_total",
				Help:      "Descriptor builds that fell back to runtime defaults, by reason.",
			}, []string{"reason"}),
			attachOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "agentplane",
				Name:      "session_attach_total",
				Help:      "Session attach outcomes (reused, resumed, created).",
			}, []string{"outcome"}),
			activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "agentplane",
				Name:      "sessions_active",
				Help:      "Sessions currently held in the in-memory table.",
			}),
		}

		prometheus.MustRegister(
			metrics.resolutionsTotal,
			metrics.buildDegradedTotal,
			metrics.attachOutcomesTotal,
			metrics.activeSessions,
		)
	})
}

// RecordResolution counts one config resolution by trace sources.
func RecordResolution(providerSource, modelSource string) {
	EnsureRegistered()
	metrics.resolutionsTotal.WithLabelValues(providerSource, modelSource).Inc()
}

// RecordBuildDegraded counts a descriptor build that dropped a secondary
// input (invalid executable path, unreadable MCP registry, ...).
func RecordBuildDegraded(reason string) {
	EnsureRegistered()
	metrics.buildDegradedTotal.WithLabelValues(reason).Inc()
}

// RecordAttach counts one session attach outcome.
func RecordAttach(outcome string) {
	EnsureRegistered()
	metrics.attachOutcomesTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions updates the in-memory session table gauge.
func SetActiveSessions(n int) {
	EnsureRegistered()
	metrics.activeSessions.Set(float64(n))
}
