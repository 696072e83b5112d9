package hub

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the hub's Prometheus collectors on a private registry so
// tests can run several hubs in one process.
type Metrics struct {
	registry *prometheus.Registry

	SessionsActive    prometheus.Gauge
	MessagesTotal     *prometheus.CounterVec
	CheckpointsTotal  prometheus.Counter
	CollectionRecipes *prometheus.GaugeVec
}

// NewMetrics creates the hub collectors
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	return &Metrics{
		registry: registry,
		SessionsActive: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "syncd_sessions_active",
			Help: "Number of websocket sync sessions currently open.",
		}),
		MessagesTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "syncd_sync_messages_total",
			Help: "Sync protocol messages exchanged with clients.",
		}, []string{"direction"}),
		CheckpointsTotal: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "syncd_checkpoints_total",
			Help: "Collection documents written to storage.",
		}),
		CollectionRecipes: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "syncd_collection_recipes",
			Help: "Recipes currently in each collection document.",
		}, []string{"collection"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
