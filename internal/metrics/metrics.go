// Package metrics exposes Prometheus counters for dashboard updates.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard_config"

// Scope labels.
const (
	ScopeDashboard = "dashboard"
	ScopeWidget    = "widget"
)

type Metrics struct {
	registry  *prometheus.Registry
	updates   *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	cascades  *prometheus.CounterVec
	cascadeTo prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Configuration updates applied, by scope.",
		}, []string{"scope"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_rejected_total",
			Help:      "Configuration updates rejected by validation, by scope.",
		}, []string{"scope"}),
		cascades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_cascades_total",
			Help:      "Widget updates that cascaded through a sync group.",
		}, []string{"group"}),
		cascadeTo: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_cascade_widgets_total",
			Help:      "Widgets written by sync cascades.",
		}),
	}
	m.registry.MustRegister(
		m.updates, m.rejected, m.cascades, m.cascadeTo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Updated(scope string) {
	m.updates.WithLabelValues(scope).Inc()
}

func (m *Metrics) Rejected(scope string) {
	m.rejected.WithLabelValues(scope).Inc()
}

// Cascaded records a synced widget update that wrote the key on n widgets.
func (m *Metrics) Cascaded(group string, n int) {
	m.cascades.WithLabelValues(group).Inc()
	m.cascadeTo.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
