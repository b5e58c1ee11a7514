// Package metrics define las métricas Prometheus del gate. Van en un
// package standalone para evitar ciclos de import entre detect/cluster y
// las capas HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoleChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litegate_role_checks_total",
		Help: "Detecciones de rol, por rol resultante",
	}, []string{"role"})

	RoleCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "litegate_role_cache_hits_total",
		Help: "Lecturas de rol servidas desde el cache",
	})

	RoleCacheRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "litegate_role_cache_refresh_total",
		Help: "Refreshes del cache de rol (lecturas reales de la fuente)",
	})

	WritesRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "litegate_writes_rejected_total",
		Help: "Statements de escritura rechazados por no ser primary",
	})

	SplitBrainNodes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "litegate_split_brain_nodes",
		Help: "Cantidad de nodos reclamando primary simultáneamente (0 o >=2)",
	})

	HeartbeatApplyLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "litegate_heartbeat_apply_latency_ms",
		Help:    "Latencia de raft.Apply de heartbeats en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	LeadershipChanges = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "litegate_leadership_changes_total",
		Help: "Cambios de rol a leader en la elección por votos",
	})

	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "litegate_http_in_flight_requests",
		Help: "Requests HTTP en vuelo en la superficie de status",
	})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "litegate_http_request_duration_seconds",
		Help:    "Duración de requests HTTP por path y status",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "status"})
)

// Register registra todas las métricas en reg (o el default si es nil),
// tolerando registros duplicados.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cs := []prometheus.Collector{
		RoleChecks,
		RoleCacheHits,
		RoleCacheRefreshes,
		WritesRejected,
		SplitBrainNodes,
		HeartbeatApplyLatency,
		LeadershipChanges,
		HTTPInFlight,
		HTTPDuration,
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
