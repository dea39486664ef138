// Package metrics exposes the same counters as internal/stats through a
// Prometheus registry, so the cache can be scraped alongside textual
// STATS output. Updates here are additive. Storage calls into this
// package (through its StatsSink) while holding its own lock.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry wraps a dedicated prometheus.Registry (not the global
// DefaultRegisterer) so metrics lifetime is tied to one server instance.
type Registry struct {
	reg *prometheus.Registry

	commandsTotal *prometheus.CounterVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	usedMemory    prometheus.Gauge
	maxMemory     prometheus.Gauge
	connections   prometheus.Gauge
	connsTotal    prometheus.Counter
}

// New creates a Registry and registers all of its collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cachesrv",
			Name:      "commands_total",
			Help:      "Total commands processed, by command name.",
		}, []string{"command"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cachesrv",
			Name:      "cache_hits_total",
			Help:      "Total GET lookups that found a live key.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cachesrv",
			Name:      "cache_misses_total",
			Help:      "Total GET lookups that found no live key.",
		}),
		usedMemory: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cachesrv",
			Name:      "used_memory_bytes",
			Help:      "Accounted key+value memory currently in use.",
		}),
		maxMemory: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cachesrv",
			Name:      "max_memory_bytes",
			Help:      "Configured memory budget.",
		}),
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cachesrv",
			Name:      "connections_current",
			Help:      "Currently open client connections.",
		}),
		connsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cachesrv",
			Name:      "connections_total",
			Help:      "Total client connections accepted since start.",
		}),
	}
}

// Registerer exposes the underlying registry for an HTTP /metrics handler.
func (r *Registry) Registerer() *prometheus.Registry {
	return r.reg
}

// IncCommand records one dispatched command by name.
func (r *Registry) IncCommand(name string) {
	r.commandsTotal.WithLabelValues(name).Inc()
}

// IncCacheHit implements store.StatsSink.
func (r *Registry) IncCacheHit() { r.cacheHits.Inc() }

// IncCacheMiss implements store.StatsSink.
func (r *Registry) IncCacheMiss() { r.cacheMisses.Inc() }

// SetUsedMemory implements store.StatsSink.
func (r *Registry) SetUsedMemory(bytes int64) { r.usedMemory.Set(float64(bytes)) }

// SetMaxMemory implements executor.MaxMemorySetter.
func (r *Registry) SetMaxMemory(bytes int64) { r.maxMemory.Set(float64(bytes)) }

// IncConnection records a newly accepted connection.
func (r *Registry) IncConnection() {
	r.connections.Inc()
	r.connsTotal.Inc()
}

// DecConnection records a closed connection.
func (r *Registry) DecConnection() { r.connections.Dec() }
