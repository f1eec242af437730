// Package metrics provides Prometheus instrumentation for gostream streams.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gostream components.
type Registry struct {
	// Readable Metrics
	ChunksDelivered *prometheus.CounterVec
	ReadableBuffer  *prometheus.GaugeVec
	StreamsEnded    *prometheus.CounterVec

	// Writable Metrics
	DrainEvents     *prometheus.CounterVec
	StreamsFinished *prometheus.CounterVec

	// Shared Metrics
	StreamErrors  *prometheus.CounterVec
	StreamsClosed *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by gostream components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	cfg := DefaultConfig()
	cfg.Registry = reg
	return NewRegistryWithConfig(cfg)
}

// NewRegistryWithConfig creates a new metrics registry with the given configuration.
func NewRegistryWithConfig(cfg Config) *Registry {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultConfig().Namespace
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(cfg.Registry)

	return &Registry{
		ChunksDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.Namespace,
				Subsystem:   "readable",
				Name:        "chunks_delivered_total",
				Help:        "Total number of chunks delivered as data events",
				ConstLabels: cfg.Labels,
			},
			[]string{"stream_name"},
		),

		ReadableBuffer: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   cfg.Namespace,
				Subsystem:   "readable",
				Name:        "buffer_length",
				Help:        "Number of chunks currently buffered",
				ConstLabels: cfg.Labels,
			},
			[]string{"stream_name"},
		),

		StreamsEnded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.Namespace,
				Subsystem:   "readable",
				Name:        "ended_total",
				Help:        "Total number of streams that consumed their end marker",
				ConstLabels: cfg.Labels,
			},
			[]string{"stream_name"},
		),

		DrainEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.Namespace,
				Subsystem:   "writable",
				Name:        "drain_events_total",
				Help:        "Total number of drain events after backpressure",
				ConstLabels: cfg.Labels,
			},
			[]string{"stream_name"},
		),

		StreamsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.Namespace,
				Subsystem:   "writable",
				Name:        "finished_total",
				Help:        "Total number of streams that completed their final hook",
				ConstLabels: cfg.Labels,
			},
			[]string{"stream_name"},
		),

		StreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.Namespace,
				Subsystem:   "stream",
				Name:        "errors_total",
				Help:        "Total number of stream errors",
				ConstLabels: cfg.Labels,
			},
			[]string{"stream_name", "side"},
		),

		StreamsClosed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.Namespace,
				Subsystem:   "stream",
				Name:        "closed_total",
				Help:        "Total number of streams torn down",
				ConstLabels: cfg.Labels,
			},
			[]string{"stream_name", "side"},
		),
	}
}
