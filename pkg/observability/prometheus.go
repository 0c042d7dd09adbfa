package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements BuildHooks and StoreHooks with Prometheus metrics
// on a private registry. The CLI has no HTTP listener, so metrics are
// exported with [Prometheus.WriteTextfile] for node_exporter's textfile
// collector.
type Prometheus struct {
	registry *prometheus.Registry

	buildsTotal   *prometheus.CounterVec   // By viz_type and status (ok/error)
	buildDuration *prometheus.HistogramVec // By viz_type
	graphNodes    *prometheus.GaugeVec     // By viz_type, last build
	graphEdges    *prometheus.GaugeVec     // By viz_type, last build
	warnings      *prometheus.CounterVec   // By viz_type

	storeCalls    *prometheus.CounterVec   // By op and status
	storeDuration *prometheus.HistogramVec // By op
	conflicts     *prometheus.CounterVec   // By deployment
}

// NewPrometheus creates and registers the metrics.
func NewPrometheus() *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),

		buildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "circuitry",
			Subsystem: "graph",
			Name:      "builds_total",
			Help:      "Total number of graph builds",
		}, []string{"viz_type", "status"}),

		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "circuitry",
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Graph build duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"viz_type"}),

		graphNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "circuitry",
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Node count of the most recent graph",
		}, []string{"viz_type"}),

		graphEdges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "circuitry",
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Edge count of the most recent graph",
		}, []string{"viz_type"}),

		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "circuitry",
			Subsystem: "graph",
			Name:      "warnings_total",
			Help:      "Total number of data-quality warnings raised by graph builds",
		}, []string{"viz_type"}),

		storeCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "circuitry",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of connection store operations",
		}, []string{"op", "status"}),

		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "circuitry",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Connection store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),

		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "circuitry",
			Subsystem: "store",
			Name:      "port_conflicts_total",
			Help:      "Total number of connection writes rejected for an occupied port",
		}, []string{"deployment"}),
	}

	m.registry.MustRegister(
		m.buildsTotal,
		m.buildDuration,
		m.graphNodes,
		m.graphEdges,
		m.warnings,
		m.storeCalls,
		m.storeDuration,
		m.conflicts,
	)
	return m
}

// Hooks returns a hook set backed by m.
func (m *Prometheus) Hooks() Hooks {
	return Hooks{Build: m, Store: m}
}

// Registry returns the registry holding the metrics.
func (m *Prometheus) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the current metric values to path in the text
// exposition format.
func (m *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Prometheus) OnBuildStart(context.Context, string, string, int, int) {}

func (m *Prometheus) OnBuildComplete(_ context.Context, vizType string, nodes, edges, warnings int, duration time.Duration, err error) {
	m.buildsTotal.WithLabelValues(vizType, status(err)).Inc()
	m.buildDuration.WithLabelValues(vizType).Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.graphNodes.WithLabelValues(vizType).Set(float64(nodes))
	m.graphEdges.WithLabelValues(vizType).Set(float64(edges))
	m.warnings.WithLabelValues(vizType).Add(float64(warnings))
}

func (m *Prometheus) OnStoreCall(_ context.Context, op string, duration time.Duration, err error) {
	m.storeCalls.WithLabelValues(op, status(err)).Inc()
	m.storeDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *Prometheus) OnConflict(_ context.Context, deployment string) {
	m.conflicts.WithLabelValues(deployment).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ BuildHooks = (*Prometheus)(nil)
	_ StoreHooks = (*Prometheus)(nil)
)
