// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Exchange outcomes.
const (
	OutcomeOK               = "ok"
	OutcomeConfigInvalid    = "config_invalid"
	OutcomeTransportFailure = "transport_failure"
	OutcomeCancelled        = "cancelled"
)

// Stream record kinds.
const (
	RecordToken     = "token"
	RecordDiscrete  = "discrete"
	RecordMalformed = "malformed"
	RecordRepaired  = "repaired"
)

// Collector bundles the session core's prometheus metrics.
type Collector struct {
	exchangesTotal      *prometheus.CounterVec
	exchangeDuration    prometheus.Histogram
	streamRecordsTotal  *prometheus.CounterVec
	connectionsTotal    *prometheus.CounterVec
	connectionsRejected *prometheus.CounterVec
	graphNodes          prometheus.Gauge
	graphEdges          prometheus.Gauge

	logger *zap.Logger
}

// NewCollector creates a metrics collector registered on reg. A nil
// registerer falls back to the default prometheus registry; tests pass
// their own registry to avoid duplicate registration.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.exchangesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Total number of chat exchanges by outcome",
		},
		[]string{"outcome"},
	)

	c.exchangeDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exchange_duration_seconds",
			Help:      "Chat exchange duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	c.streamRecordsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_records_total",
			Help:      "Total number of stream records processed by kind",
		},
		[]string{"kind"},
	)

	c.connectionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of connection attempts by result",
		},
		[]string{"result"},
	)

	c.connectionsRejected = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Connection attempts rejected, by rule",
		},
		[]string{"rule"},
	)

	c.graphNodes = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Current number of nodes in the session graph",
		},
	)

	c.graphEdges = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Current number of edges in the session graph",
		},
	)

	return c
}

// RecordExchange records one finished exchange.
func (c *Collector) RecordExchange(outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.exchangesTotal.WithLabelValues(outcome).Inc()
	c.exchangeDuration.Observe(duration.Seconds())
}

// RecordStreamRecords adds n processed records of the given kind.
func (c *Collector) RecordStreamRecords(kind string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.streamRecordsTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordConnectionAccepted records a validator-approved connection.
func (c *Collector) RecordConnectionAccepted() {
	if c == nil {
		return
	}
	c.connectionsTotal.WithLabelValues("accepted").Inc()
}

// RecordConnectionRejected records a refused connection and the rule that
// refused it.
func (c *Collector) RecordConnectionRejected(rule string) {
	if c == nil {
		return
	}
	c.connectionsTotal.WithLabelValues("rejected").Inc()
	c.connectionsRejected.WithLabelValues(rule).Inc()
}

// SetGraphSize updates the graph size gauges.
func (c *Collector) SetGraphSize(nodes, edges int) {
	if c == nil {
		return
	}
	c.graphNodes.Set(float64(nodes))
	c.graphEdges.Set(float64(edges))
}
