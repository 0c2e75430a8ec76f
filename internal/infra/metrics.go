package infra

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the Prometheus collectors of the trade ledger.
// Each instance owns its registry so tests never share counters.
type Metrics struct {
	registry *prometheus.Registry

	tradesRecorded    *prometheus.CounterVec
	tradesRejected    *prometheus.CounterVec
	securityUpserts   prometheus.Counter
	metricQueries     *prometheus.CounterVec
	queryDuration     *prometheus.HistogramVec
	securitiesTracked prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tradesRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocks_trades_recorded_total",
				Help: "Total number of trades accepted into a ledger",
			},
			[]string{"symbol", "side"},
		),
		tradesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocks_trades_rejected_total",
				Help: "Total number of rejected trade submissions",
			},
			[]string{"reason"},
		),
		securityUpserts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stocks_security_upserts_total",
				Help: "Total number of successful security upserts",
			},
		),
		metricQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocks_metric_queries_total",
				Help: "Total number of metric queries",
			},
			[]string{"metric", "status"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocks_metric_query_duration_seconds",
				Help:    "Metric query duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"metric"},
		),
		securitiesTracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stocks_securities_tracked",
				Help: "Number of registered securities",
			},
		),
	}

	m.registry.MustRegister(
		m.tradesRecorded,
		m.tradesRejected,
		m.securityUpserts,
		m.metricQueries,
		m.queryDuration,
		m.securitiesTracked,
	)
	return m
}

// RecordTrade counts an accepted trade.
func (m *Metrics) RecordTrade(symbol, side string) {
	m.tradesRecorded.WithLabelValues(symbol, side).Inc()
}

// RecordRejection counts a rejected trade submission.
func (m *Metrics) RecordRejection(reason string) {
	m.tradesRejected.WithLabelValues(reason).Inc()
}

// RecordUpsert counts a security upsert and updates the tracked gauge.
func (m *Metrics) RecordUpsert(tracked int) {
	m.securityUpserts.Inc()
	m.securitiesTracked.Set(float64(tracked))
}

// RecordQuery records the outcome and latency of a metric query.
func (m *Metrics) RecordQuery(metric string, err error, elapsed time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.metricQueries.WithLabelValues(metric, status).Inc()
	m.queryDuration.WithLabelValues(metric).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry (for gathering in tests and reports).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
