package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// poolMetric maps one pgxpool.Stat reading onto a Prometheus metric.
type poolMetric struct {
	desc *prometheus.Desc
	kind prometheus.ValueType
	read func(*pgxpool.Stat) float64
}

// PoolStatsCollector exports pgx connection pool statistics. The pool exposes
// counters and gauges by value, so a custom collector reads them on scrape
// instead of sampling on a timer.
type PoolStatsCollector struct {
	pool    *pgxpool.Pool
	metrics []poolMetric
}

// NewPoolStatsCollector builds a collector for the given pool, labelled with
// the service name.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	labels := prometheus.Labels{"service": service}
	gauge := func(name, help string, read func(*pgxpool.Stat) float64) poolMetric {
		return poolMetric{prometheus.NewDesc(name, help, nil, labels), prometheus.GaugeValue, read}
	}
	counter := func(name, help string, read func(*pgxpool.Stat) float64) poolMetric {
		return poolMetric{prometheus.NewDesc(name, help, nil, labels), prometheus.CounterValue, read}
	}

	return &PoolStatsCollector{
		pool: pool,
		metrics: []poolMetric{
			gauge("shop_db_pool_acquired_connections", "Connections currently checked out.",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
			gauge("shop_db_pool_idle_connections", "Connections sitting idle in the pool.",
				func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
			gauge("shop_db_pool_total_connections", "All connections the pool holds.",
				func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
			gauge("shop_db_pool_max_connections", "Configured pool ceiling.",
				func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
			counter("shop_db_pool_acquires_total", "Connection acquires since start.",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }),
			counter("shop_db_pool_acquire_wait_seconds_total", "Time spent waiting to acquire a connection.",
				func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }),
			counter("shop_db_pool_empty_acquires_total", "Acquires that had to wait for a free connection.",
				func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.read(stat))
	}
}

// RegisterPoolMetrics registers the pool collector with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	prometheus.MustRegister(NewPoolStatsCollector(pool, service))
}
