package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStatsCollector exports pgxpool statistics to Prometheus on scrape.
type PoolStatsCollector struct {
	pool    *pgxpool.Pool
	service string

	gauges   []poolMetric
	counters []poolMetric
}

type poolMetric struct {
	desc  *prometheus.Desc
	value func(*pgxpool.Stat) float64
}

// NewPoolStatsCollector builds a collector labeled with the service name.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	labels := []string{"service"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(name, help, labels, nil)
	}

	return &PoolStatsCollector{
		pool:    pool,
		service: service,
		gauges: []poolMetric{
			{desc("db_pool_acquired_connections", "Number of currently acquired connections"),
				func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
			{desc("db_pool_idle_connections", "Number of currently idle connections"),
				func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
			{desc("db_pool_total_connections", "Total number of connections in the pool"),
				func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
			{desc("db_pool_max_connections", "Maximum number of connections allowed"),
				func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
			{desc("db_pool_constructing_connections", "Number of connections currently being constructed"),
				func(s *pgxpool.Stat) float64 { return float64(s.ConstructingConns()) }},
		},
		counters: []poolMetric{
			{desc("db_pool_acquire_count_total", "Total number of connection acquires"),
				func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }},
			{desc("db_pool_acquire_duration_seconds_total", "Total time spent acquiring connections in seconds"),
				func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }},
			{desc("db_pool_canceled_acquire_count_total", "Total number of canceled connection acquires"),
				func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }},
			{desc("db_pool_empty_acquire_count_total", "Total number of acquires that had to wait for a connection"),
				func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }},
			{desc("db_pool_new_connections_total", "Total number of new connections created"),
				func(s *pgxpool.Stat) float64 { return float64(s.NewConnsCount()) }},
			{desc("db_pool_max_lifetime_destroy_total", "Total connections destroyed due to max lifetime"),
				func(s *pgxpool.Stat) float64 { return float64(s.MaxLifetimeDestroyCount()) }},
			{desc("db_pool_max_idle_destroy_total", "Total connections destroyed due to max idle time"),
				func(s *pgxpool.Stat) float64 { return float64(s.MaxIdleDestroyCount()) }},
		},
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.gauges {
		ch <- m.desc
	}
	for _, m := range c.counters {
		ch <- m.desc
	}
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	for _, m := range c.gauges {
		ch <- prometheus.MustNewConstMetric(m.desc, prometheus.GaugeValue, m.value(stat), c.service)
	}
	for _, m := range c.counters {
		ch <- prometheus.MustNewConstMetric(m.desc, prometheus.CounterValue, m.value(stat), c.service)
	}
}

// RegisterPoolMetrics registers a pool collector with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	prometheus.MustRegister(NewPoolStatsCollector(pool, service))
}
