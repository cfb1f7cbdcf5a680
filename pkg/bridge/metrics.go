package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector adapts a Bridge's Stats into a prometheus.Collector,
// so a host application can register it on its own *prometheus.Registry
// alongside its other collectors. It samples Stats.Snapshot() on every
// scrape rather than maintaining its own counters, since Stats already
// tracks everything a scrape needs. It takes a *Stats directly, rather
// than a *Bridge[DReq, DResp, DChunk], so it works with any
// dialect-instantiated Bridge.
type PrometheusCollector struct {
	stats *Stats

	total     *prometheus.Desc
	errors    *prometheus.Desc
	errorRate *prometheus.Desc
	p50       *prometheus.Desc
	p95       *prometheus.Desc
	p99       *prometheus.Desc
}

// NewPrometheusCollector builds a collector over a Bridge's Stats
// (b.Stats()). namespace is used as the metric name prefix, e.g.
// "mediator" yields "mediator_bridge_requests_total".
func NewPrometheusCollector(stats *Stats, namespace string) *PrometheusCollector {
	labels := []string{}
	return &PrometheusCollector{
		stats:     stats,
		total:     prometheus.NewDesc(namespace+"_bridge_requests_total", "Total requests handled by the bridge.", labels, nil),
		errors:    prometheus.NewDesc(namespace+"_bridge_errors_total", "Total requests that returned an error.", labels, nil),
		errorRate: prometheus.NewDesc(namespace+"_bridge_error_rate", "Fraction of requests that returned an error.", labels, nil),
		p50:       prometheus.NewDesc(namespace+"_bridge_latency_p50_seconds", "Median request latency.", labels, nil),
		p95:       prometheus.NewDesc(namespace+"_bridge_latency_p95_seconds", "95th percentile request latency.", labels, nil),
		p99:       prometheus.NewDesc(namespace+"_bridge_latency_p99_seconds", "99th percentile request latency.", labels, nil),
	}
}

func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.errors
	ch <- c.errorRate
	ch <- c.p50
	ch <- c.p95
	ch <- c.p99
}

func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(snap.Total))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(snap.Errors))
	ch <- prometheus.MustNewConstMetric(c.errorRate, prometheus.GaugeValue, snap.ErrorRate)
	ch <- prometheus.MustNewConstMetric(c.p50, prometheus.GaugeValue, snap.P50.Seconds())
	ch <- prometheus.MustNewConstMetric(c.p95, prometheus.GaugeValue, snap.P95.Seconds())
	ch <- prometheus.MustNewConstMetric(c.p99, prometheus.GaugeValue, snap.P99.Seconds())
}

var _ prometheus.Collector = (*PrometheusCollector)(nil)
