package router

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector adapts a Router's per-backend Stats into a
// prometheus.Collector, labeled by backend name so a single scrape
// covers every registered backend.
type PrometheusCollector struct {
	router *Router

	success    *prometheus.Desc
	failure    *prometheus.Desc
	avgLatency *prometheus.Desc
	p95Latency *prometheus.Desc
	circuit    *prometheus.Desc
	fallbacks  *prometheus.Desc
	cost       *prometheus.Desc
}

// NewPrometheusCollector builds a collector over a Router. namespace is
// used as the metric name prefix.
func NewPrometheusCollector(r *Router, namespace string) *PrometheusCollector {
	labels := []string{"backend"}
	return &PrometheusCollector{
		router:     r,
		success:    prometheus.NewDesc(namespace+"_router_backend_success_total", "Successful dispatches to this backend.", labels, nil),
		failure:    prometheus.NewDesc(namespace+"_router_backend_failure_total", "Failed dispatches to this backend.", labels, nil),
		avgLatency: prometheus.NewDesc(namespace+"_router_backend_latency_avg_seconds", "Average dispatch latency for this backend.", labels, nil),
		p95Latency: prometheus.NewDesc(namespace+"_router_backend_latency_p95_seconds", "95th percentile dispatch latency for this backend.", labels, nil),
		circuit:    prometheus.NewDesc(namespace+"_router_backend_circuit_open", "1 if this backend's circuit breaker is open, else 0.", labels, nil),
		fallbacks:  prometheus.NewDesc(namespace+"_router_fallbacks_total", "Requests that only succeeded after falling over to another backend.", nil, nil),
		cost:       prometheus.NewDesc(namespace+"_router_backend_cost_total", "Running estimated cost for this backend, for backends that implement CostEstimator.", labels, nil),
	}
}

func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.success
	ch <- c.failure
	ch <- c.avgLatency
	ch <- c.p95Latency
	ch <- c.circuit
	ch <- c.fallbacks
	ch <- c.cost
}

func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.router.Stats()
	for _, snap := range stats.Backends {
		ch <- prometheus.MustNewConstMetric(c.success, prometheus.CounterValue, float64(snap.SuccessCount), snap.Name)
		ch <- prometheus.MustNewConstMetric(c.failure, prometheus.CounterValue, float64(snap.FailureCount), snap.Name)
		ch <- prometheus.MustNewConstMetric(c.avgLatency, prometheus.GaugeValue, snap.AverageLatency.Seconds(), snap.Name)
		ch <- prometheus.MustNewConstMetric(c.p95Latency, prometheus.GaugeValue, snap.P95Latency.Seconds(), snap.Name)
		open := 0.0
		if snap.State == CircuitOpen {
			open = 1.0
		}
		ch <- prometheus.MustNewConstMetric(c.circuit, prometheus.GaugeValue, open, snap.Name)
		ch <- prometheus.MustNewConstMetric(c.cost, prometheus.CounterValue, snap.TotalCost, snap.Name)
	}
	ch <- prometheus.MustNewConstMetric(c.fallbacks, prometheus.CounterValue, float64(stats.TotalFallbacks))
}

var _ prometheus.Collector = (*PrometheusCollector)(nil)
