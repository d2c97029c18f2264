/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package wmetrics exposes the server's optional Prometheus
// instrumentation: counters and gauges registered against a caller-owned
// registry so the binary can opt out of metrics entirely by never
// constructing a Collector.
package wmetrics

import "github.com/prometheus/client_golang/prometheus"

// Collector bundles every metric the server reports.
type Collector struct {
	RequestsTotal    *prometheus.CounterVec
	ActiveConns      prometheus.Gauge
	ActiveSessions   prometheus.Gauge
	RequestDuration  prometheus.Histogram
}

// New builds a Collector and registers it against reg. Passing
// prometheus.NewRegistry() keeps metrics out of the global default
// registry when the caller wants an isolated instance (e.g. in tests).
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emberhttp",
			Name:      "requests_total",
			Help:      "Total HTTP requests served, labeled by status class.",
		}, []string{"status_class"}),
		ActiveConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "emberhttp",
			Name:      "active_connections",
			Help:      "Number of connections currently being served.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "emberhttp",
			Name:      "active_sessions",
			Help:      "Number of live (non-tombstoned) sessions.",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "emberhttp",
			Name:      "request_duration_seconds",
			Help:      "Request handling latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.RequestsTotal, c.ActiveConns, c.ActiveSessions, c.RequestDuration)
	return c
}

// StatusClass buckets an HTTP status code into "2xx"/"3xx"/"4xx"/"5xx"/"other".
func StatusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "other"
	}
}
