/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package httpserver

import "github.com/prometheus/client_golang/prometheus"

var (
	descOpenConnections = prometheus.NewDesc(
		"evloop_open_connections", "Number of connections currently tracked by the event loop.", nil, nil)
	descSessions = prometheus.NewDesc(
		"evloop_sessions", "Number of sessions currently held by the session manager.", nil, nil)
	descChannelSubscribers = prometheus.NewDesc(
		"evloop_channel_subscribers", "Total number of live channel subscriptions across all channels.", nil, nil)
)

// Collector adapts a Server's Stats snapshot into a prometheus.Collector,
// so an embedding application can register it with its own registry
// (spec §6: the core exposes the snapshot, wiring an exporter is the
// embedder's choice).
type Collector struct {
	Server Server
}

// NewCollector returns a Collector sourcing its values from srv.
func NewCollector(srv Server) *Collector {
	return &Collector{Server: srv}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descOpenConnections
	ch <- descSessions
	ch <- descChannelSubscribers
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.Server.Stats()
	ch <- prometheus.MustNewConstMetric(descOpenConnections, prometheus.GaugeValue, float64(stats.OpenConnections))
	ch <- prometheus.MustNewConstMetric(descSessions, prometheus.GaugeValue, float64(stats.Sessions))
	ch <- prometheus.MustNewConstMetric(descChannelSubscribers, prometheus.GaugeValue, float64(stats.ChannelSubscribers))
}
