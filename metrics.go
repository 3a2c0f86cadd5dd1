// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/saucelabs/gatekeeper/utils/promutil"
)

type proxyMetrics struct {
	errors        *prometheus.CounterVec
	connections   prometheus.Gauge
	tunnelsActive prometheus.Gauge
	tunnelsTotal  prometheus.Counter
	tunnelBytes   *prometheus.CounterVec
}

func newProxyMetrics(r prometheus.Registerer, namespace string) *proxyMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}

	return &proxyMetrics{
		errors: promutil.Register(r, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "proxy_errors_total",
			Namespace: namespace,
			Help:      "Number of proxy errors",
		}, []string{"reason"})),
		connections: promutil.Register(r, prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "connections_active",
			Namespace: namespace,
			Help:      "Number of open client connections",
		})),
		tunnelsActive: promutil.Register(r, prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "tunnels_active",
			Namespace: namespace,
			Help:      "Number of established CONNECT tunnels",
		})),
		tunnelsTotal: promutil.Register(r, prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "tunnels_total",
			Namespace: namespace,
			Help:      "Number of CONNECT tunnels established",
		})),
		tunnelBytes: promutil.Register(r, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "tunnel_bytes_total",
			Namespace: namespace,
			Help:      "Number of bytes relayed through CONNECT tunnels",
		}, []string{"direction"})),
	}
}

func (m *proxyMetrics) error(reason string) {
	m.errors.WithLabelValues(reason).Inc()
}

func (m *proxyMetrics) tunnelOpened() {
	m.tunnelsTotal.Inc()
	m.tunnelsActive.Inc()
}

func (m *proxyMetrics) tunnelClosed(upstream, downstream uint64) {
	m.tunnelsActive.Dec()
	m.tunnelBytes.WithLabelValues("upstream").Add(float64(upstream))
	m.tunnelBytes.WithLabelValues("downstream").Add(float64(downstream))
}
