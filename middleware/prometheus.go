// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/saucelabs/gatekeeper/utils/promutil"
)

var objectives = map[float64]float64{ //nolint:gochecknoglobals // summary objectives
	0.5:  0.01,  // Median (50th percentile) with ±1% error
	0.9:  0.01,  // 90th percentile with ±1% error
	0.99: 0.001, // 99th percentile with ±0.1% error
}

// Prometheus collects metrics about HTTP requests and responses.
// It partitions the metrics by HTTP status code and HTTP method.
// The relay feeds it with Begin and End.
type Prometheus struct {
	requestsInFlight *prometheus.GaugeVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.SummaryVec
}

func NewPrometheus(r prometheus.Registerer, namespace string) *Prometheus {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}

	labels := []string{"method"}
	labelsWithStatus := []string{"code", "method"}

	return &Prometheus{
		requestsInFlight: promutil.Register(r, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being served.",
		}, labels)),
		requestsTotal: promutil.Register(r, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed.",
		}, labelsWithStatus)),
		requestDuration: promutil.Register(r, prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "http_request_duration_seconds",
			Help:       "The HTTP request latencies in seconds.",
			Objectives: objectives,
		}, labelsWithStatus)),
	}
}

// Begin marks a request as in flight and returns its start time.
func (p *Prometheus) Begin(method string) time.Time {
	p.requestsInFlight.WithLabelValues(method).Inc()
	return time.Now()
}

// End records the completion of a request started with Begin.
func (p *Prometheus) End(method string, code int, start time.Time) {
	elapsed := time.Since(start).Seconds()
	status := strconv.Itoa(code)

	p.requestsInFlight.WithLabelValues(method).Dec()
	p.requestsTotal.WithLabelValues(status, method).Inc()
	p.requestDuration.WithLabelValues(status, method).Observe(elapsed)
}
