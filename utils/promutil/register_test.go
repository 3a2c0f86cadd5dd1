// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package promutil

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterReturnsExisting(t *testing.T) {
	r := prometheus.NewPedanticRegistry()
	opts := prometheus.CounterOpts{Namespace: "test", Name: "events_total", Help: "Number of events"}

	a := Register(r, prometheus.NewCounter(opts))
	b := Register(r, prometheus.NewCounter(opts))
	if a != b {
		t.Fatal("expected the already registered counter")
	}

	a.Inc()
	b.Inc()
	if got := testutil.ToFloat64(a); got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestRegisterPanicsOnConflict(t *testing.T) {
	r := prometheus.NewPedanticRegistry()
	Register(r, prometheus.NewCounter(prometheus.CounterOpts{Name: "x_total", Help: "a"}))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Register(r, prometheus.NewGauge(prometheus.GaugeOpts{Name: "x_total", Help: "b"}))
}
