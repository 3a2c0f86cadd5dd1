// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saucelabs/gatekeeper/internal/version"
	"github.com/saucelabs/gatekeeper/utils/httphandler"
)

type server interface {
	Addr() string
}

// APIHandler serves API endpoints.
// It provides health and readiness endpoints, prometheus metrics, the redacted configuration and version.
type APIHandler struct {
	mux    *http.ServeMux
	server server
}

func NewAPIHandler(r prometheus.Gatherer, s server, config string) *APIHandler {
	m := http.NewServeMux()
	a := &APIHandler{
		mux:    m,
		server: s,
	}
	m.Handle("/metrics", promhttp.HandlerFor(r, promhttp.HandlerOpts{}))
	m.Handle("/healthz", httphandler.Status(func() bool { return true }))
	m.Handle("/readyz", httphandler.Status(a.ready))
	m.Handle("/configz", httphandler.SendFileString("text/plain; charset=utf-8", config))
	m.Handle("/version", httphandler.Version(version.Version, version.Time, version.Commit))

	return a
}

func (h *APIHandler) ready() bool {
	return h.server != nil && h.server.Addr() != ""
}

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}
