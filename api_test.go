// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/saucelabs/gatekeeper/log"
)

type fakeServer string

func (s fakeServer) Addr() string {
	return string(s)
}

func TestAPIHandler(t *testing.T) {
	r := prometheus.NewRegistry()
	newProxyMetrics(r, "test").error("auth")

	s := httptest.NewServer(NewAPIHandler(r, fakeServer("127.0.0.1:8080"), "username=alice\npassword=***\n"))
	defer s.Close()

	e := httpexpect.Default(t, s.URL)

	e.GET("/healthz").Expect().Status(http.StatusOK).Text().IsEqual("OK")
	e.GET("/readyz").Expect().Status(http.StatusOK)
	e.GET("/configz").Expect().Status(http.StatusOK).Text().Contains("password=***")
	e.GET("/metrics").Expect().Status(http.StatusOK).Text().Contains(`test_proxy_errors_total{reason="auth"} 1`)
	e.GET("/version").Expect().Status(http.StatusOK).JSON().Object().ContainsKey("version").ContainsKey("go_version")
}

func TestAPIHandlerNotReady(t *testing.T) {
	s := httptest.NewServer(NewAPIHandler(prometheus.NewRegistry(), fakeServer(""), ""))
	defer s.Close()

	httpexpect.Default(t, s.URL).GET("/readyz").Expect().Status(http.StatusServiceUnavailable)
}

func TestHTTPServerRun(t *testing.T) {
	cfg := DefaultHTTPServerConfig()
	cfg.Addr = "127.0.0.1:0"

	hs, err := NewHTTPServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}), log.NopLogger)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.Run(ctx)
	}()

	c := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	e := httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  "http://" + hs.Addr(),
		Client:   c,
		Reporter: httpexpect.NewAssertReporter(t),
	})
	e.GET("/").Expect().Status(http.StatusOK).Text().IsEqual("hello")

	cancel()
	if err := <-errCh; err != nil {
		t.Fatal(err)
	}
}
