// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/saucelabs/gatekeeper/log"
)

type HTTPServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func DefaultHTTPServerConfig() *HTTPServerConfig {
	return &HTTPServerConfig{
		Addr:              "localhost:10000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// HTTPServer serves a handler on a plain HTTP listener.
type HTTPServer struct {
	config   HTTPServerConfig
	log      log.StructuredLogger
	srv      *http.Server
	listener net.Listener
}

func NewHTTPServer(cfg *HTTPServerConfig, h http.Handler, l log.StructuredLogger) (*HTTPServer, error) {
	ll, err := Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open listener on address %s: %w", cfg.Addr, err)
	}

	return &HTTPServer{
		config: *cfg,
		log:    l,
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		listener: ll,
	}, nil
}

// Addr returns the address the server listens on.
func (hs *HTTPServer) Addr() string {
	return hs.listener.Addr().String()
}

func (hs *HTTPServer) Run(ctx context.Context) error {
	hs.log.Info("HTTP server listening", "address", hs.Addr())

	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan struct{})

	// handle http shutdown on server context done
	go func() {
		defer wg.Done()

		select {
		case <-ctx.Done():
		case <-done:
			return
		}

		sctx, cancel := context.WithTimeout(context.Background(), hs.config.ShutdownTimeout)
		defer cancel()
		if err := hs.srv.Shutdown(sctx); err != nil {
			hs.log.Error("failed to shutdown server", "error", err)
		}
	}()

	err := hs.srv.Serve(hs.listener)
	if errors.Is(err, http.ErrServerClosed) {
		hs.log.Debug("server was shutdown gracefully")
		err = nil
	}
	close(done)
	wg.Wait()

	return err
}
