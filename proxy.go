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
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/saucelabs/gatekeeper/conntrack"
	"github.com/saucelabs/gatekeeper/log"
	"github.com/saucelabs/gatekeeper/middleware"
	"github.com/saucelabs/gatekeeper/ruleset"
	"go.uber.org/multierr"
)

// Proxy is an authenticated HTTP and CONNECT forward proxy.
type Proxy struct {
	config    ProxyConfig
	log       log.StructuredLogger
	auth      *middleware.BasicAuth
	challenge string
	allow     *ruleset.AllowList
	dial      DialContextFunc
	transport http.RoundTripper
	metrics   *proxyMetrics
	prom      *middleware.Prometheus

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc

	mu     sync.Mutex
	conns  map[*conntrack.Conn]struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
	connID atomic.Uint64

	closeOnce sync.Once
	closeErr  error
}

// NewProxy validates cfg and binds the listener.
// Connections are served after Run is called.
func NewProxy(cfg *ProxyConfig, l log.StructuredLogger) (*Proxy, error) {
	return newProxy(cfg, l, NewDialer(&cfg.DialConfig).DialContext)
}

func newProxy(cfg *ProxyConfig, l log.StructuredLogger, dial DialContextFunc) (*Proxy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	if l == nil {
		l = log.NopLogger
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Proxy{
		config:    cfg.clone(),
		log:       l,
		auth:      middleware.NewProxyBasicAuth(),
		challenge: middleware.Challenge(Realm),
		allow:     ruleset.NewAllowList(cfg.AllowedHosts),
		dial:      dial,
		transport: newHTTPTransport(dial, cfg.ResponseHeaderTimeout),
		metrics:   newProxyMetrics(cfg.PromRegistry, cfg.PromNamespace),
		prom:      middleware.NewPrometheus(cfg.PromRegistry, cfg.PromNamespace),
		ctx:       ctx,
		cancel:    cancel,
		conns:     make(map[*conntrack.Conn]struct{}),
	}

	ll, err := Listen("tcp", p.config.Addr())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("listen: %w", err)
	}
	p.listener = ll

	if p.allow.Empty() {
		l.Info("proxy listening", "address", ll.Addr().String(), "allowed_hosts", "all")
	} else {
		l.Info("proxy listening", "address", ll.Addr().String(), "allowed_hosts", p.allow.Len())
	}

	return p, nil
}

// Addr returns the address the proxy listens on.
func (p *Proxy) Addr() string {
	return p.listener.Addr().String()
}

// Run accepts and serves connections until ctx is canceled or Close is called.
// It returns after all connections are closed.
func (p *Proxy) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Close()
		case <-done:
		}
	}()

	err := p.acceptLoop()
	p.Close()
	p.wg.Wait()

	return err
}

func (p *Proxy) acceptLoop() error {
	var b acceptBackoff
	for {
		c, err := p.listener.Accept()
		if err != nil {
			if p.closed.Load() {
				return nil
			}
			if b.retryable(err) {
				p.log.Warn("accept failed, retrying", "error", err)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		b.reset()

		if !p.track(c) {
			c.Close()
			return nil
		}
	}
}

// track registers c and starts serving it.
// It returns false if the proxy is closing.
func (p *Proxy) track(c net.Conn) bool {
	var tc *conntrack.Conn
	tc = conntrack.Builder{
		OnClose: func() {
			p.mu.Lock()
			delete(p.conns, tc)
			p.mu.Unlock()
			p.metrics.connections.Dec()
		},
	}.Build(c)

	p.mu.Lock()
	if p.closed.Load() {
		p.mu.Unlock()
		return false
	}
	p.conns[tc] = struct{}{}
	p.wg.Add(1)
	p.mu.Unlock()
	p.metrics.connections.Inc()

	go p.serveConn(tc)

	return true
}

func (p *Proxy) serveConn(c *conntrack.Conn) {
	defer p.wg.Done()
	defer c.Close()

	l := p.log.With("conn_id", p.connID.Add(1), "remote_addr", c.RemoteAddr().String())

	defer func() {
		if r := recover(); r != nil {
			l.Error("panic serving connection", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	newProxyConn(p.ctx, p, c, l).serve()
}

func (p *Proxy) closing() bool {
	return p.closed.Load()
}

// Close stops accepting connections and closes all active connections.
func (p *Proxy) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed.Store(true)
		conns := make([]*conntrack.Conn, 0, len(p.conns))
		for c := range p.conns {
			conns = append(conns, c)
		}
		p.mu.Unlock()

		p.cancel()

		err := p.listener.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
		for _, c := range conns {
			if cerr := c.Close(); cerr != nil && !isClosedConnError(cerr) {
				err = multierr.Append(err, cerr)
			}
		}
		p.closeErr = err
	})

	return p.closeErr
}
