// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/saucelabs/gatekeeper/conntrack"
)

const (
	defaultTunnelPort = "443"

	connectEstablished = "HTTP/1.1 200 Connection Established\r\n\r\n"
)

// parseConnectTarget splits a CONNECT target into host and port.
// The port defaults to 443 when it is missing, not a number or out of range.
func parseConnectTarget(target string) (host, port string, ok bool) {
	host, port, err := net.SplitHostPort(target)
	if err != nil {
		host, port = target, ""
		if i := strings.LastIndexByte(target, ':'); i >= 0 && !strings.Contains(target[:i], ":") {
			host, port = target[:i], target[i+1:]
		}
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")

	if n, err := strconv.ParseUint(port, 10, 16); err != nil || n == 0 {
		port = defaultTunnelPort
	}
	if host == "" || strings.ContainsAny(host, " /@") {
		return "", "", false
	}

	return host, port, true
}

func (p *proxyConn) handleConnect(req *connectRequest) error {
	if !p.auth.AuthenticatedRequest(req.Header, p.config.Username, p.config.Password) {
		p.log.Info("CONNECT rejected", "reason", "authentication required")
		return p.writeStatus(ErrProxyAuthentication)
	}

	host, port, ok := parseConnectTarget(req.Target)
	if !ok {
		p.log.Info("CONNECT rejected", "reason", "malformed target", "target", req.Target)
		return p.writeStatus(malformedRequest("malformed CONNECT target %q", req.Target))
	}

	if !p.allow.Allowed(host) {
		p.log.Info("CONNECT rejected", "reason", "host not allowed", "host", host)
		return p.writeStatus(ErrProxyDenied)
	}

	addr := net.JoinHostPort(host, port)
	l := p.log.With("target", addr)

	uc, err := p.dial(p.ctx, "tcp", addr)
	if err != nil {
		l.Info("CONNECT failed", "error", err)
		return p.writeStatus(upstreamError{err})
	}
	upstream := conntrack.Builder{}.Build(uc)
	defer upstream.Close()

	if _, err := io.WriteString(p.conn, connectEstablished); err != nil {
		l.Debug("failed to write CONNECT response", "error", err)
		return errClose
	}
	if _, err := drainBuffer(upstream, p.br); err != nil {
		l.Debug("failed to write buffered data upstream", "error", err)
		return errClose
	}

	p.metrics.tunnelOpened()
	start := time.Now()
	l.Debug("tunnel established")

	bicopy(l,
		copier{"upstream", upstream, p.conn},
		copier{"downstream", p.conn, upstream},
	)

	o := upstream.Observer()
	p.metrics.tunnelClosed(o.Tx(), o.Rx())
	l.Debug("tunnel closed", "duration", time.Since(start), "upstream_bytes", o.Tx(), "downstream_bytes", o.Rx())

	return errClose
}
