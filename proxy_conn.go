// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/saucelabs/gatekeeper/log"
)

var errClose = errors.New("closing connection")

// aLongTimeAgo is a deadline in the past, it unblocks pending reads.
var aLongTimeAgo = time.Unix(1, 0) //nolint:gochecknoglobals // constant time value

// connectRequest is the head of a CONNECT request.
type connectRequest struct {
	Target string
	Proto  string
	Header http.Header
}

type proxyConn struct {
	*Proxy
	ctx  context.Context
	log  log.StructuredLogger
	conn net.Conn
	br   *bufio.Reader
}

func newProxyConn(ctx context.Context, p *Proxy, conn net.Conn, l log.StructuredLogger) *proxyConn {
	return &proxyConn{
		Proxy: p,
		ctx:   ctx,
		log:   l,
		conn:  conn,
		br:    bufio.NewReader(conn),
	}
}

// serve handles requests until the client goes away or an exchange
// requires the connection to be closed.
func (p *proxyConn) serve() {
	for {
		if err := p.handle(); err != nil {
			if !errors.Is(err, errClose) {
				p.log.Debug("connection error", "error", err)
			}
			return
		}
	}
}

func (p *proxyConn) handle() error {
	if err := p.awaitRequest(); err != nil {
		if errors.Is(err, io.EOF) || isClosedConnError(err) || isTimeoutError(err) {
			return errClose
		}
		return err
	}

	if p.closing() {
		return errClose
	}

	p.setReadDeadline(p.config.ReadHeaderTimeout)

	if p.peekConnect() {
		req, err := p.readConnectRequest()
		if err != nil {
			p.log.Debug("failed to read CONNECT request", "error", err)
			return p.writeStatus(clientProtocolError{err})
		}
		p.setReadDeadline(0)
		return p.handleConnect(req)
	}

	req, err := http.ReadRequest(p.br)
	if err != nil {
		if errors.Is(err, io.EOF) || isClosedConnError(err) {
			return errClose
		}
		p.log.Debug("failed to read request", "error", err)
		return p.writeStatus(clientProtocolError{err})
	}
	p.setReadDeadline(0)

	return p.handleRequest(req)
}

// awaitRequest waits for the connection to become readable before
// starting the read header timeout.
func (p *proxyConn) awaitRequest() error {
	p.setReadDeadline(p.config.IdleTimeout)
	_, err := p.br.Peek(1)
	return err
}

func (p *proxyConn) setReadDeadline(d time.Duration) {
	var deadline time.Time // or zero if none
	if d > 0 {
		deadline = time.Now().Add(d)
	}
	if err := p.conn.SetReadDeadline(deadline); err != nil {
		p.log.Debug("can't set read deadline", "error", err)
	}
}

// peekConnect reports whether the buffered request starts with the CONNECT method.
func (p *proxyConn) peekConnect() bool {
	const prefix = http.MethodConnect + " "
	b, err := p.br.Peek(len(prefix))
	if err != nil {
		return false
	}
	return string(b) == prefix
}

// readConnectRequest parses the CONNECT request line and headers.
// The target is kept verbatim so that ports that do not parse still
// reach the tunnel relay. Bytes past the head stay buffered.
func (p *proxyConn) readConnectRequest() (*connectRequest, error) {
	tp := textproto.NewReader(p.br)

	line, err := tp.ReadLine()
	if err != nil {
		return nil, err
	}

	method, rest, ok1 := strings.Cut(line, " ")
	target, proto, ok2 := strings.Cut(rest, " ")
	if !ok1 || !ok2 || method != http.MethodConnect {
		return nil, fmt.Errorf("malformed CONNECT request line %q", line)
	}
	if _, _, ok := http.ParseHTTPVersion(proto); !ok {
		return nil, fmt.Errorf("malformed HTTP version %q", proto)
	}

	mh, err := tp.ReadMIMEHeader()
	if err != nil {
		return nil, fmt.Errorf("malformed CONNECT headers: %w", err)
	}

	return &connectRequest{
		Target: target,
		Proto:  proto,
		Header: http.Header(mh),
	}, nil
}

// writeStatus writes a bare status line for err and closes the connection.
func (p *proxyConn) writeStatus(err error) error {
	code, _, label := errorStatus(err)
	p.metrics.error(label)

	var extra string
	if code == http.StatusProxyAuthRequired {
		extra = "Proxy-Authenticate: " + p.challenge + "\r\n"
	}
	if _, werr := fmt.Fprintf(p.conn, "HTTP/1.1 %d %s\r\n%s\r\n", code, http.StatusText(code), extra); werr != nil {
		p.log.Debug("failed to write status", "code", code, "error", werr)
	}

	return errClose
}
