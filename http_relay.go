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
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saucelabs/gatekeeper/header"
	"github.com/saucelabs/gatekeeper/middleware"
	"golang.org/x/net/http/httpguts"
)

func (p *proxyConn) handleRequest(req *http.Request) error {
	start := p.prom.Begin(req.Method)
	code := 0
	defer func() {
		p.prom.End(req.Method, code, start)
	}()

	l := p.log.With("method", req.Method, "url", req.URL.String())

	if !p.auth.AuthenticatedRequest(req.Header, p.config.Username, p.config.Password) {
		l.Info("request rejected", "reason", "authentication required")
		code = http.StatusProxyAuthRequired
		return p.writeErrorResponse(req, ErrProxyAuthentication)
	}

	target, err := requestTarget(req)
	if err != nil {
		l.Info("request rejected", "reason", "malformed request", "error", err)
		code = http.StatusBadRequest
		return p.writeErrorResponse(req, err)
	}

	if !p.allow.Allowed(target.Hostname()) {
		l.Info("request rejected", "reason", "host not allowed", "host", target.Hostname())
		code = http.StatusForbidden
		return p.writeErrorResponse(req, ErrProxyDenied)
	}

	ctx, cancel := context.WithCancel(p.ctx)
	defer cancel()

	body := newRequestBody(req, p.conn)
	outReq, err := newOutboundRequest(ctx, req, target, body)
	if err != nil {
		l.Info("request rejected", "reason", "malformed request", "error", err)
		code = http.StatusBadRequest
		return p.writeErrorResponse(req, malformedRequestError{err})
	}

	watching := body.consumed(req)
	if watching {
		defer p.watchClient(cancel)()
	}

	res, err := p.transport.RoundTrip(outReq)
	body.respond()
	if err != nil {
		l.Info("upstream request failed", "error", err)
		code = http.StatusBadGateway
		return p.writeErrorResponse(req, upstreamError{err})
	}
	defer res.Body.Close()

	code = res.StatusCode
	closeAfter := req.Close || !body.consumed(req)

	if !watching && body.consumed(req) {
		defer p.watchClient(cancel)()
	}

	if err := p.writeResponse(newClientResponse(req, res, closeAfter)); err != nil {
		l.Debug("failed to write response", "error", err)
		return errClose
	}
	l.Debug("request relayed", "status", res.StatusCode)

	if closeAfter {
		return errClose
	}
	return nil
}

// requestTarget returns the absolute destination URL of req.
// Origin-form requests are resolved against the Host header.
func requestTarget(req *http.Request) (*url.URL, error) {
	u := *req.URL
	if u.Host == "" {
		if req.Host == "" {
			return nil, malformedRequest("missing destination host")
		}
		u.Host = req.Host
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	u.Scheme = strings.ToLower(u.Scheme)

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, malformedRequest("unsupported scheme %q", u.Scheme)
	}
	if !httpguts.ValidHostHeader(u.Host) || u.Hostname() == "" {
		return nil, malformedRequest("invalid destination host %q", u.Host)
	}
	if port := u.Port(); port != "" {
		if n, err := strconv.ParseUint(port, 10, 16); err != nil || n == 0 {
			return nil, malformedRequest("invalid destination port %q", port)
		}
	}
	u.User = nil

	return &u, nil
}

func newOutboundRequest(ctx context.Context, req *http.Request, target *url.URL, body io.ReadCloser) (*http.Request, error) {
	out, err := http.NewRequestWithContext(ctx, req.Method, target.String(), nil)
	if err != nil {
		return nil, err
	}

	out.Header = header.Clone(req.Header, header.ProxyRequestHeaders)
	if expectsContinue(req) {
		// The proxy answers 100 Continue itself.
		out.Header.Del("Expect")
	}
	if _, ok := req.Header["User-Agent"]; !ok {
		// Prevent the transport from adding its own User-Agent.
		out.Header.Set("User-Agent", "")
	}

	out.ContentLength = req.ContentLength
	out.TransferEncoding = req.TransferEncoding
	if req.ContentLength != 0 || len(req.TransferEncoding) > 0 {
		out.Body = body
	}

	return out, nil
}

func expectsContinue(req *http.Request) bool {
	return req.ProtoAtLeast(1, 1) && httpguts.HeaderValuesContainsToken(req.Header["Expect"], "100-continue")
}

var (
	continueLine = []byte("HTTP/1.1 100 Continue\r\n\r\n")

	errBodyNotExpected = errors.New("request body not read, response already sent")
)

type continueState int

const (
	continueNone continueState = iota
	continuePending
	continueSent
	continueSkipped
)

// requestBody hands the client request body to the transport.
// Close does not close the underlying body, which is bound to the
// client connection and may still be read by the transport.
//
// If the client expects 100 Continue, it is written to the client before
// the first read, unless the response was already sent.
type requestBody struct {
	r   io.Reader
	eof atomic.Bool

	mu    sync.Mutex
	w     io.Writer
	state continueState
}

func newRequestBody(req *http.Request, client io.Writer) *requestBody {
	b := &requestBody{r: req.Body}
	if expectsContinue(req) {
		b.w = client
		b.state = continuePending
	}
	return b
}

func (b *requestBody) Read(p []byte) (int, error) {
	if err := b.sendContinue(); err != nil {
		return 0, err
	}

	n, err := b.r.Read(p)
	if err == io.EOF {
		b.eof.Store(true)
	}
	return n, err
}

func (b *requestBody) sendContinue() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case continuePending:
		b.state = continueSent
		_, err := b.w.Write(continueLine)
		return err
	case continueSkipped:
		return errBodyNotExpected
	default:
		return nil
	}
}

// respond marks that the response to the client is about to be written.
// The client no longer gets 100 Continue after that.
func (b *requestBody) respond() {
	b.mu.Lock()
	if b.state == continuePending {
		b.state = continueSkipped
	}
	b.mu.Unlock()
}

func (b *requestBody) Close() error {
	return nil
}

// consumed reports whether the client connection is positioned
// at the start of the next request.
func (b *requestBody) consumed(req *http.Request) bool {
	if req.ContentLength == 0 && len(req.TransferEncoding) == 0 {
		return true
	}
	return b.eof.Load()
}

func newClientResponse(req *http.Request, res *http.Response, closeAfter bool) *http.Response {
	h := header.Clone(res.Header, header.HopByHopResponseHeaders)

	cres := &http.Response{
		Status:        res.Status,
		StatusCode:    res.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          res.Body,
		ContentLength: res.ContentLength,
		Close:         closeAfter,
		Request:       req,
	}

	if cres.ContentLength < 0 {
		switch {
		case !bodyAllowed(req, res.StatusCode):
			cres.ContentLength = 0
		case req.ProtoAtLeast(1, 1):
			cres.TransferEncoding = []string{"chunked"}
		default:
			// The body is delimited by closing the connection.
			cres.Close = true
		}
	}

	return cres
}

func bodyAllowed(req *http.Request, code int) bool {
	if req.Method == http.MethodHead {
		return false
	}
	switch {
	case code >= 100 && code <= 199:
		return false
	case code == http.StatusNoContent, code == http.StatusNotModified:
		return false
	}
	return true
}

// writeResponse streams res to the client.
// Buffered output is flushed before every read of the upstream body.
func (p *proxyConn) writeResponse(res *http.Response) error {
	var w io.Writer = p.conn
	if d := p.config.WriteTimeout; d > 0 {
		w = deadlineWriter{p.conn, d}
		defer p.conn.SetWriteDeadline(time.Time{})
	}

	bw := bufio.NewWriter(w)
	if res.Body != nil {
		res.Body = &flushReader{ReadCloser: res.Body, w: bw}
	}
	// Hide bufio.Writer.ReadFrom, it reads the body into the buffer
	// that flushReader flushes.
	if err := res.Write(writerOnly{bw}); err != nil {
		return err
	}
	return bw.Flush()
}

type writerOnly struct {
	io.Writer
}

type flushReader struct {
	io.ReadCloser
	w *bufio.Writer
}

func (r *flushReader) Read(p []byte) (int, error) {
	if r.w.Buffered() > 0 {
		if err := r.w.Flush(); err != nil {
			return 0, err
		}
	}
	return r.ReadCloser.Read(p)
}

// deadlineWriter sets the write deadline of the connection before every write.
type deadlineWriter struct {
	conn    net.Conn
	timeout time.Duration
}

func (w deadlineWriter) Write(p []byte) (int, error) {
	if err := w.conn.SetWriteDeadline(time.Now().Add(w.timeout)); err != nil {
		return 0, err
	}
	return w.conn.Write(p)
}

// watchClient cancels the request when the client closes the connection
// or the connection fails while the response is pending or streaming.
// The returned function stops watching, it must be called before the
// connection is read again.
func (p *proxyConn) watchClient(cancel context.CancelFunc) (stop func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Pipelined requests stay buffered.
		if _, err := p.br.Peek(1); err != nil && !isTimeoutError(err) {
			p.log.Debug("client connection closed, canceling request", "error", err)
			cancel()
		}
	}()

	return func() {
		if err := p.conn.SetReadDeadline(aLongTimeAgo); err != nil {
			p.log.Debug("can't set read deadline", "error", err)
		}
		<-done
		p.setReadDeadline(0)
	}
}

func (p *proxyConn) writeErrorResponse(req *http.Request, err error) error {
	code, msg, label := errorStatus(err)
	p.metrics.error(label)

	body := msg + "\n"
	res := &http.Response{
		StatusCode:    code,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Close:         true,
		Request:       req,
	}
	res.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if code == http.StatusProxyAuthRequired {
		res.Header.Set(middleware.ProxyAuthenticateHeader, p.challenge)
	}

	if werr := p.writeResponse(res); werr != nil {
		p.log.Debug("failed to write error response", "code", code, "error", werr)
	}

	return errClose
}
