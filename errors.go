// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

type denyError struct {
	error
}

// malformedRequestError is returned when the request head does not
// yield a usable destination.
type malformedRequestError struct {
	error
}

// clientProtocolError is returned when the request head cannot be parsed.
type clientProtocolError struct {
	error
}

// upstreamError wraps failures to reach or talk to the destination.
type upstreamError struct {
	error
}

func (e upstreamError) Unwrap() error {
	return e.error
}

var (
	ErrProxyAuthentication = errors.New("proxy authentication required")
	ErrProxyDenied         = denyError{errors.New("proxying denied")}
)

func malformedRequest(format string, args ...any) error {
	return malformedRequestError{fmt.Errorf(format, args...)}
}

type errorHandler func(error) (code int, msg, label string)

// errorStatus maps err to the status code, short message and metric label
// reported to the client. The message never carries internal error detail.
func errorStatus(err error) (code int, msg, label string) {
	handlers := []errorHandler{
		handleAuthError,
		handleDenyError,
		handleMalformedRequest,
		handleClientProtocolError,
		handleNetError,
		handleUpstreamError,
	}

	for _, h := range handlers {
		code, msg, label = h(err)
		if code != 0 {
			return
		}
	}

	return http.StatusInternalServerError, "An unexpected error occurred", "unexpected_error"
}

func handleAuthError(err error) (code int, msg, label string) {
	if errors.Is(err, ErrProxyAuthentication) {
		code = http.StatusProxyAuthRequired
		msg = "Proxy authentication required"
		label = "auth"
	}

	return
}

func handleDenyError(err error) (code int, msg, label string) {
	var denyErr denyError
	if errors.As(err, &denyErr) {
		code = http.StatusForbidden
		msg = "Proxying is denied to this host"
		label = "denied"
	}

	return
}

func handleMalformedRequest(err error) (code int, msg, label string) {
	var mErr malformedRequestError
	if errors.As(err, &mErr) {
		code = http.StatusBadRequest
		msg = "Malformed request"
		label = "malformed_request"
	}

	return
}

func handleClientProtocolError(err error) (code int, msg, label string) {
	var pErr clientProtocolError
	if errors.As(err, &pErr) {
		code = http.StatusBadRequest
		msg = "Malformed request"
		label = "client_protocol"
	}

	return
}

func handleNetError(err error) (code int, msg, label string) {
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		code = http.StatusBadGateway
		if netErr.Timeout() {
			msg = "Timed out connecting to remote host"
		} else {
			msg = "Failed to connect to remote host"
		}
		label = "net_" + netErr.Op
	}

	return
}

func handleUpstreamError(err error) (code int, msg, label string) {
	var uErr upstreamError
	if errors.As(err, &uErr) {
		code = http.StatusBadGateway
		msg = "Bad gateway"
		label = "upstream"
	}

	return
}
