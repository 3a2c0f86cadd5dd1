// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package header defines which HTTP headers are meaningful for a single proxy hop only.
package header

import (
	"net/http"
)

// ProxyRequestHeaders are removed from client requests before they are sent upstream.
var ProxyRequestHeaders = []string{ //nolint:gochecknoglobals // header list
	"Proxy-Authorization",
	"Proxy-Connection",
	"Connection",
}

// HopByHopResponseHeaders are removed from upstream responses before they are sent to the client.
var HopByHopResponseHeaders = []string{ //nolint:gochecknoglobals // header list
	"Transfer-Encoding",
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Upgrade",
}

func remove(h http.Header, names []string) {
	for _, name := range names {
		h.Del(name)
	}
}

// Clone returns a copy of h with the headers in names removed.
func Clone(h http.Header, names ...[]string) http.Header {
	c := h.Clone()
	if c == nil {
		c = make(http.Header)
	}
	for _, n := range names {
		remove(c, n)
	}
	return c
}
