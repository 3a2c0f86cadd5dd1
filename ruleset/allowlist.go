// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ruleset implements destination rules for the proxy.
package ruleset

import (
	"net"
	"strings"
)

// AllowList is a set of destination hostnames the proxy may connect to.
// Matching is exact and case-insensitive, there is no wildcard or suffix matching.
// An empty or nil AllowList allows every host.
type AllowList struct {
	hosts map[string]struct{}
}

// NewAllowList returns an AllowList for the given hostnames.
// Blank entries are ignored.
func NewAllowList(hosts []string) *AllowList {
	l := &AllowList{
		hosts: make(map[string]struct{}, len(hosts)),
	}
	for _, h := range hosts {
		if h = normalizeHost(h); h != "" {
			l.hosts[h] = struct{}{}
		}
	}

	return l
}

// Empty reports whether the list allows every host.
func (l *AllowList) Empty() bool {
	return l == nil || len(l.hosts) == 0
}

// Len returns the number of distinct hostnames in the list.
func (l *AllowList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.hosts)
}

// Allowed reports whether host, optionally followed by :port, is on the list.
func (l *AllowList) Allowed(host string) bool {
	if l.Empty() {
		return true
	}

	_, ok := l.hosts[normalizeHost(StripPort(host))]
	return ok
}

// StripPort removes a trailing :port from host.
// Bracketed IPv6 literals are unwrapped, bare IPv6 literals are returned as is.
func StripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host[1 : len(host)-1]
	}
	// "example.com:" has an empty port.
	if i := strings.LastIndexByte(host, ':'); i >= 0 && i == len(host)-1 && strings.Count(host, ":") == 1 {
		return host[:i]
	}

	return host
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimSuffix(host, ".")
	return strings.ToLower(host)
}
