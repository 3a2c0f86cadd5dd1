// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ruleset

import "testing"

func TestAllowListEmptyAllowsAll(t *testing.T) {
	hosts := []string{"", "example.com", "evil.com:443", "[::1]:8080", "10.0.0.1", "anything at all"}

	for _, l := range []*AllowList{nil, NewAllowList(nil), NewAllowList([]string{}), NewAllowList([]string{"", "  "})} {
		if !l.Empty() {
			t.Fatalf("list %v is not empty", l)
		}
		for _, h := range hosts {
			if !l.Allowed(h) {
				t.Errorf("empty list denied %q", h)
			}
		}
	}
}

func TestAllowListAllowed(t *testing.T) {
	l := NewAllowList([]string{"api.example.com", "10.0.0.1", "::1", "Mixed.Example.ORG"})

	tests := []struct {
		host string
		want bool
	}{
		{"api.example.com", true},
		{"api.example.com:443", true},
		{"api.example.com:8080", true},
		{"API.EXAMPLE.COM", true},
		{"api.example.com.", true},
		{"mixed.example.org", true},
		{"10.0.0.1:80", true},
		{"[::1]:443", true},
		{"[::1]", true},
		{"::1", true},
		{"example.com", false},
		{"sub.api.example.com", false},
		{"api.example.com.evil.com", false},
		{"evil.com", false},
		{"10.0.0.2", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := l.Allowed(tc.host); got != tc.want {
			t.Errorf("Allowed(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}

func TestStripPort(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "example.com"},
		{"example.com:443", "example.com"},
		{"example.com:", "example.com"},
		{"[::1]:443", "::1"},
		{"[::1]", "::1"},
		{"::1", "::1"},
		{"10.0.0.1:80", "10.0.0.1"},
	}

	for _, tc := range tests {
		if got := StripPort(tc.in); got != tc.want {
			t.Errorf("StripPort(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAllowListLen(t *testing.T) {
	l := NewAllowList([]string{"a.com", "A.com", "b.com", ""})
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
}
