// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package header

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCloneProxyRequestHeaders(t *testing.T) {
	h := http.Header{
		"Proxy-Authorization": {"Basic Zm9vOmJhcg=="},
		"Proxy-Connection":    {"keep-alive"},
		"Connection":          {"keep-alive"},
		"Accept":              {"*/*"},
		"X-Custom":            {"a", "b"},
		"Keep-Alive":          {"timeout=5"},
	}
	h = Clone(h, ProxyRequestHeaders)

	want := http.Header{
		"Accept":     {"*/*"},
		"X-Custom":   {"a", "b"},
		"Keep-Alive": {"timeout=5"},
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Fatalf("unexpected headers (-want +got):\n%s", diff)
	}
}

func TestCloneHopByHopResponseHeaders(t *testing.T) {
	h := make(http.Header)
	for _, name := range HopByHopResponseHeaders {
		h.Set(name, "x")
	}
	h.Set("Content-Type", "application/json")
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")

	h = Clone(h, HopByHopResponseHeaders)

	want := http.Header{
		"Content-Type": {"application/json"},
		"Set-Cookie":   {"a=1", "b=2"},
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Fatalf("unexpected headers (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	src := http.Header{
		"Connection": {"close"},
		"Accept":     {"text/plain"},
	}
	c := Clone(src, ProxyRequestHeaders)

	if diff := cmp.Diff(http.Header{"Accept": {"text/plain"}}, c); diff != "" {
		t.Fatalf("unexpected clone (-want +got):\n%s", diff)
	}
	if src.Get("Connection") != "close" {
		t.Fatal("Clone modified the source header")
	}

	if got := Clone(nil); got == nil || len(got) != 0 {
		t.Fatalf("Clone(nil) = %v", got)
	}
}
