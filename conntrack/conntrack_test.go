// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package conntrack

import (
	"io"
	"net"
	"testing"
)

func TestConnTracksTraffic(t *testing.T) {
	c0, c1 := net.Pipe()
	defer c1.Close()

	closed := 0
	c := Builder{OnClose: func() { closed++ }}.Build(c0)

	go func() {
		buf := make([]byte, 5)
		io.ReadFull(c1, buf)
		c1.Write([]byte("hello world"))
	}()

	if _, err := c.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 11)
	if _, err := io.ReadFull(c, buf); err != nil {
		t.Fatal(err)
	}

	if got := c.Observer().Tx(); got != 5 {
		t.Errorf("Tx() = %d, want 5", got)
	}
	if got := c.Observer().Rx(); got != 11 {
		t.Errorf("Rx() = %d, want 11", got)
	}

	c.Close()
	c.Close()
	if closed != 1 {
		t.Fatalf("OnClose called %d times, want 1", closed)
	}
}
