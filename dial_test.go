// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestDialerIdleReadTimeout(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		// Write once, then stay silent until the client goes away.
		c.Write([]byte("x"))
		c.Read(make([]byte, 1))
	}()

	cfg := DefaultDialConfig()
	cfg.IdleReadTimeout = 100 * time.Millisecond
	c, err := NewDialer(cfg).DialContext(context.Background(), "tcp", l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	buf := make([]byte, 1)
	if _, err := c.Read(buf); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	_, err = c.Read(buf)
	if !isTimeoutError(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Fatalf("timeout took too long: %s", d)
	}

	c.Close()
	<-done
}

func TestDialerTimeout(t *testing.T) {
	cfg := DefaultDialConfig()
	cfg.IdleReadTimeout = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewDialer(cfg).DialContext(ctx, "tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error")
	}
}
