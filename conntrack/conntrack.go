// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package conntrack wraps network connections to observe their traffic and lifetime.
package conntrack

import (
	"net"
	"sync"
	"sync/atomic"
)

// Observer allows to observe the number of bytes read and written from a connection.
type Observer struct {
	rx atomic.Uint64
	tx atomic.Uint64
}

// Rx returns the number of bytes read from the connection.
func (o *Observer) Rx() uint64 {
	return o.rx.Load()
}

// Tx returns the number of bytes written to the connection.
func (o *Observer) Tx() uint64 {
	return o.tx.Load()
}

// Conn is a net.Conn that tracks the number of bytes read and written
// and calls OnClose after the first Close.
type Conn struct {
	net.Conn
	o Observer

	onClose func()
	once    sync.Once
}

// Builder configures connections returned by Build.
type Builder struct {
	// OnClose is called after the underlying connection is closed and before the Close method returns.
	// OnClose is called at most once.
	OnClose func()
}

func (b Builder) Build(c net.Conn) *Conn {
	return &Conn{
		Conn:    c,
		onClose: b.OnClose,
	}
}

func (c *Conn) Read(p []byte) (n int, err error) {
	n, err = c.Conn.Read(p)
	c.o.rx.Add(uint64(n)) //nolint:gosec // n is never negative.
	return
}

func (c *Conn) Write(p []byte) (n int, err error) {
	n, err = c.Conn.Write(p)
	c.o.tx.Add(uint64(n)) //nolint:gosec // n is never negative.
	return
}

func (c *Conn) Close() error {
	err := c.Conn.Close()
	if c.onClose != nil {
		c.once.Do(c.onClose)
	}
	return err
}

// Observer returns the traffic observer of the connection.
func (c *Conn) Observer() *Observer {
	return &c.o
}
