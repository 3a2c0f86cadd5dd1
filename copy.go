// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"bufio"
	"io"
	"sync"

	"github.com/saucelabs/gatekeeper/log"
)

// drainBuffer writes bytes already buffered in r to w and discards them from r.
func drainBuffer(w io.Writer, r *bufio.Reader) (int, error) {
	n := r.Buffered()
	if n == 0 {
		return 0, nil
	}
	rbuf, err := r.Peek(n)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(rbuf); err != nil {
		return 0, err
	}
	return r.Discard(n)
}

var copyBufPool = sync.Pool{ //nolint:gochecknoglobals // buffer pool
	New: func() any {
		b := make([]byte, 32*1024)
		return &b
	},
}

// bicopy runs all copiers and returns after every one of them finished.
// When the first copier finishes all the connections are closed,
// which unblocks the remaining ones.
func bicopy(l log.StructuredLogger, cc ...copier) {
	donec := make(chan struct{}, len(cc))
	for i := range cc {
		go cc[i].copy(l, donec)
	}

	for i := range cc {
		<-donec
		if i == 0 {
			for j := range cc {
				cc[j].close(l)
			}
		}
	}
}

type copier struct {
	name string
	dst  io.WriteCloser
	src  io.Reader
}

func (c copier) copy(l log.StructuredLogger, donec chan<- struct{}) {
	bufp := copyBufPool.Get().(*[]byte) //nolint:forcetypeassert // It's *[]byte.
	buf := *bufp
	defer copyBufPool.Put(bufp)

	if _, err := io.CopyBuffer(c.dst, c.src, buf); err != nil && !isClosedConnError(err) {
		l.Debug("tunnel copy terminated", "name", c.name, "error", err)
	}

	l.Debug("tunnel finished copying", "name", c.name)
	donec <- struct{}{}
}

func (c copier) close(l log.StructuredLogger) {
	if err := c.dst.Close(); err != nil && !isClosedConnError(err) {
		l.Debug("failed to close tunnel", "name", c.name, "error", err)
	}
}
