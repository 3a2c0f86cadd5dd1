// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// oldFileCloseDelay allows in-flight writes to the previous file to complete after Reopen.
const oldFileCloseDelay = 5 * time.Second

// RotatableFile is a log file that is reopened by name on SIGHUP,
// so that external tools like logrotate can move it away.
type RotatableFile struct {
	f      atomic.Pointer[os.File]
	sigCh  chan os.Signal
	doneCh chan struct{}
	once   sync.Once
}

func NewRotatableFile(f *os.File) *RotatableFile {
	w := &RotatableFile{
		sigCh:  make(chan os.Signal, 1),
		doneCh: make(chan struct{}),
	}
	w.f.Store(f)

	signal.Notify(w.sigCh, syscall.SIGHUP)
	go w.reopenOnSignal()

	return w
}

func (w *RotatableFile) Write(p []byte) (n int, err error) {
	return w.f.Load().Write(p)
}

// Reopen opens the file under its original name and swaps it in.
func (w *RotatableFile) Reopen() error {
	nf, err := os.OpenFile(w.f.Load().Name(), DefaultFileFlags, DefaultFileMode)
	if err != nil {
		return err
	}
	old := w.f.Swap(nf)

	time.AfterFunc(oldFileCloseDelay, func() {
		if err := old.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close old log file: %v\n", err)
		}
	})

	return nil
}

func (w *RotatableFile) Close() error {
	w.once.Do(func() {
		signal.Stop(w.sigCh)
		close(w.doneCh)
	})
	return w.f.Load().Close()
}

func (w *RotatableFile) reopenOnSignal() {
	for {
		select {
		case <-w.doneCh:
			return
		case <-w.sigCh:
			if err := w.Reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to rotate log file: %v\n", err)
			}
		}
	}
}
