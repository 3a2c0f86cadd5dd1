// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package slog

import (
	"context"
	"io"
	"log/slog"
	"os"

	glog "github.com/saucelabs/gatekeeper/log"
)

func Default() *Logger {
	return New(glog.DefaultConfig())
}

func Debug() *Logger {
	return New(&glog.Config{Level: glog.DebugLevel})
}

var _ glog.StructuredLogger = &Logger{}

type Option func(*Logger)

type Logger struct {
	log     *slog.Logger
	file    *glog.RotatableFile
	name    string
	onError func(name string)
}

// New creates a logger writing to cfg.File or stdout if the file is nil.
func New(cfg *glog.Config, opts ...Option) *Logger {
	var w io.Writer = os.Stdout

	var f *glog.RotatableFile
	if cfg.File != nil {
		f = glog.NewRotatableFile(cfg.File)
		w = f
	}

	return newWithWriter(w, f, cfg, opts...)
}

func newWithWriter(w io.Writer, f *glog.RotatableFile, cfg *glog.Config, opts ...Option) *Logger {
	hops := &slog.HandlerOptions{Level: slogLevel(cfg.Level), ReplaceAttr: replaceAttr}

	var h slog.Handler
	if cfg.Format == glog.JSONFormat {
		h = slog.NewJSONHandler(w, hops)
	} else {
		h = slog.NewTextHandler(w, hops)
	}

	l := &Logger{
		log:  slog.New(h),
		file: f,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Logger) Handler() slog.Handler {
	return l.log.Handler()
}

func (l *Logger) Error(msg string, args ...any) {
	if l.onError != nil {
		l.onError(l.name)
	}
	l.log.Error(msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	if l.onError != nil {
		l.onError(l.name)
	}
	l.log.ErrorContext(ctx, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log.WarnContext(ctx, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log.InfoContext(ctx, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log.DebugContext(ctx, msg, args...)
}

func (l *Logger) With(args ...any) glog.StructuredLogger {
	c := *l
	c.log = c.log.With(args...)
	return &c
}

// Named returns a copy of the logger that adds the name attribute to every record.
func (l *Logger) Named(name string) *Logger {
	c := *l
	c.name = name
	c.log = c.log.With("name", name)
	return &c
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func slogLevel(level glog.Level) slog.Level {
	switch level {
	case glog.ErrorLevel:
		return slog.LevelError
	case glog.WarnLevel:
		return slog.LevelWarn
	case glog.DebugLevel:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}
