// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package slog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	glog "github.com/saucelabs/gatekeeper/log"
)

func TestJSONFormatKeys(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, nil, &glog.Config{Level: glog.InfoLevel, Format: glog.JSONFormat})

	l.Named("proxy").With("conn_id", 7).Info("accepted connection", "remote_addr", "127.0.0.1:1234")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}

	for _, k := range []string{"timestamp", "severity", "message", "name", "conn_id", "remote_addr"} {
		if _, ok := rec[k]; !ok {
			t.Errorf("missing key %q in %v", k, rec)
		}
	}
	if rec["message"] != "accepted connection" {
		t.Errorf("message = %v", rec["message"])
	}
	if rec["name"] != "proxy" {
		t.Errorf("name = %v", rec["name"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, nil, &glog.Config{Level: glog.WarnLevel, Format: glog.TextFormat})

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("unexpected low level records in %q", out)
	}
	if !strings.Contains(out, "warn message") {
		t.Errorf("missing warn record in %q", out)
	}
}

func TestOnError(t *testing.T) {
	var names []string
	var buf bytes.Buffer
	l := newWithWriter(&buf, nil, glog.DefaultConfig(), WithOnError(func(name string) {
		names = append(names, name)
	}))

	l.Named("api").Error("boom")
	l.Info("not an error")

	if len(names) != 1 || names[0] != "api" {
		t.Fatalf("onError calls = %v", names)
	}
}
