// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/saucelabs/gatekeeper"
	"github.com/saucelabs/gatekeeper/log"
	"github.com/spf13/pflag"
)

func TestProxyConfigFlags(t *testing.T) {
	cfg := gatekeeper.DefaultProxyConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	ProxyConfig(fs, cfg)

	err := fs.Parse([]string{
		"--port", "3128",
		"-u", "alice",
		"--password", "secret123",
		"--allowed-hosts", "Example.COM,api.example.com",
		"-a", "other.org",
		"--idle-timeout", "30s",
		"--write-timeout", "5s",
	})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3128 || cfg.Username != "alice" || cfg.Password != "secret123" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"Example.COM", "api.example.com", "other.org"}, cfg.AllowedHosts); diff != "" {
		t.Errorf("allowed hosts mismatch (-want +got):\n%s", diff)
	}
	if cfg.IdleTimeout.String() != "30s" {
		t.Errorf("idle timeout: %s", cfg.IdleTimeout)
	}
	if cfg.WriteTimeout.String() != "5s" {
		t.Errorf("write timeout: %s", cfg.WriteTimeout)
	}
	if got := fs.Lookup("password").Value.String(); got != redacted {
		t.Errorf("password not redacted: %q", got)
	}
}

func TestProxyConfigFlagsRejectsBadHost(t *testing.T) {
	tests := []string{
		"http://example.com",
		"example.com:443",
		"user@example.com",
		"example.com/path",
	}

	for _, h := range tests {
		cfg := gatekeeper.DefaultProxyConfig()
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.SetOutput(&strings.Builder{})
		ProxyConfig(fs, cfg)
		if err := fs.Parse([]string{"--allowed-hosts", h}); err == nil {
			t.Errorf("%q: expected error", h)
		}
	}
}

func TestLogConfigFlags(t *testing.T) {
	cfg := log.DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(&strings.Builder{})
	LogConfig(fs, cfg)

	if err := fs.Parse([]string{"--log-level", "debug", "--log-format", "json"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Level != log.DebugLevel || cfg.Format != log.JSONFormat {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got := fs.Lookup("log-file").Value.String(); got != "" {
		t.Errorf("log-file: %q", got)
	}

	if err := fs.Parse([]string{"--log-level", "trace"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestRedactSecret(t *testing.T) {
	if RedactSecret("") != "" {
		t.Error("empty secret should stay empty")
	}
	if RedactSecret("x") != redacted {
		t.Error("secret not redacted")
	}
}
