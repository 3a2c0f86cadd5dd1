// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/saucelabs/gatekeeper/utils/cobrautil/templates"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestDefaultLong(t *testing.T) {
	cmd := &cobra.Command{Short: "Start the proxy"}
	DefaultLong(cmd)
	if cmd.Long != "Start the proxy." {
		t.Fatalf("got %q", cmd.Long)
	}

	cmd = &cobra.Command{Short: "Start the proxy", Long: "More."}
	DefaultLong(cmd)
	if cmd.Long != "Start the proxy.\n\nMore." {
		t.Fatalf("got %q", cmd.Long)
	}
}

func TestWriteConfigFileTemplate(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("port", 8080, "<port>Port to listen on.")
	fs.String("log-level", "info", "Log level.")
	fs.String("secret", "", "Hidden.")
	_ = fs.MarkHidden("secret")

	g := templates.FlagGroups{{Name: "Proxy", Flags: []string{"port"}}}

	var buf bytes.Buffer
	WriteConfigFileTemplate(&buf, g, fs)
	out := buf.String()

	for _, s := range []string{"# --- Proxy ---", "#port: 8080", "# --- Other ---", "#log-level: info"} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in:\n%s", s, out)
		}
	}
	if strings.Contains(out, "secret") {
		t.Errorf("hidden flag in output:\n%s", out)
	}
	if strings.Index(out, "Proxy") > strings.Index(out, "Other") {
		t.Errorf("groups out of order:\n%s", out)
	}
}

func TestSetGroupedHelp(t *testing.T) {
	cmd := &cobra.Command{Use: "run", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().Int("port", 8080, "<port>Port to listen on.")
	SetGroupedHelp(cmd, "GATEKEEPER", templates.FlagGroups{{Name: "Proxy", Flags: []string{"port"}}})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if err := cmd.Usage(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{"Usage:", "Proxy:", "--port", "GATEKEEPER_PORT"} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in:\n%s", s, out)
		}
	}
}
