// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := Command()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Version:") || !strings.Contains(out, "Go Version:") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestConfigFileTemplate(t *testing.T) {
	out, err := execute(t, "config-file")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"# --- Proxy options ---", "#port: 8080", "#username:", "#log-level: info", "#api-address: localhost:10000"} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in:\n%s", s, out)
		}
	}
}

func TestRunHelpShowsEnv(t *testing.T) {
	out, err := execute(t, "run", "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"Proxy options:", "GATEKEEPER_ALLOWED_HOSTS", "Logging options:"} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in:\n%s", s, out)
		}
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no credentials", []string{"run", "--api-address", "", "--port", "0"}},
		{"colon in username", []string{"run", "--api-address", "", "--port", "0", "-u", "a:b", "--password", "x"}},
		{"bad port", []string{"run", "--api-address", "", "--port", "70000", "-u", "alice", "--password", "x"}},
	}

	for i := range tests {
		tc := &tests[i]
		t.Run(tc.name, func(t *testing.T) {
			if _, err := execute(t, tc.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gatekeeper.yaml")
	if err := os.WriteFile(p, []byte("port: 70000\nusername: alice\npassword: x\napi-address: \"\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "run", "--config-file", p)
	if err == nil || !strings.Contains(err.Error(), "port") {
		t.Fatalf("expected port validation error, got %v", err)
	}
}
