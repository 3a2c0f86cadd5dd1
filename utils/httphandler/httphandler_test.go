// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package httphandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		ok   bool
		code int
		body string
	}{
		{true, http.StatusOK, "OK"},
		{false, http.StatusServiceUnavailable, "Service Unavailable"},
	}

	for i := range tests {
		tc := &tests[i]
		rec := httptest.NewRecorder()
		Status(func() bool { return tc.ok }).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		if rec.Code != tc.code {
			t.Errorf("ok=%v: expected code %d, got %d", tc.ok, tc.code, rec.Code)
		}
		if rec.Body.String() != tc.body {
			t.Errorf("ok=%v: expected body %q, got %q", tc.ok, tc.body, rec.Body.String())
		}
	}
}

func TestVersion(t *testing.T) {
	rec := httptest.NewRecorder()
	Version("1.2.3", "now", "abc").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	var v map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v["version"] != "1.2.3" || v["commit"] != "abc" || v["go_os"] != runtime.GOOS {
		t.Fatalf("unexpected version payload: %v", v)
	}
}
