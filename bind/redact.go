// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

const redacted = "xxxxx"

// RedactSecret hides a non-empty secret, an empty value stays empty so that unset flags are visible.
func RedactSecret(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
