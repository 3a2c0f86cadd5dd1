// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gatekeeper provides an authenticated forward proxy.
// Clients authenticate with HTTP Basic credentials in the Proxy-Authorization header.
// Plain HTTP requests are relayed to the destination, CONNECT requests open a raw TCP tunnel.
// Destinations can be restricted with an allow-list of hostnames.
package gatekeeper
