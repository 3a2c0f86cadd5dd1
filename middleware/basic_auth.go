// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
)

const (
	AuthorizationHeader      = "Authorization"
	ProxyAuthorizationHeader = "Proxy-Authorization"
	ProxyAuthenticateHeader  = "Proxy-Authenticate"
)

// BasicAuth verifies HTTP Basic Authentication credentials carried in a configurable header.
// For a proxy the header is Proxy-Authorization.
//
// See https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Proxy-Authorization
// See https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Authorization
type BasicAuth struct {
	header string
}

func NewBasicAuth(header string) *BasicAuth {
	return &BasicAuth{header: header}
}

func NewProxyBasicAuth() *BasicAuth {
	return NewBasicAuth(ProxyAuthorizationHeader)
}

// AuthenticatedRequest reads the credentials from the header h
// and reports whether they match the expected username and password.
func (ba *BasicAuth) AuthenticatedRequest(h http.Header, expectedUser, expectedPass string) bool {
	return Verify(h.Get(ba.header), expectedUser, expectedPass)
}

// Verify reports whether the header value carries Basic credentials
// equal to the expected username and password.
// Missing or malformed values yield false.
// Uses constant-time comparison in order to mitigate timing attacks.
func Verify(value, expectedUser, expectedPass string) bool {
	user, pass, ok := ParseBasicAuth(value)
	if !ok {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(expectedUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(expectedPass)) == 1

	return userOK && passOK
}

// ParseBasicAuth parses an HTTP Basic Authentication string.
// "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==" returns ("Aladdin", "open sesame", true).
//
// The scheme is matched case-insensitively and may be followed by any amount of spaces or tabs.
// The decoded credentials are split on the first colon, the password may contain colons.
func ParseBasicAuth(value string) (username, password string, ok bool) {
	const scheme = "Basic"

	if len(value) <= len(scheme) || !strings.EqualFold(value[:len(scheme)], scheme) {
		return "", "", false
	}
	rest := value[len(scheme):]
	if rest[0] != ' ' && rest[0] != '\t' {
		return "", "", false
	}
	encoded := strings.Trim(rest, " \t")
	if encoded == "" {
		return "", "", false
	}

	c, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}

	username, password, ok = strings.Cut(string(c), ":")
	if !ok {
		return "", "", false
	}
	return username, password, true
}

// SetBasicAuth sets the header h to use HTTP Basic Authentication
// with the provided username and password.
//
// The username may not contain a colon.
func (ba *BasicAuth) SetBasicAuth(h http.Header, username, password string) {
	h.Set(ba.header, "Basic "+basicAuth(username, password))
}

// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password, separated by a single colon (":") character,
// within a base64 encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

// Challenge returns the Proxy-Authenticate value for the realm.
func Challenge(realm string) string {
	return "Basic realm=" + strconv.Quote(realm)
}
