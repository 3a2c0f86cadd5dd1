// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http/httpguts"
)

// Realm is sent in the Proxy-Authenticate challenge.
const Realm = "Proxy"

// ProxyConfig is the configuration of a Proxy.
// It is read once by NewProxy, later changes have no effect.
type ProxyConfig struct {
	DialConfig

	// Host is the interface to listen on, empty means all interfaces.
	Host string
	// Port is the TCP port to listen on, 0 picks a free port.
	Port int

	// Username and Password are the only accepted proxy credentials.
	Username string
	Password string

	// AllowedHosts lists the destination hostnames clients may reach.
	// An empty list allows all destinations.
	AllowedHosts []string

	// ReadHeaderTimeout is the amount of time allowed to read a request head.
	ReadHeaderTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the
	// next request on a client connection.
	IdleTimeout time.Duration

	// ResponseHeaderTimeout is the amount of time to wait for the upstream
	// response headers after fully writing the request.
	ResponseHeaderTimeout time.Duration

	// WriteTimeout bounds every write of a response to the client.
	// Zero means no limit.
	WriteTimeout time.Duration

	PromNamespace string
	PromRegistry  prometheus.Registerer
}

func DefaultProxyConfig() *ProxyConfig {
	return &ProxyConfig{
		DialConfig:            *DefaultDialConfig(),
		Port:                  8080,
		ReadHeaderTimeout:     1 * time.Minute,
		IdleTimeout:           5 * time.Minute,
		ResponseHeaderTimeout: 1 * time.Minute,
		WriteTimeout:          1 * time.Minute,
		PromNamespace:         "gatekeeper",
	}
}

func (c *ProxyConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Username == "" {
		return errors.New("username cannot be empty")
	}
	if strings.Contains(c.Username, ":") {
		return errors.New("username cannot contain a colon")
	}
	if c.Password == "" {
		return errors.New("password cannot be empty")
	}
	for i, h := range c.AllowedHosts {
		if _, err := ParseHostname(h); err != nil {
			return fmt.Errorf("allowed host at pos %d: %w", i, err)
		}
	}
	if c.DialTimeout < 0 || c.IdleReadTimeout < 0 {
		return errors.New("dial timeouts cannot be negative")
	}
	if c.WriteTimeout < 0 {
		return errors.New("write timeout cannot be negative")
	}

	return nil
}

// Addr returns the listen address in host:port form.
func (c *ProxyConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ProxyConfig) clone() ProxyConfig {
	cc := *c
	cc.AllowedHosts = slices.Clone(c.AllowedHosts)
	return cc
}

// ParseHostname validates a destination hostname for the allow-list.
// The value must be a bare host, without scheme, path or port.
func ParseHostname(val string) (string, error) {
	h := strings.TrimSpace(val)
	if h == "" {
		return "", errors.New("hostname cannot be empty")
	}
	if strings.Contains(h, "://") || strings.ContainsAny(h, "/?#@ ") {
		return "", fmt.Errorf("invalid hostname %q: expected a bare hostname", val)
	}
	if !httpguts.ValidHostHeader(h) {
		return "", fmt.Errorf("invalid hostname %q", val)
	}
	if _, port, err := net.SplitHostPort(h); err == nil && port != "" {
		return "", fmt.Errorf("invalid hostname %q: port is not allowed", val)
	}

	return h, nil
}

// OpenFileParser returns a parser that calls os.OpenFile.
// If dirPerm is set it will create the directory if it does not exist.
// For empty path the parser returns nil file and nil error.
func OpenFileParser(flag int, perm, dirPerm os.FileMode) func(val string) (*os.File, error) {
	return func(val string) (*os.File, error) {
		if val == "" {
			return nil, nil
		}

		if dirPerm != 0 {
			dir := filepath.Dir(val)
			if err := os.MkdirAll(dir, dirPerm); err != nil {
				return nil, err
			}
		}
		return os.OpenFile(val, flag, perm)
	}
}
