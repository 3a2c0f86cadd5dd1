// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package run

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/saucelabs/gatekeeper"
	"github.com/saucelabs/gatekeeper/bind"
	"github.com/saucelabs/gatekeeper/log"
	"github.com/saucelabs/gatekeeper/log/slog"
	"github.com/saucelabs/gatekeeper/runctx"
	"github.com/saucelabs/gatekeeper/utils/cobrautil"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

type command struct {
	promReg         *prometheus.Registry
	proxyConfig     *gatekeeper.ProxyConfig
	apiServerConfig *gatekeeper.HTTPServerConfig
	logConfig       *log.Config
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	logger := slog.New(c.logConfig)
	defer logger.Close()

	defer func() {
		if cmdErr != nil {
			logger.Error("fatal error exiting", "error", cmdErr)
			cmd.SilenceErrors = true
		}
	}()

	cfgStr, err := cobrautil.DescribeFlags(cmd.Flags(), cobrautil.Plain)
	if err != nil {
		return err
	}
	logger.Info("configuration\n" + cfgStr)

	g := runctx.NewGroup()

	p, err := gatekeeper.NewProxy(c.proxyConfig, logger.Named("proxy"))
	if err != nil {
		return err
	}
	defer p.Close()
	g.Add(p.Run)

	if c.apiServerConfig.Addr != "" {
		if err := c.registerProcMetrics(); err != nil {
			return fmt.Errorf("register process metrics: %w", err)
		}

		h := gatekeeper.NewAPIHandler(c.promReg, p, cfgStr)
		a, err := gatekeeper.NewHTTPServer(c.apiServerConfig, h, logger.Named("api"))
		if err != nil {
			return err
		}
		g.Add(a.Run)
	}

	return g.Run()
}

func (c *command) registerProcMetrics() error {
	return multierr.Combine(
		// Note that ProcessCollector is only available in Linux and Windows.
		c.promReg.Register(collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{Namespace: c.proxyConfig.PromNamespace})),
		c.promReg.Register(collectors.NewGoCollector()),
	)
}

func Command() *cobra.Command {
	c := command{
		promReg:         prometheus.NewRegistry(),
		proxyConfig:     gatekeeper.DefaultProxyConfig(),
		apiServerConfig: gatekeeper.DefaultHTTPServerConfig(),
		logConfig:       log.DefaultConfig(),
	}
	c.proxyConfig.PromRegistry = c.promReg

	cmd := &cobra.Command{
		Use:     "run --username <username> --password <password> [--port <port>] [--allowed-hosts <hostname>]...",
		Short:   "Start the authenticated forward proxy",
		Long:    long,
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.ProxyConfig(fs, c.proxyConfig)
	bind.APIServerConfig(fs, c.apiServerConfig)
	bind.PromNamespace(fs, &c.proxyConfig.PromNamespace)
	bind.LogConfig(fs, c.logConfig)
	bind.AutoMarkFlagFilename(cmd)

	return cmd
}

const long = `The proxy requires every client to authenticate with HTTP Basic credentials in the Proxy-Authorization header.
Plain HTTP requests are relayed to the destination with proxy headers removed.
HTTPS and other TCP traffic is tunneled with the CONNECT method.
If allowed hosts are specified, only these destinations can be reached, all other requests are rejected with 403 Forbidden.

The API server, enabled by default on localhost:10000, exposes the following endpoints:
- /metrics - Prometheus metrics
- /healthz - liveness probe
- /readyz - readiness probe
- /configz - current configuration with secrets redacted
- /version - version information
`

const example = `  # Start the proxy on port 3128 allowing all destinations
  gatekeeper run --port 3128 --username alice --password secret123

  # Restrict destinations
  gatekeeper run -u alice --password secret123 -a api.example.com -a example.com

  # Use environment variables
  GATEKEEPER_USERNAME=alice GATEKEEPER_PASSWORD=secret123 gatekeeper run

  # Disable the API server and log JSON to a file
  gatekeeper run -u alice --password secret123 --api-address "" --log-format json --log-file /var/log/gatekeeper.log
`
