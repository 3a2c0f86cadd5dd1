// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"strings"

	"github.com/mmatczuk/anyflag"
	"github.com/saucelabs/gatekeeper"
	"github.com/saucelabs/gatekeeper/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func ConfigFile(fs *pflag.FlagSet, configFile *string) {
	fs.StringVarP(configFile,
		"config-file", "c", *configFile, "<path>"+
			"Configuration file to load options from. "+
			"The supported formats are: JSON, YAML, TOML, HCL, and Java properties. "+
			"The file format is determined by the file extension, if not specified the default format is YAML. "+
			"The following precedence order of configuration sources is used: command flags, environment variables, config file, default values. ")
}

func ProxyConfig(fs *pflag.FlagSet, cfg *gatekeeper.ProxyConfig) {
	fs.StringVar(&cfg.Host,
		"host", cfg.Host, "<host>"+
			"The interface to listen on. "+
			"If empty, the proxy listens on all available interfaces. ")

	fs.IntVarP(&cfg.Port,
		"port", "p", cfg.Port, "<port>"+
			"The TCP port to listen on. "+
			"Setting this to 0 picks a free port. ")

	fs.StringVarP(&cfg.Username,
		"username", "u", cfg.Username, "<username>"+
			"The username clients must present in the Proxy-Authorization header. "+
			"It must not contain a colon. ")

	fs.Var(anyflag.NewValueWithRedact[string](cfg.Password, &cfg.Password, parsePassword, RedactSecret),
		"password", "<password>"+
			"The password clients must present in the Proxy-Authorization header. ")

	fs.VarP(anyflag.NewSliceValue[string](cfg.AllowedHosts, &cfg.AllowedHosts, gatekeeper.ParseHostname),
		"allowed-hosts", "a", "<hostname>"+
			"Destination hostname clients are allowed to reach. "+
			"Matching is exact and case-insensitive, subdomains are not included. "+
			"The flag can be specified multiple times or as a comma separated list. "+
			"If not specified, all destinations are allowed. ")

	fs.DurationVar(&cfg.ReadHeaderTimeout,
		"read-header-timeout", cfg.ReadHeaderTimeout,
		"The amount of time allowed to read a request head. "+
			"Zero means no limit. ")

	fs.DurationVar(&cfg.IdleTimeout,
		"idle-timeout", cfg.IdleTimeout,
		"The maximum amount of time to wait for the next request on a client connection. "+
			"Zero means no limit. ")

	fs.DurationVar(&cfg.ResponseHeaderTimeout,
		"response-header-timeout", cfg.ResponseHeaderTimeout,
		"The amount of time to wait for the upstream response headers after fully writing the request. "+
			"This time does not include the time to read the response body. "+
			"Zero means no limit. ")

	fs.DurationVar(&cfg.WriteTimeout,
		"write-timeout", cfg.WriteTimeout,
		"The maximum amount of time a single write of a response to the client may take. "+
			"A client that stops reading is disconnected after this time. "+
			"Zero means no limit. ")

	DialConfig(fs, &cfg.DialConfig)
}

func parsePassword(val string) (string, error) {
	return val, nil
}

func DialConfig(fs *pflag.FlagSet, cfg *gatekeeper.DialConfig) {
	fs.DurationVar(&cfg.DialTimeout,
		"dial-timeout", cfg.DialTimeout,
		"The maximum amount of time a dial to the destination will wait for a connect to complete. "+
			"With or without a timeout, the operating system may impose its own earlier timeout. ")

	fs.DurationVar(&cfg.IdleReadTimeout,
		"upstream-idle-timeout", cfg.IdleReadTimeout,
		"The maximum amount of time an upstream connection may stay without receiving data. "+
			"Zero means no limit. ")

	fs.BoolVar(&cfg.KeepAlive,
		"keep-alive", cfg.KeepAlive,
		"Enable TCP keep-alive probes on upstream connections. ")
}

func APIServerConfig(fs *pflag.FlagSet, cfg *gatekeeper.HTTPServerConfig) {
	fs.StringVar(&cfg.Addr,
		"api-address", cfg.Addr, "<host:port>"+
			"The API server address to listen on. "+
			"The API server exposes metrics, health checks, configuration and version. "+
			"Setting this to empty string disables the API server. ")
}

func PromNamespace(fs *pflag.FlagSet, promNamespace *string) {
	fs.StringVar(promNamespace,
		"prom-namespace", *promNamespace, "<namespace>"+
			"Prometheus namespace to use for metrics. ")
}

func LogConfig(fs *pflag.FlagSet, cfg *log.Config) {
	fs.Var(NewFileFlag(&cfg.File, gatekeeper.OpenFileParser(log.DefaultFileFlags, log.DefaultFileMode, log.DefaultDirMode)),
		"log-file", "<path>"+
			"Path to the log file, if empty, logs to stdout. "+
			"The file is reopened on SIGHUP to support log rotation. ")

	logLevel := []log.Level{
		log.ErrorLevel,
		log.WarnLevel,
		log.InfoLevel,
		log.DebugLevel,
	}
	fs.Var(anyflag.NewValue[log.Level](cfg.Level, &cfg.Level, anyflag.EnumParser[log.Level](logLevel...)),
		"log-level", "<error|warn|info|debug>"+
			"Log level. ")

	logFormat := []log.Format{
		log.TextFormat,
		log.JSONFormat,
	}
	fs.Var(anyflag.NewValue[log.Format](cfg.Format, &cfg.Format, anyflag.EnumParser[log.Format](logFormat...)),
		"log-format", "<text|json>"+
			"Log format. ")
}

func MarkFlagHidden(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.Flags().MarkHidden(name); err != nil {
			panic(err)
		}
	}
}

func MarkFlagRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func AutoMarkFlagFilename(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.HasPrefix(f.Usage, "<path") ||
			strings.HasSuffix(f.Name, "-file") ||
			strings.HasSuffix(f.Name, "-dir") {
			MarkFlagFilename(cmd, f.Name)
		}
	})
}

func MarkFlagFilename(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagFilename(name); err != nil {
			panic(err)
		}
	}
}
