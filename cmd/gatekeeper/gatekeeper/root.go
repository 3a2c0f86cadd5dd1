// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gatekeeper

import (
	"github.com/saucelabs/gatekeeper/bind"
	"github.com/saucelabs/gatekeeper/cmd/gatekeeper/run"
	"github.com/saucelabs/gatekeeper/cmd/gatekeeper/version"
	"github.com/saucelabs/gatekeeper/utils/cobrautil"
	"github.com/saucelabs/gatekeeper/utils/cobrautil/templates"
	"github.com/spf13/cobra"
)

const (
	EnvPrefix          = "GATEKEEPER"
	ConfigFileFlagName = "config-file"
)

var flagGroups = templates.FlagGroups{ //nolint:gochecknoglobals // static help layout
	{
		Name: "Proxy options",
		Flags: []string{
			"host",
			"port",
			"username",
			"password",
			"allowed-hosts",
			"read-header-timeout",
			"idle-timeout",
			"write-timeout",
		},
	},
	{
		Name: "Upstream options",
		Flags: []string{
			"dial-timeout",
			"upstream-idle-timeout",
			"keep-alive",
			"response-header-timeout",
		},
	},
	{
		Name: "API server options",
		Flags: []string{
			"api-address",
			"prom-namespace",
		},
	},
	{
		Name: "Logging options",
		Flags: []string{
			"log-file",
			"log-level",
			"log-format",
		},
	},
	{
		Name:  "Options",
		Flags: []string{ConfigFileFlagName},
	},
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatekeeper",
		Short: "Authenticated HTTP forward proxy with destination allow-list",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cobrautil.BindAll(cmd, EnvPrefix, ConfigFileFlagName)
		},
		SilenceUsage: true,
	}
	bind.ConfigFile(cmd.PersistentFlags(), new(string))
	cobrautil.NoHelpSubcommand(cmd)

	r := run.Command()
	cobrautil.SetGroupedHelp(r, EnvPrefix, flagGroups)

	cmd.AddCommand(
		r,
		configFileCommand(r),
		version.Command(),
	)
	for _, c := range cmd.Commands() {
		cobrautil.DefaultLong(c)
	}

	return cmd
}

func configFileCommand(target *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "config-file",
		Short: "Print a configuration file template for the " + target.Name() + " command",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fs := target.Flags()
			fs.AddFlagSet(target.InheritedFlags())
			cobrautil.WriteConfigFileTemplate(cmd.OutOrStdout(), flagGroups, fs)
		},
	}
}
