// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"fmt"
	"io"

	"github.com/saucelabs/gatekeeper/utils/cobrautil/templates"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const wrapLimit = 80

// DefaultLong sets the long description to the short description if the long description is empty.
func DefaultLong(cmd *cobra.Command) {
	if cmd.Short == "" {
		return
	}

	if cmd.Long == "" {
		cmd.Long = cmd.Short + "."
	} else {
		cmd.Long = cmd.Short + ".\n\n" + cmd.Long
	}
}

func NoHelpSubcommand(cmd *cobra.Command) {
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

// SetGroupedHelp replaces the command usage with a listing of flags split into groups.
// Each flag is printed with the environment variable it is bound to.
func SetGroupedHelp(cmd *cobra.Command, envPrefix string, g templates.FlagGroups) {
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		w := c.OutOrStderr()
		fmt.Fprintf(w, "Usage:\n  %s\n", c.UseLine())
		if c.Example != "" {
			fmt.Fprintf(w, "\nExamples:\n%s\n", c.Example)
		}

		p := templates.NewHelpFlagPrinter(w, envPrefix, wrapLimit)
		names, sets := templates.SplitFlagSet(g, c.Flags())
		for i, fs := range sets {
			if !hasVisibleFlags(fs) {
				continue
			}
			fmt.Fprintf(w, "\n%s:\n", names[i])
			visitVisible(fs, p.PrintHelpFlag)
		}
		return nil
	})
}

// WriteConfigFileTemplate writes a commented YAML config file listing every visible flag with its default.
func WriteConfigFileTemplate(w io.Writer, g templates.FlagGroups, fs *pflag.FlagSet) {
	p := templates.NewYamlFlagPrinter(w, wrapLimit)
	names, sets := templates.SplitFlagSet(g, fs)
	for i, s := range sets {
		if !hasVisibleFlags(s) {
			continue
		}
		fmt.Fprintf(w, "# --- %s ---\n\n", names[i])
		visitVisible(s, p.PrintHelpFlag)
	}
}

func visitVisible(fs *pflag.FlagSet, fn func(f *pflag.Flag)) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		fn(f)
	})
}

func hasVisibleFlags(fs *pflag.FlagSet) bool {
	n := 0
	visitVisible(fs, func(*pflag.Flag) { n++ })
	return n > 0
}
