// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package templates

import (
	"slices"

	"github.com/spf13/pflag"
)

// FlagGroup is a named set of flags shown together in help and config file templates.
type FlagGroup struct {
	Name  string
	Flags []string
}

type FlagGroups []FlagGroup

// OtherFlags is the name of the group holding flags that are not in any group.
const OtherFlags = "Other"

// SplitFlagSet splits fs into one flag set per group, in the order of groups.
// Flags that do not belong to any group are added to a trailing group named OtherFlags.
func SplitFlagSet(g FlagGroups, fs *pflag.FlagSet) ([]string, []*pflag.FlagSet) {
	names := make([]string, 0, len(g)+1)
	sets := make([]*pflag.FlagSet, 0, len(g)+1)
	for i := range g {
		names = append(names, g[i].Name)
		sets = append(sets, pflag.NewFlagSet(g[i].Name, pflag.ContinueOnError))
	}
	other := pflag.NewFlagSet(OtherFlags, pflag.ContinueOnError)

	fs.VisitAll(func(f *pflag.Flag) {
		for i := range g {
			if slices.Contains(g[i].Flags, f.Name) {
				sets[i].AddFlag(f)
				return
			}
		}
		other.AddFlag(f)
	})

	if other.HasFlags() {
		names = append(names, OtherFlags)
		sets = append(sets, other)
	}

	return names, sets
}
