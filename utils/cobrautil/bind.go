// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var envReplacer = strings.NewReplacer(".", "_", "-", "_") //nolint:gochecknoglobals // false positive

// BindAll updates the given command flags with values from the environment variables and config file.
// The supported formats are: JSON, YAML, TOML, HCL, and Java properties.
// The file format is determined by the file extension, if not specified the default format is YAML.
// The following precedence order of configuration sources is used: command flags, environment variables, config file, default values.
func BindAll(cmd *cobra.Command, envPrefix, configFileFlagName string) error {
	v := viper.New()

	// Flags
	if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Environment variables
	v.SetEnvKeyReplacer(envReplacer)
	v.SetEnvPrefix(envReplacer.Replace(strings.ToUpper(envPrefix)))
	v.AutomaticEnv()

	// Config file
	if configFileFlagName != "" {
		if f := v.GetString(configFileFlagName); f != "" {
			if !strings.Contains(f, ".") {
				v.SetConfigType("yaml")
			}
			v.SetConfigFile(f)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config file: %w", err)
			}
		}
	}

	// Update cobra flags with values from viper
	var errs []string
	updateFs := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) {
				return
			}
			if err := fs.Set(f.Name, flagValue(v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", f.Name, err))
			}
		})
	}
	updateFs(cmd.PersistentFlags())
	updateFs(cmd.Flags())

	if len(errs) > 0 {
		return fmt.Errorf("failed to update flags: %s", strings.Join(errs, "; "))
	}

	return nil
}

// flagValue formats a viper value as a flag value, slices are comma separated.
func flagValue(val any) string {
	if vv, ok := val.([]any); ok {
		s := make([]string, len(vv))
		for i := range vv {
			s[i] = fmt.Sprint(vv[i])
		}
		return strings.Join(s, ",")
	}

	s := fmt.Sprintf("%v", val)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.NewReplacer(", ", ",", " ", ",").Replace(s)
}
