// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package templates

import (
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/pflag"
)

// HelpFlagPrinter prints flags in command help, one flag per paragraph.
type HelpFlagPrinter struct {
	out       io.Writer
	envPrefix string
	wrapLimit uint
}

func NewHelpFlagPrinter(out io.Writer, envPrefix string, wrapLimit uint) *HelpFlagPrinter {
	return &HelpFlagPrinter{
		out:       out,
		envPrefix: envPrefix,
		wrapLimit: wrapLimit,
	}
}

func (p *HelpFlagPrinter) PrintHelpFlag(f *pflag.Flag) {
	name, usage := FlagNameAndUsage(f)

	var b strings.Builder
	if f.Shorthand != "" {
		fmt.Fprintf(&b, "-%s, ", f.Shorthand)
	}
	fmt.Fprintf(&b, "--%s%s", f.Name, name)
	if def := defaultValue(f); def != "" {
		if f.Value.Type() == "string" {
			fmt.Fprintf(&b, " (default '%s')", def)
		} else {
			fmt.Fprintf(&b, " (default %s)", def)
		}
	}
	fmt.Fprintf(&b, " (env %s)", EnvName(p.envPrefix, f.Name))

	text := usage
	if f.Deprecated != "" {
		text += fmt.Sprintf(" (DEPRECATED: %s)", f.Deprecated)
	}
	wrapped := wordwrap.WrapString(text, p.wrapLimit)

	fmt.Fprintf(p.out, "%s\n\t%s\n\n", b.String(), strings.ReplaceAll(wrapped, "\n", "\n\t"))
}

// YamlFlagPrinter prints flags as commented YAML config file entries.
type YamlFlagPrinter struct {
	out       io.Writer
	wrapLimit uint
}

func NewYamlFlagPrinter(out io.Writer, wrapLimit uint) *YamlFlagPrinter {
	return &YamlFlagPrinter{
		out:       out,
		wrapLimit: wrapLimit,
	}
}

func (p *YamlFlagPrinter) PrintHelpFlag(f *pflag.Flag) {
	_, usage := FlagNameAndUsage(f)

	wrapped := wordwrap.WrapString(usage, p.wrapLimit-2)
	fmt.Fprintf(p.out, "# %s\n#\n", strings.ReplaceAll(wrapped, "\n", "\n# "))

	if def := defaultValue(f); def != "" {
		fmt.Fprintf(p.out, "#%s: %s\n\n", f.Name, def)
	} else {
		fmt.Fprintf(p.out, "#%s:\n\n", f.Name)
	}
}

func defaultValue(f *pflag.Flag) string {
	if f.DefValue == "[]" {
		return ""
	}
	return f.DefValue
}

// FlagNameAndUsage splits the usage string into the value placeholder and the description.
// A placeholder is a leading <...> or [...] group, for example "<host:port>Listen address.".
func FlagNameAndUsage(f *pflag.Flag) (name, usage string) {
	usage = f.Usage
	if len(usage) > 0 && (usage[0] == '<' || usage[0] == '[') {
		if i := placeholderEnd(usage); i > 0 {
			return " " + usage[:i], strings.TrimSpace(usage[i:])
		}
	}

	name, usage = pflag.UnquoteUsage(f)
	switch name {
	case "":
		return "", usage
	case "string":
		name = "value"
	}
	return " <" + name + ">", usage
}

func placeholderEnd(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '<', '[':
			depth++
		case '>', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

var envReplacer = strings.NewReplacer(".", "_", "-", "_") //nolint:gochecknoglobals // replacer

// EnvName returns the environment variable bound to the flag.
func EnvName(envPrefix, flagName string) string {
	return envReplacer.Replace(strings.ToUpper(envPrefix + "_" + flagName))
}
