// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

type DescribeFormat int

const (
	Plain DescribeFormat = iota
	JSON
	YAML
)

// DescribeFlags renders the current flag values.
// Values are rendered with the flag String method, so flags that redact secrets stay redacted.
func DescribeFlags(fs *pflag.FlagSet, format DescribeFormat) (string, error) {
	return FlagsDescriber{
		Format: format,
	}.DescribeFlags(fs)
}

type FlagsDescriber struct {
	Format     DescribeFormat
	ShowHidden bool
}

type sliceValue interface {
	GetSlice() []string
}

func (d FlagsDescriber) DescribeFlags(fs *pflag.FlagSet) (string, error) {
	args := make(map[string]any)

	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || (f.Hidden && !d.ShowHidden) {
			return
		}
		args[f.Name] = d.value(f)
	})

	switch d.Format {
	case Plain:
		return describePlain(args), nil
	case JSON:
		b, err := json.Marshal(args)
		return string(b), err
	case YAML:
		return describeYAML(args)
	default:
		return "", errors.New("unknown format")
	}
}

func (d FlagsDescriber) value(f *pflag.Flag) any {
	if f.Value.Type() == "bool" {
		return f.Value
	}
	if sv, ok := f.Value.(sliceValue); ok {
		if d.Format == Plain {
			return strings.Join(sv.GetSlice(), ",")
		}
		return sv.GetSlice()
	}
	return f.Value.String()
}

func describePlain(args map[string]any) string {
	keys := maps.Keys(args)
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%v\n", k, args[k])
	}
	return sb.String()
}

func describeYAML(args map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(args); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
