// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package activation holds the result of resolving an environment
// descriptor: the executable search path and the derived variables a
// consuming process needs, plus renderers for handing them to a shell.
package activation

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"daml.com/x/denv/pkg/schema"
	"github.com/samber/lo"
)

const (
	ActivationKind          = "ActivationEnvironment"
	ActivationSchemaVersion = "v1"
)

const pathVar = "PATH"

// Environment is an immutable activation result. Construction copies its
// inputs and accessors copy their outputs.
type Environment struct {
	searchPath []string
	vars       map[string]string
}

func New(searchPath []string, vars map[string]string) *Environment {
	return &Environment{
		searchPath: slices.Clone(searchPath),
		vars:       maps.Clone(vars),
	}
}

// SearchPath returns the executable directories to prepend, highest precedence first
func (e *Environment) SearchPath() []string {
	return slices.Clone(e.searchPath)
}

// Vars returns the derived environment variables
func (e *Environment) Vars() map[string]string {
	return maps.Clone(e.vars)
}

// VarNames returns the derived variable names, sorted
func (e *Environment) VarNames() []string {
	names := lo.Keys(e.vars)
	slices.Sort(names)
	return names
}

// Environ applies the activation to a base process environment, as produced
// by os.Environ. The search path is prepended to the base PATH and derived
// variables override base entries of the same name.
func (e *Environment) Environ(base []string) []string {
	result := make([]string, 0, len(base)+len(e.vars)+1)
	handled := map[string]bool{}

	for _, entry := range base {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			result = append(result, entry)
			continue
		}
		switch {
		case name == pathVar:
			result = append(result, pathVar+"="+e.prependedPath(value))
		case lo.HasKey(e.vars, name):
			result = append(result, name+"="+e.vars[name])
		default:
			result = append(result, entry)
		}
		handled[name] = true
	}

	if !handled[pathVar] && len(e.searchPath) > 0 {
		result = append(result, pathVar+"="+strings.Join(e.searchPath, ":"))
	}
	for _, name := range e.VarNames() {
		if !handled[name] {
			result = append(result, name+"="+e.vars[name])
		}
	}
	return result
}

func (e *Environment) prependedPath(base string) string {
	if len(e.searchPath) == 0 {
		return base
	}
	if base == "" {
		return strings.Join(e.searchPath, ":")
	}
	return strings.Join(e.searchPath, ":") + ":" + base
}

// Manifest is the YAML-facing shape of an activation environment
type Manifest struct {
	schema.ManifestMeta `yaml:",inline"`
	Spec                *ManifestSpec `yaml:"spec"`
}

type ManifestSpec struct {
	SearchPath []string          `yaml:"searchPath"`
	Vars       map[string]string `yaml:"vars"`
}

func (e *Environment) Manifest() *Manifest {
	return &Manifest{
		ManifestMeta: schema.Meta(ActivationKind, ActivationSchemaVersion),
		Spec: &ManifestSpec{
			SearchPath: e.SearchPath(),
			Vars:       e.Vars(),
		},
	}
}

// Format selects the shell dialect activation scripts are rendered in
type Format string

const (
	FormatSh     Format = "sh"
	FormatFish   Format = "fish"
	FormatDotenv Format = "dotenv"
)

var Formats = []Format{FormatSh, FormatFish, FormatDotenv}

func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !lo.Contains(Formats, f) {
		return "", fmt.Errorf("unknown format %q. Must be one of %s", s,
			strings.Join(lo.Map(Formats, func(f Format, _ int) string { return string(f) }), ", "))
	}
	return f, nil
}

// Render produces a script that applies the activation when evaluated by
// the target shell. Output is deterministic: the search path line first,
// then variables sorted by name.
func (e *Environment) Render(format Format) (string, error) {
	switch format {
	case FormatSh:
		return e.renderSh(), nil
	case FormatFish:
		return e.renderFish(), nil
	case FormatDotenv:
		return e.renderDotenv(), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

func (e *Environment) renderSh() string {
	var b strings.Builder
	if len(e.searchPath) > 0 {
		quoted := lo.Map(e.searchPath, func(p string, _ int) string { return shQuote(p) })
		fmt.Fprintf(&b, "export PATH=%s:\"$PATH\"\n", strings.Join(quoted, ":"))
	}
	for _, name := range e.VarNames() {
		fmt.Fprintf(&b, "export %s=%s\n", name, shQuote(e.vars[name]))
	}
	return b.String()
}

func (e *Environment) renderFish() string {
	var b strings.Builder
	if len(e.searchPath) > 0 {
		quoted := lo.Map(e.searchPath, func(p string, _ int) string { return shQuote(p) })
		fmt.Fprintf(&b, "set -gx PATH %s $PATH\n", strings.Join(quoted, " "))
	}
	for _, name := range e.VarNames() {
		fmt.Fprintf(&b, "set -gx %s %s\n", name, shQuote(e.vars[name]))
	}
	return b.String()
}

// renderDotenv has no shell to expand $PATH for it, so the PATH entry holds
// only the prepended directories
func (e *Environment) renderDotenv() string {
	var b strings.Builder
	if len(e.searchPath) > 0 {
		fmt.Fprintf(&b, "%s=%s\n", pathVar, strings.Join(e.searchPath, ":"))
	}
	for _, name := range e.VarNames() {
		fmt.Fprintf(&b, "%s=%s\n", name, e.vars[name])
	}
	return b.String()
}

// shQuote single-quotes a value for POSIX and fish shells
func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
