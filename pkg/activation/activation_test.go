// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package activation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Environment {
	return New(
		[]string{"/store/rustc/1.75.0/bin", "/store/cargo/1.75.0/bin"},
		map[string]string{
			"RUST_SRC_PATH": "/store/rust-src/1.75.0/lib/rustlib/src/rust/library",
			"CARGO_HOME":    "/home/dev/.cargo",
		},
	)
}

func TestImmutability(t *testing.T) {
	searchPath := []string{"/a/bin"}
	vars := map[string]string{"X": "1"}
	e := New(searchPath, vars)

	searchPath[0] = "/mutated"
	vars["X"] = "mutated"
	e.SearchPath()[0] = "/mutated-too"
	e.Vars()["X"] = "mutated-too"

	assert.Equal(t, []string{"/a/bin"}, e.SearchPath())
	assert.Equal(t, map[string]string{"X": "1"}, e.Vars())
}

func TestRenderSh(t *testing.T) {
	script, err := sample().Render(FormatSh)
	require.NoError(t, err)

	assert.Equal(t,
		"export PATH='/store/rustc/1.75.0/bin':'/store/cargo/1.75.0/bin':\"$PATH\"\n"+
			"export CARGO_HOME='/home/dev/.cargo'\n"+
			"export RUST_SRC_PATH='/store/rust-src/1.75.0/lib/rustlib/src/rust/library'\n",
		script)
}

func TestRenderShQuoting(t *testing.T) {
	e := New(nil, map[string]string{"V": "it's a value"})
	script, err := e.Render(FormatSh)
	require.NoError(t, err)
	assert.Equal(t, `export V='it'\''s a value'`+"\n", script)
}

func TestRenderFish(t *testing.T) {
	script, err := sample().Render(FormatFish)
	require.NoError(t, err)

	assert.Equal(t,
		"set -gx PATH '/store/rustc/1.75.0/bin' '/store/cargo/1.75.0/bin' $PATH\n"+
			"set -gx CARGO_HOME '/home/dev/.cargo'\n"+
			"set -gx RUST_SRC_PATH '/store/rust-src/1.75.0/lib/rustlib/src/rust/library'\n",
		script)
}

func TestRenderDotenv(t *testing.T) {
	script, err := sample().Render(FormatDotenv)
	require.NoError(t, err)

	assert.Equal(t,
		"PATH=/store/rustc/1.75.0/bin:/store/cargo/1.75.0/bin\n"+
			"CARGO_HOME=/home/dev/.cargo\n"+
			"RUST_SRC_PATH=/store/rust-src/1.75.0/lib/rustlib/src/rust/library\n",
		script)
}

func TestRenderEmpty(t *testing.T) {
	e := New(nil, nil)
	for _, format := range Formats {
		script, err := e.Render(format)
		require.NoError(t, err)
		assert.Empty(t, script)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("fish")
	require.NoError(t, err)
	assert.Equal(t, FormatFish, f)

	_, err = ParseFormat("powershell")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sh, fish, dotenv")
}

func TestEnviron(t *testing.T) {
	e := New([]string{"/a/bin"}, map[string]string{"NEW": "n", "OVERRIDDEN": "after"})
	base := []string{"PATH=/usr/bin:/bin", "OVERRIDDEN=before", "KEPT=yes"}

	assert.Equal(t, []string{
		"PATH=/a/bin:/usr/bin:/bin",
		"OVERRIDDEN=after",
		"KEPT=yes",
		"NEW=n",
	}, e.Environ(base))
}

func TestEnvironWithoutBasePath(t *testing.T) {
	e := New([]string{"/a/bin"}, nil)
	assert.Equal(t, []string{"KEPT=yes", "PATH=/a/bin"}, e.Environ([]string{"KEPT=yes"}))
}

func TestManifest(t *testing.T) {
	m := sample().Manifest()
	assert.Equal(t, ActivationKind, m.Kind)
	assert.Len(t, m.Spec.SearchPath, 2)
	assert.Len(t, m.Spec.Vars, 2)
}
