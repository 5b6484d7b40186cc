// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"os"
	"path/filepath"
	"testing"

	"daml.com/x/denv/pkg/utils"
	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_collectGitAnnotations(t *testing.T) {
	annotations, err := collectGitAnnotations()
	require.NoError(t, err)
	assert.Contains(t, annotations, "git.commit")
}

func writeToolDir(t *testing.T, manifest string) string {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool.yaml"), []byte(manifest), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "LICENSE"), []byte("license text"), 0644))
	return dir
}

func TestValidate(t *testing.T) {
	p := New(&Config{Name: "rustc", Version: semver.MustParse("1.75.0")}, utils.StdPrinter{})

	valid := writeToolDir(t, "apiVersion: digitalasset.com/v1\nkind: Tool\nspec:\n  name: rustc\n  version: 1.75.0\n  bin: bin\n")
	assert.NoError(t, p.validate(valid))

	wrongName := writeToolDir(t, "apiVersion: digitalasset.com/v1\nkind: Tool\nspec:\n  name: cargo\n  version: 1.75.0\n  bin: bin\n")
	assert.ErrorContains(t, p.validate(wrongName), "declares name")

	wrongVersion := writeToolDir(t, "apiVersion: digitalasset.com/v1\nkind: Tool\nspec:\n  name: rustc\n  version: 1.74.0\n  bin: bin\n")
	assert.ErrorContains(t, p.validate(wrongVersion), "declares version")

	missingPath := writeToolDir(t, "apiVersion: digitalasset.com/v1\nkind: Tool\nspec:\n  name: rustc\n  version: 1.75.0\n  bin: bin\n  paths:\n    src: lib/src\n")
	assert.ErrorContains(t, p.validate(missingPath), "does not exist")
}
