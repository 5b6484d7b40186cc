// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/envlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStoreEntry(t *testing.T, config *denvconfig.Config, name, version string) {
	t.Helper()
	dir := filepath.Join(config.StorePath, name, version)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0755))
	manifest := fmt.Sprintf("apiVersion: digitalasset.com/v1\nkind: Tool\nspec:\n  name: %s\n  version: %s\n  bin: bin\n", name, version)
	require.NoError(t, os.WriteFile(filepath.Join(dir, denvconfig.ToolManifestName), []byte(manifest), 0644))
}

func writeDescriptor(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, denvconfig.DescriptorFileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func testConfig(t *testing.T) *denvconfig.Config {
	t.Helper()
	t.Setenv(denvconfig.DenvHomeEnvVar, t.TempDir())
	config, err := denvconfig.Get()
	require.NoError(t, err)
	require.NoError(t, config.EnsureDirs())
	return config
}

const descriptorYaml = `apiVersion: digitalasset.com/v1
kind: Environment
spec:
  tools:
    - rustc@^1.70
  vars:
    RUSTC_ROOT: ${tool.rustc.root}
`

func TestResolveWithoutLock(t *testing.T) {
	config := testConfig(t)
	writeStoreEntry(t, config, "rustc", "1.74.0")
	writeStoreEntry(t, config, "rustc", "1.75.0")

	descriptorPath := writeDescriptor(t, t.TempDir(), descriptorYaml)

	s, err := New(config, descriptorPath, false)
	require.NoError(t, err)

	res, err := s.Resolve()
	require.NoError(t, err)
	require.Len(t, res.Tools, 1)
	assert.Equal(t, "1.75.0", res.Tools[0].Version.String())
}

func TestResolveHonorsLock(t *testing.T) {
	config := testConfig(t)
	writeStoreEntry(t, config, "rustc", "1.74.0")
	writeStoreEntry(t, config, "rustc", "1.75.0")

	dir := t.TempDir()
	descriptorPath := writeDescriptor(t, dir, descriptorYaml)

	// pin the older version and resolve again
	s, err := New(config, descriptorPath, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, denvconfig.LockFileName), s.LockPath())

	lock := `apiVersion: digitalasset.com/v1
kind: EnvironmentLock
tools:
  - name: rustc
    version: 1.74.0
`
	require.NoError(t, os.WriteFile(s.LockPath(), []byte(lock), 0644))

	res, err := s.Resolve()
	require.NoError(t, err)
	require.Len(t, res.Tools, 1)
	assert.Equal(t, "1.74.0", res.Tools[0].Version.String())

	// --ignore-lock resolves against the constraint again
	ignoring, err := New(config, descriptorPath, true)
	require.NoError(t, err)
	res, err = ignoring.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "1.75.0", res.Tools[0].Version.String())
}

func TestResolveStaleLock(t *testing.T) {
	config := testConfig(t)
	writeStoreEntry(t, config, "rustc", "1.75.0")

	dir := t.TempDir()
	descriptorPath := writeDescriptor(t, dir, descriptorYaml)

	// the lock pins a tool the descriptor no longer satisfies
	lock := `apiVersion: digitalasset.com/v1
kind: EnvironmentLock
tools:
  - name: cargo
    version: 1.75.0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, denvconfig.LockFileName), []byte(lock), 0644))

	s, err := New(config, descriptorPath, false)
	require.NoError(t, err)

	_, err = s.Resolve()
	assert.ErrorIs(t, err, envlock.ErrLockOutOfSync)
}

func TestDescriptorPathFromEnv(t *testing.T) {
	config := testConfig(t)
	writeStoreEntry(t, config, "rustc", "1.75.0")

	descriptorPath := writeDescriptor(t, t.TempDir(), descriptorYaml)
	t.Setenv(denvconfig.DescriptorPathEnvVar, descriptorPath)

	s, err := New(config, "", false)
	require.NoError(t, err)
	assert.Equal(t, descriptorPath, s.DescriptorPath)

	res, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"RUSTC_ROOT": filepath.Join(config.StorePath, "rustc", "1.75.0"),
	}, res.Environment.Vars())
}
