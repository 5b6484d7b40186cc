// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package storecatalog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"daml.com/x/denv/pkg/catalog"
	"daml.com/x/denv/pkg/denvconfig"
	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStoreEntry(t *testing.T, storePath, name, version string, paths map[string]string) {
	t.Helper()
	root := filepath.Join(storePath, name, version)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0755))

	manifest := fmt.Sprintf("apiVersion: digitalasset.com/v1\nkind: Tool\nspec:\n  name: %s\n  version: %s\n  bin: bin\n", name, version)
	if len(paths) > 0 {
		manifest += "  paths:\n"
		for k, v := range paths {
			manifest += fmt.Sprintf("    %s: %s\n", k, v)
		}
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, denvconfig.ToolManifestName), []byte(manifest), 0644))
}

func storeConfig(t *testing.T) *denvconfig.Config {
	t.Helper()
	return &denvconfig.Config{StorePath: filepath.Join(t.TempDir(), "store")}
}

func TestTakeSnapshotEmptyStore(t *testing.T) {
	snap, err := TakeSnapshot(storeConfig(t))
	require.NoError(t, err)
	assert.Empty(t, snap.Tools())

	_, err = snap.Lookup("rustc", nil)
	var unresolved *catalog.UnresolvedToolError
	assert.ErrorAs(t, err, &unresolved)
}

func TestTakeSnapshot(t *testing.T) {
	config := storeConfig(t)
	writeStoreEntry(t, config.StorePath, "rustc", "1.74.0", nil)
	writeStoreEntry(t, config.StorePath, "rustc", "1.75.0", nil)
	writeStoreEntry(t, config.StorePath, "rust-src", "1.75.0", map[string]string{"src": "lib/rustlib/src/rust/library"})

	snap, err := TakeSnapshot(config)
	require.NoError(t, err)

	names := lo.Map(snap.Tools(), func(tool *catalog.Tool, _ int) string {
		return tool.Name + "@" + tool.Version.String()
	})
	assert.Equal(t, []string{"rust-src@1.75.0", "rustc@1.74.0", "rustc@1.75.0"}, names)

	src, err := snap.Lookup("rust-src", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(config.StorePath, "rust-src", "1.75.0"), src.RootPath)
	assert.Equal(t, filepath.Join(src.RootPath, "bin"), src.BinPath)
	assert.Equal(t, filepath.Join(src.RootPath, "lib/rustlib/src/rust/library"), src.Paths["src"])
}

func TestLookupPicksHighestMatching(t *testing.T) {
	config := storeConfig(t)
	writeStoreEntry(t, config.StorePath, "rustc", "1.74.0", nil)
	writeStoreEntry(t, config.StorePath, "rustc", "1.75.0", nil)
	writeStoreEntry(t, config.StorePath, "rustc", "2.0.0", nil)

	snap, err := TakeSnapshot(config)
	require.NoError(t, err)

	unconstrained, err := snap.Lookup("rustc", nil)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", unconstrained.Version.String())

	constraint, err := semver.NewConstraint("^1.75")
	require.NoError(t, err)
	constrained, err := snap.Lookup("rustc", constraint)
	require.NoError(t, err)
	assert.Equal(t, "1.75.0", constrained.Version.String())

	tooNew, err := semver.NewConstraint("^3")
	require.NoError(t, err)
	_, err = snap.Lookup("rustc", tooNew)
	var unresolved *catalog.UnresolvedToolError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "rustc", unresolved.Name)
}

func TestTakeSnapshotSkipsInvalidEntries(t *testing.T) {
	config := storeConfig(t)
	writeStoreEntry(t, config.StorePath, "rustc", "1.75.0", nil)

	// version dir without a manifest
	require.NoError(t, os.MkdirAll(filepath.Join(config.StorePath, "rustc", "9.9.9"), 0755))
	// manifest that disagrees with its location
	writeStoreEntry(t, config.StorePath, "cargo", "1.75.0", nil)
	mislocated := filepath.Join(config.StorePath, "cargo", "1.75.0", denvconfig.ToolManifestName)
	require.NoError(t, os.WriteFile(mislocated,
		[]byte("apiVersion: digitalasset.com/v1\nkind: Tool\nspec:\n  name: cargo\n  version: 2.0.0\n  bin: bin\n"), 0644))
	// stray file at the tool level is ignored
	require.NoError(t, os.WriteFile(filepath.Join(config.StorePath, "notes.txt"), []byte("hi"), 0644))

	snap, err := TakeSnapshot(config)
	require.NoError(t, err)

	require.Len(t, snap.Tools(), 1)
	assert.Equal(t, "rustc", snap.Tools()[0].Name)
}
