// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package ocilister_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/ocilister"
	"daml.com/x/denv/pkg/testutil"
	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFloaty(t *testing.T) {
	assert.False(t, ocilister.IsFloaty("1.2.3"))
	assert.False(t, ocilister.IsFloaty("1.2.3-rc.1"))
	assert.True(t, ocilister.IsFloaty("1.2"))
	assert.True(t, ocilister.IsFloaty("latest"))
	assert.True(t, ocilister.IsFloaty("stable"))
}

func toolDir(t *testing.T, name, version string) string {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0755))
	manifest := fmt.Sprintf("apiVersion: digitalasset.com/v1\nkind: Tool\nspec:\n  name: %s\n  version: %s\n  bin: bin\n", name, version)
	require.NoError(t, os.WriteFile(filepath.Join(dir, denvconfig.ToolManifestName), []byte(manifest), 0644))
	return dir
}

func TestListToolVersions(t *testing.T) {
	ctx := testutil.Context(t)
	client, reg := testutil.StartRegistry(t)

	testutil.PushTool(t, ctx, reg, "rustc", "1.74.0", toolDir(t, "rustc", "1.74.0"))
	testutil.PushTool(t, ctx, reg, "rustc", "1.75.0", toolDir(t, "rustc", "1.75.0"))

	versions, err := ocilister.ListToolVersions(ctx, "rustc", client)
	require.NoError(t, err)

	strs := lo.Map(lo.Keys(versions), func(v *semver.Version, _ int) string { return v.String() })
	assert.ElementsMatch(t, []string{"1.74.0", "1.75.0"}, strs)
}

func TestListToolVersionsMissingRepo(t *testing.T) {
	ctx := testutil.Context(t)
	client, _ := testutil.StartRegistry(t)

	versions, err := ocilister.ListToolVersions(ctx, "never-pushed", client)
	require.NoError(t, err)
	assert.Empty(t, versions)
}
