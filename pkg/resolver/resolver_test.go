// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"fmt"
	"testing"

	"daml.com/x/denv/pkg/catalog"
	"daml.com/x/denv/pkg/envdescriptor"
	"daml.com/x/denv/pkg/expr"
	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tool(name, version string) *catalog.Tool {
	root := fmt.Sprintf("/store/%s/%s", name, version)
	return &catalog.Tool{
		Name:     name,
		Version:  semver.MustParse(version),
		RootPath: root,
		BinPath:  root + "/bin",
	}
}

func descriptor(t *testing.T, spec string) *envdescriptor.Descriptor {
	t.Helper()
	d, err := envdescriptor.ReadDescriptorContents([]byte(
		"apiVersion: digitalasset.com/v1\nkind: Environment\nspec:\n" + spec))
	require.NoError(t, err)
	return d
}

func rustSnapshot() *catalog.FakeSnapshot {
	srcTool := tool("rust-src", "1.75.0")
	srcTool.Paths = map[string]string{"src": srcTool.RootPath + "/lib/rustlib/src/rust/library"}

	return catalog.NewFakeSnapshot().
		AddTool(tool("rustc", "1.74.0")).
		AddTool(tool("rustc", "1.75.0")).
		AddTool(tool("rustc", "2.0.0")).
		AddTool(tool("cargo", "1.75.0")).
		AddTool(srcTool)
}

func TestResolve(t *testing.T) {
	d := descriptor(t, `
  tools:
    - rustc@^1.75
    - cargo
  vars:
    RUST_SRC_PATH: ${tool["rust-src"].src}
    RUSTC_VERSION: ${tool.rustc.version}
`)

	res, err := Resolve(d, rustSnapshot())
	require.NoError(t, err)

	// ^1.75 picks the highest 1.x, not the 2.0.0
	assert.Equal(t, []string{
		"/store/rustc/1.75.0/bin",
		"/store/cargo/1.75.0/bin",
	}, res.Environment.SearchPath())

	assert.Equal(t, map[string]string{
		"RUST_SRC_PATH": "/store/rust-src/1.75.0/lib/rustlib/src/rust/library",
		"RUSTC_VERSION": "1.75.0",
	}, res.Environment.Vars())

	// rust-src is resolved for its exported path but stays off the search path
	toolNames := make([]string, 0, len(res.Tools))
	for _, tl := range res.Tools {
		toolNames = append(toolNames, tl.Name)
	}
	assert.Equal(t, []string{"rustc", "cargo", "rust-src"}, toolNames)
}

func TestResolveChainedVars(t *testing.T) {
	d := descriptor(t, `
  tools: [rustc]
  vars:
    ROOT: ${tool.rustc.root}
    LIB: ${var.ROOT}/lib
    DEEP: ${var.LIB}/deep
`)

	res, err := Resolve(d, rustSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "/store/rustc/2.0.0/lib/deep", res.Environment.Vars()["DEEP"])
}

func TestResolveSharedBinDirDeduplicated(t *testing.T) {
	shared := tool("toolchain", "1.0.0")
	other := &catalog.Tool{
		Name:     "linker",
		Version:  semver.MustParse("1.0.0"),
		RootPath: shared.RootPath,
		BinPath:  shared.BinPath,
	}
	snap := catalog.NewFakeSnapshot().AddTool(shared).AddTool(other)

	res, err := Resolve(descriptor(t, "  tools: [toolchain, linker]\n"), snap)
	require.NoError(t, err)
	assert.Equal(t, []string{shared.BinPath}, res.Environment.SearchPath())
}

func TestResolveReportsAllMissingTools(t *testing.T) {
	d := descriptor(t, "  tools: [rustc, missing-one, missing-two]\n")

	_, err := Resolve(d, rustSnapshot())
	var unresolved *catalog.UnresolvedToolError
	require.ErrorAs(t, err, &unresolved)
	assert.Contains(t, err.Error(), "missing-one")
	assert.Contains(t, err.Error(), "missing-two")
}

func TestResolveUnsatisfiableConstraint(t *testing.T) {
	d := descriptor(t, "  tools: [\"rustc@^3\"]\n")

	_, err := Resolve(d, rustSnapshot())
	var unresolved *catalog.UnresolvedToolError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "rustc", unresolved.Name)
}

func TestResolveCycleFailsBeforeAnyLookup(t *testing.T) {
	// the descriptor reader already rejects cycles, so build the bad spec by hand
	d := descriptor(t, "  tools: [rustc]\n")
	a, err := expr.Parse("A", "${var.B}")
	require.NoError(t, err)
	b, err := expr.Parse("B", "${var.A}")
	require.NoError(t, err)
	d.Spec.Vars = map[string]*expr.Expression{"A": a, "B": b}

	snap := rustSnapshot()
	_, err = Resolve(d, snap)

	var cycleErr *expr.CyclicDerivationError
	require.ErrorAs(t, err, &cycleErr)
	assert.Zero(t, snap.Lookups)
}

func TestResolveIsPureOverSnapshot(t *testing.T) {
	d := descriptor(t, `
  tools: [rustc@^1.75, cargo]
  vars:
    RUST_SRC_PATH: ${tool["rust-src"].src}
`)

	first, err := Resolve(d, rustSnapshot())
	require.NoError(t, err)

	for range 10 {
		again, err := Resolve(d, rustSnapshot())
		require.NoError(t, err)
		assert.Equal(t, first.Environment, again.Environment)
	}
}
