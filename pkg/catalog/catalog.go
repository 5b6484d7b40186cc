// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"path/filepath"

	"github.com/Masterminds/semver/v3"
)

// Tool is a single installed tool version as seen by the resolver.
// All paths are absolute.
type Tool struct {
	Name    string
	Version *semver.Version

	// RootPath is the tool's install root
	RootPath string
	// BinPath is the directory holding the tool's executables
	BinPath string
	// Paths are the tool's named exported paths
	Paths map[string]string
}

// Attr returns the tool attribute visible to derivation expressions:
// the builtins root/bin/version plus the tool's named exported paths.
func (t *Tool) Attr(name string) (string, bool) {
	switch name {
	case "root":
		return t.RootPath, true
	case "bin":
		return t.BinPath, true
	case "version":
		return t.Version.String(), true
	default:
		v, ok := t.Paths[name]
		return v, ok
	}
}

// AbsPaths resolves relative exported paths against the given root
func AbsPaths(root string, paths map[string]string) map[string]string {
	abs := make(map[string]string, len(paths))
	for name, p := range paths {
		if filepath.IsAbs(p) {
			abs[name] = filepath.Clean(p)
		} else {
			abs[name] = filepath.Join(root, p)
		}
	}
	return abs
}

// Snapshot is a point-in-time view of an available-tool catalog.
// Lookups against the same snapshot always return the same result.
type Snapshot interface {
	// Lookup returns the highest available version of the named tool that
	// satisfies the constraint. A nil constraint matches any version.
	// Returns UnresolvedToolError when no installed version matches.
	Lookup(name string, constraint *semver.Constraints) (*Tool, error)

	// Tools returns every tool version in the snapshot, sorted by name then version
	Tools() []*Tool
}
