// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package storecatalog exposes the local tool store as a catalog snapshot.
// The store is laid out as store/<tool>/<version>/, each version directory
// holding the unpacked tool plus its tool.yaml manifest.
package storecatalog

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"daml.com/x/denv/pkg/catalog"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/toolmanifest"
	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
)

type StoreSnapshot struct {
	tools map[string][]*catalog.Tool
}

var _ catalog.Snapshot = (*StoreSnapshot)(nil)

// TakeSnapshot scans the local store once. Version directories with a
// missing or invalid tool.yaml are skipped with a warning; they never fail
// the snapshot. An unreadable store root does.
func TakeSnapshot(config *denvconfig.Config) (*StoreSnapshot, error) {
	snapshot := &StoreSnapshot{tools: map[string][]*catalog.Tool{}}

	toolDirs, err := readSubDirs(config.StorePath)
	if errors.Is(err, fs.ErrNotExist) {
		// empty store, nothing installed yet
		return snapshot, nil
	}
	if err != nil {
		return nil, &catalog.CatalogUnavailableError{Cause: err}
	}

	for _, toolDir := range toolDirs {
		versionDirs, err := readSubDirs(filepath.Join(config.StorePath, toolDir))
		if err != nil {
			return nil, &catalog.CatalogUnavailableError{Cause: err}
		}

		for _, versionDir := range versionDirs {
			root := filepath.Join(config.StorePath, toolDir, versionDir)
			tool, err := readStoreEntry(root)
			if err != nil {
				slog.Warn("skipping invalid store entry", "path", root, "err", err.Error())
				continue
			}
			if tool.Name != toolDir || tool.Version.String() != versionDir {
				slog.Warn("skipping store entry whose manifest disagrees with its location",
					"path", root, "name", tool.Name, "version", tool.Version.String())
				continue
			}
			snapshot.tools[tool.Name] = append(snapshot.tools[tool.Name], tool)
		}
	}

	return snapshot, nil
}

func readStoreEntry(root string) (*catalog.Tool, error) {
	manifest, err := toolmanifest.ReadToolManifest(filepath.Join(root, denvconfig.ToolManifestName))
	if err != nil {
		return nil, err
	}

	version := manifest.Spec.Version.Value()
	return &catalog.Tool{
		Name:     manifest.Spec.Name,
		Version:  &version,
		RootPath: root,
		BinPath:  filepath.Join(root, manifest.Spec.Bin),
		Paths:    catalog.AbsPaths(root, manifest.Spec.Paths),
	}, nil
}

func readSubDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(entries, func(e fs.DirEntry, _ int) (string, bool) {
		return e.Name(), e.IsDir()
	}), nil
}

func (s *StoreSnapshot) Lookup(name string, constraint *semver.Constraints) (*catalog.Tool, error) {
	candidates := lo.Filter(s.tools[name], func(t *catalog.Tool, _ int) bool {
		return constraint == nil || constraint.Check(t.Version)
	})
	if len(candidates) == 0 {
		return nil, &catalog.UnresolvedToolError{Name: name, Constraint: constraint}
	}
	return lo.MaxBy(candidates, func(a *catalog.Tool, b *catalog.Tool) bool {
		return a.Version.GreaterThan(b.Version)
	}), nil
}

func (s *StoreSnapshot) Tools() []*catalog.Tool {
	all := lo.Flatten(lo.Values(s.tools))
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].Version.LessThan(all[j].Version)
	})
	return slices.Clip(all)
}
