// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package envlock pins the tool versions an environment resolved to, so a
// later activation on the same machine or a colleague's reproduces them.
package envlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"daml.com/x/denv/pkg/catalog"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/resolver"
	"daml.com/x/denv/pkg/schema"
	"daml.com/x/denv/pkg/toolmanifest"
	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

const (
	EnvironmentLockKind       = "EnvironmentLock"
	EnvironmentLockVersion    = "v1"
	EnvironmentLockAPIVersion = schema.APIGroup + "/" + EnvironmentLockVersion
)

var ErrInvalidLock = fmt.Errorf("invalid environment lock")
var ErrLockOutOfSync = errors.New(denvconfig.LockFileName + " is out of date; please run 'denv lock'")

type EnvironmentLock struct {
	schema.ManifestMeta `yaml:",inline"`
	Tools               []*LockedTool `yaml:"tools"`
}

type LockedTool struct {
	Name    string              `yaml:"name"`
	Version *toolmanifest.SemVer `yaml:"version"`
}

// FromResolution pins the tool versions a resolution selected, sorted by name
func FromResolution(res *resolver.Resolution) *EnvironmentLock {
	locked := lo.Map(res.Tools, func(t *catalog.Tool, _ int) *LockedTool {
		return &LockedTool{
			Name:    t.Name,
			Version: toolmanifest.NewSemVer(t.Version),
		}
	})
	slices.SortFunc(locked, func(a, b *LockedTool) int {
		return strings.Compare(a.Name, b.Name)
	})

	return &EnvironmentLock{
		ManifestMeta: schema.Meta(EnvironmentLockKind, EnvironmentLockVersion),
		Tools:        locked,
	}
}

func ReadLock(filePath string) (*EnvironmentLock, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	bytes, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return ReadLockContents(bytes)
}

func ReadLockContents(contents []byte) (*EnvironmentLock, error) {
	var l EnvironmentLock
	if err := yaml.Unmarshal(contents, &l); err != nil {
		return nil, errors.Join(ErrInvalidLock, err)
	}

	s := schema.Meta(EnvironmentLockKind, EnvironmentLockVersion)
	if err := s.ValidateSchema(l.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLock, err.Error())
	}

	for _, t := range l.Tools {
		if t.Name == "" || t.Version == nil {
			return nil, fmt.Errorf("%w: every locked tool needs 'name' and 'version'", ErrInvalidLock)
		}
	}

	return &l, nil
}

func (l *EnvironmentLock) Write(filePath string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// IsInSync reports whether this (existing) lock pins exactly the tools and
// versions of an expected lock
func (l *EnvironmentLock) IsInSync(expected *EnvironmentLock) bool {
	if len(l.Tools) != len(expected.Tools) {
		return false
	}
	pinned := l.toMap()
	for name, version := range expected.toMap() {
		if v, ok := pinned[name]; !ok || !v.Equal(version) {
			return false
		}
	}
	return true
}

func (l *EnvironmentLock) toMap() map[string]*semver.Version {
	return lo.SliceToMap(l.Tools, func(t *LockedTool) (string, *semver.Version) {
		v := t.Version.Value()
		return t.Name, &v
	})
}

// Snapshot narrows a catalog snapshot to the locked versions. A lookup for
// a tool the lock does not pin, or whose pinned version no longer satisfies
// the requested constraint, fails with ErrLockOutOfSync.
type Snapshot struct {
	lock  *EnvironmentLock
	inner catalog.Snapshot
}

var _ catalog.Snapshot = (*Snapshot)(nil)

func NewSnapshot(lock *EnvironmentLock, inner catalog.Snapshot) *Snapshot {
	return &Snapshot{lock: lock, inner: inner}
}

func (s *Snapshot) Lookup(name string, constraint *semver.Constraints) (*catalog.Tool, error) {
	pinned, ok := s.lock.toMap()[name]
	if !ok {
		return nil, fmt.Errorf("%w: tool %q is not pinned", ErrLockOutOfSync, name)
	}
	if constraint != nil && !constraint.Check(pinned) {
		return nil, fmt.Errorf("%w: pinned version %s of tool %q no longer satisfies %q",
			ErrLockOutOfSync, pinned.String(), name, constraint.String())
	}

	exact, err := semver.NewConstraint("=" + pinned.String())
	if err != nil {
		return nil, err
	}
	return s.inner.Lookup(name, exact)
}

func (s *Snapshot) Tools() []*catalog.Tool {
	return s.inner.Tools()
}
