// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"slices"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
)

// FakeSnapshot is an in-memory Snapshot for tests. It counts lookups so
// tests can assert that validation failures happen before any catalog access.
type FakeSnapshot struct {
	tools   map[string][]*Tool
	Lookups int
}

var _ Snapshot = (*FakeSnapshot)(nil)

func NewFakeSnapshot() *FakeSnapshot {
	return &FakeSnapshot{tools: map[string][]*Tool{}}
}

func (s *FakeSnapshot) AddTool(tool *Tool) *FakeSnapshot {
	s.tools[tool.Name] = append(s.tools[tool.Name], tool)
	return s
}

func (s *FakeSnapshot) Lookup(name string, constraint *semver.Constraints) (*Tool, error) {
	s.Lookups++
	candidates := lo.Filter(s.tools[name], func(t *Tool, _ int) bool {
		return constraint == nil || constraint.Check(t.Version)
	})
	if len(candidates) == 0 {
		return nil, &UnresolvedToolError{Name: name, Constraint: constraint}
	}
	return lo.MaxBy(candidates, func(a *Tool, b *Tool) bool {
		return a.Version.GreaterThan(b.Version)
	}), nil
}

func (s *FakeSnapshot) Tools() []*Tool {
	all := lo.Flatten(lo.Values(s.tools))
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].Version.LessThan(all[j].Version)
	})
	return slices.Clip(all)
}
