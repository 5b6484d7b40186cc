// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolver turns an environment descriptor and a catalog snapshot
// into an activation environment. Resolution is pure: it performs no I/O
// and the same descriptor and snapshot always produce the same result.
package resolver

import (
	"errors"
	"fmt"
	"slices"

	"daml.com/x/denv/pkg/activation"
	"daml.com/x/denv/pkg/catalog"
	"daml.com/x/denv/pkg/envdescriptor"
	"daml.com/x/denv/pkg/expr"
	"daml.com/x/denv/pkg/utils/stringset"
	"github.com/samber/lo"
	"github.com/zclconf/go-cty/cty"
)

// Resolution pairs the activation environment with the exact tool versions
// it was built from, so callers can pin them in a lockfile.
type Resolution struct {
	Environment *activation.Environment

	// Tools are the selected tool versions: declared tools in declaration
	// order, then expression-only tools sorted by name
	Tools []*catalog.Tool
}

// Resolve selects a version for every required tool and evaluates every
// derived variable. It fails without partial results: variable cycles are
// rejected before the first catalog lookup, and all unresolvable tools are
// reported together.
func Resolve(desc *envdescriptor.Descriptor, snap catalog.Snapshot) (*Resolution, error) {
	ordered, err := expr.Order(desc.Spec.Vars)
	if err != nil {
		return nil, err
	}

	selected := map[string]*catalog.Tool{}
	var tools []*catalog.Tool
	var searchPath []string
	seenBins := stringset.New()
	var lookupErrs []error

	// declared tools decide the search path; declaration order is precedence
	for _, ref := range desc.Spec.Tools {
		tool, err := snap.Lookup(ref.Name, ref.Constraint)
		if err != nil {
			lookupErrs = append(lookupErrs, err)
			continue
		}
		selected[tool.Name] = tool
		tools = append(tools, tool)
		if !seenBins.Contains(tool.BinPath) {
			seenBins.Add(tool.BinPath)
			searchPath = append(searchPath, tool.BinPath)
		}
	}

	// tools referenced only by expressions are resolved too, but do not
	// extend the search path
	for _, name := range expressionOnlyTools(desc, ordered) {
		tool, err := snap.Lookup(name, nil)
		if err != nil {
			lookupErrs = append(lookupErrs, err)
			continue
		}
		selected[name] = tool
		tools = append(tools, tool)
	}

	if len(lookupErrs) > 0 {
		return nil, errors.Join(lookupErrs...)
	}

	vars, err := evaluate(ordered, selected)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Environment: activation.New(searchPath, vars),
		Tools:       tools,
	}, nil
}

func expressionOnlyTools(desc *envdescriptor.Descriptor, exprs []*expr.Expression) []string {
	declared := stringset.New(desc.Spec.ToolNames()...)
	referenced := lo.Uniq(lo.FlatMap(exprs, func(e *expr.Expression, _ int) []string {
		return e.ToolRefs()
	}))
	extra := lo.Filter(referenced, func(name string, _ int) bool {
		return !declared.Contains(name)
	})
	slices.Sort(extra)
	return extra
}

func evaluate(ordered []*expr.Expression, selected map[string]*catalog.Tool) (map[string]string, error) {
	toolVals := lo.MapValues(selected, func(t *catalog.Tool, _ string) cty.Value {
		return toolValue(t)
	})

	vars := map[string]string{}
	varVals := map[string]cty.Value{}
	for _, e := range ordered {
		value, err := e.Evaluate(expr.NewEvalContext(toolVals, varVals))
		if err != nil {
			return nil, err
		}
		vars[e.Name()] = value
		varVals[e.Name()] = cty.StringVal(value)
	}
	return vars, nil
}

// toolValue exposes a resolved tool to expressions: the builtin attributes
// root, bin and version, plus the tool's named exported paths
func toolValue(t *catalog.Tool) cty.Value {
	attrs := map[string]cty.Value{
		"root":    cty.StringVal(t.RootPath),
		"bin":     cty.StringVal(t.BinPath),
		"version": cty.StringVal(t.Version.String()),
	}
	for name, path := range t.Paths {
		attrs[name] = cty.StringVal(path)
	}
	return cty.ObjectVal(attrs)
}

// Describe renders a one-line summary of a selected tool, for status output
func Describe(t *catalog.Tool) string {
	return fmt.Sprintf("%s %s (%s)", t.Name, t.Version.String(), t.RootPath)
}
