// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/samber/lo"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

const (
	// ToolsRoot is the variable root exposing resolved tools to derivation expressions,
	// e.g. ${tool.rustc.bin} or ${tool["rust-src"].root}
	ToolsRoot = "tool"
	// VarsRoot is the variable root exposing previously derived variables,
	// e.g. ${var.TOOLCHAIN_ROOT}/lib
	VarsRoot = "var"
)

var ErrInvalidExpression = fmt.Errorf("invalid derivation expression")

// Expression is a parsed derivation for a single environment variable.
// It is a template over literals, resolved tool attributes and other derived variables.
type Expression struct {
	name     string
	source   string
	template hclsyntax.Expression

	toolRefs []string
	varRefs  []string
}

// Parse parses the derivation expression of the named variable.
// The expression language is an HCL string template; the only variable
// roots allowed are 'tool' and 'var'.
func Parse(name, source string) (*Expression, error) {
	template, diags := hclsyntax.ParseTemplate([]byte(source), name, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: variable %q: %s", ErrInvalidExpression, name, diags.Error())
	}

	e := &Expression{
		name:     name,
		source:   source,
		template: template,
	}

	for _, traversal := range template.Variables() {
		ref, err := referencedName(traversal)
		if err != nil {
			return nil, fmt.Errorf("%w: variable %q: %s", ErrInvalidExpression, name, err.Error())
		}

		switch traversal.RootName() {
		case ToolsRoot:
			e.toolRefs = append(e.toolRefs, ref)
		case VarsRoot:
			e.varRefs = append(e.varRefs, ref)
		default:
			return nil, fmt.Errorf("%w: variable %q references unknown root %q. Must be one of '%s', '%s'",
				ErrInvalidExpression, name, traversal.RootName(), ToolsRoot, VarsRoot)
		}
	}

	e.toolRefs = lo.Uniq(e.toolRefs)
	e.varRefs = lo.Uniq(e.varRefs)
	slices.Sort(e.toolRefs)
	slices.Sort(e.varRefs)
	return e, nil
}

func (e *Expression) Name() string {
	return e.name
}

func (e *Expression) Source() string {
	return e.source
}

// ToolRefs returns the names of the tools this expression reads, sorted
func (e *Expression) ToolRefs() []string {
	return slices.Clone(e.toolRefs)
}

// VarRefs returns the names of the derived variables this expression reads, sorted
func (e *Expression) VarRefs() []string {
	return slices.Clone(e.varRefs)
}

// Evaluate renders the expression to its final string value.
// The eval context must already contain every tool and variable the expression references.
func (e *Expression) Evaluate(evalCtx *hcl.EvalContext) (string, error) {
	v, diags := e.template.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("%w: variable %q: %s", ErrInvalidExpression, e.name, diags.Error())
	}

	converted, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("%w: variable %q does not produce a string: %s", ErrInvalidExpression, e.name, err.Error())
	}
	return converted.AsString(), nil
}

// NewEvalContext builds the evaluation context exposing resolved tools and
// already-derived variables under the 'tool' and 'var' roots
func NewEvalContext(tools, vars map[string]cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			ToolsRoot: objectOrEmpty(tools),
			VarsRoot:  objectOrEmpty(vars),
		},
	}
}

func objectOrEmpty(attrs map[string]cty.Value) cty.Value {
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// referencedName extracts the second traversal step, i.e. the tool or
// variable name in 'tool.<name>...' / 'var.<NAME>'. Names that aren't valid
// HCL identifiers (e.g. "rust-src") use the index form: tool["rust-src"]
func referencedName(traversal hcl.Traversal) (string, error) {
	if len(traversal) < 2 {
		return "", fmt.Errorf("reference %q is missing a name. expected e.g. '%s.<name>'", traversal.RootName(), traversal.RootName())
	}

	switch step := traversal[1].(type) {
	case hcl.TraverseAttr:
		return step.Name, nil
	case hcl.TraverseIndex:
		if step.Key.Type() != cty.String {
			return "", fmt.Errorf("reference under %q must be indexed by a string", traversal.RootName())
		}
		return step.Key.AsString(), nil
	default:
		return "", fmt.Errorf("unsupported reference under %q", traversal.RootName())
	}
}
