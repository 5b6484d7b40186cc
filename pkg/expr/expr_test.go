// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParseRefs(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		toolRefs []string
		varRefs  []string
	}{
		{
			name:   "literal",
			source: "release",
		},
		{
			name:     "single tool attribute",
			source:   "${tool.rustc.bin}",
			toolRefs: []string{"rustc"},
		},
		{
			name:     "hyphenated tool name via index",
			source:   `${tool["rust-src"].root}/lib`,
			toolRefs: []string{"rust-src"},
		},
		{
			name:    "variable reference",
			source:  "${var.TOOLCHAIN_ROOT}/lib",
			varRefs: []string{"TOOLCHAIN_ROOT"},
		},
		{
			name:     "mixed, deduplicated and sorted",
			source:   "${tool.rustc.bin}:${tool.cargo.bin}:${tool.rustc.root}:${var.EXTRA}",
			toolRefs: []string{"cargo", "rustc"},
			varRefs:  []string{"EXTRA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse("V", tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.toolRefs, e.ToolRefs())
			assert.Equal(t, tt.varRefs, e.VarRefs())
			assert.Equal(t, tt.source, e.Source())
		})
	}
}

func TestParseRejectsUnknownRoot(t *testing.T) {
	_, err := Parse("V", "${env.HOME}")
	require.ErrorIs(t, err, ErrInvalidExpression)
	assert.Contains(t, err.Error(), `unknown root "env"`)
}

func TestParseRejectsBareRoot(t *testing.T) {
	_, err := Parse("V", "${tool}")
	require.ErrorIs(t, err, ErrInvalidExpression)
}

func TestEvaluate(t *testing.T) {
	e, err := Parse("RUST_SRC_PATH", `${tool["rust-src"].root}/lib/rustlib/src/rust/library`)
	require.NoError(t, err)

	evalCtx := NewEvalContext(map[string]cty.Value{
		"rust-src": cty.ObjectVal(map[string]cty.Value{
			"root":    cty.StringVal("/store/rust-src/1.75.0"),
			"bin":     cty.StringVal("/store/rust-src/1.75.0/bin"),
			"version": cty.StringVal("1.75.0"),
		}),
	}, nil)

	value, err := e.Evaluate(evalCtx)
	require.NoError(t, err)
	assert.Equal(t, "/store/rust-src/1.75.0/lib/rustlib/src/rust/library", value)
}

func TestEvaluateChainsVars(t *testing.T) {
	e, err := Parse("LIB", "${var.ROOT}/lib")
	require.NoError(t, err)

	value, err := e.Evaluate(NewEvalContext(nil, map[string]cty.Value{
		"ROOT": cty.StringVal("/opt/toolchain"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "/opt/toolchain/lib", value)
}

func TestEvaluateMissingToolAttribute(t *testing.T) {
	e, err := Parse("V", "${tool.rustc.src}")
	require.NoError(t, err)

	_, err = e.Evaluate(NewEvalContext(map[string]cty.Value{
		"rustc": cty.ObjectVal(map[string]cty.Value{
			"root": cty.StringVal("/store/rustc/1.75.0"),
		}),
	}, nil))
	require.ErrorIs(t, err, ErrInvalidExpression)
}

func mustParseAll(t *testing.T, sources map[string]string) map[string]*Expression {
	t.Helper()
	exprs := map[string]*Expression{}
	for name, source := range sources {
		e, err := Parse(name, source)
		require.NoError(t, err)
		exprs[name] = e
	}
	return exprs
}

func TestOrder(t *testing.T) {
	exprs := mustParseAll(t, map[string]string{
		"C": "${var.B}/c",
		"B": "${var.A}/b",
		"A": "${tool.rustc.root}",
	})

	ordered, err := Order(exprs)
	require.NoError(t, err)

	names := make([]string, 0, len(ordered))
	for _, e := range ordered {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
}

func TestOrderCycle(t *testing.T) {
	exprs := mustParseAll(t, map[string]string{
		"A": "${var.B}",
		"B": "${var.A}",
	})

	_, err := Order(exprs)
	var cycleErr *CyclicDerivationError
	require.ErrorAs(t, err, &cycleErr)
}

func TestOrderSelfCycle(t *testing.T) {
	exprs := mustParseAll(t, map[string]string{
		"A": "prefix-${var.A}",
	})

	_, err := Order(exprs)
	var cycleErr *CyclicDerivationError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "A", cycleErr.Var)
}

func TestOrderUndefinedReference(t *testing.T) {
	exprs := mustParseAll(t, map[string]string{
		"A": "${var.MISSING}",
	})

	_, err := Order(exprs)
	require.ErrorIs(t, err, ErrInvalidExpression)
	assert.Contains(t, err.Error(), `undefined variable "MISSING"`)
}
