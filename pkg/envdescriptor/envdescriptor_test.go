// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package envdescriptor

import (
	"testing"

	"daml.com/x/denv/pkg/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const valid = `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  tools:
    - rustc@^1.75
    - cargo@^1.75
    - rustfmt
    - name: clippy
      version: ">=1.70, <2"
  vars:
    RUST_SRC_PATH: ${tool["rust-src"].root}/lib/rustlib/src/rust/library
    TOOLCHAIN_BIN: ${tool.rustc.bin}
`

func TestReadDescriptorContents(t *testing.T) {
	d, err := ReadDescriptorContents([]byte(valid))
	require.NoError(t, err)

	assert.Equal(t, []string{"rustc", "cargo", "rustfmt", "clippy"}, d.Spec.ToolNames())

	rustc := d.Spec.Tools[0]
	assert.Equal(t, "rustc", rustc.Name)
	require.NotNil(t, rustc.Constraint)
	assert.Equal(t, "rustc@^1.75", rustc.String())

	rustfmt := d.Spec.Tools[2]
	assert.Nil(t, rustfmt.Constraint)
	assert.Equal(t, "rustfmt", rustfmt.String())

	clippy := d.Spec.Tools[3]
	require.NotNil(t, clippy.Constraint)

	require.Len(t, d.Spec.Vars, 2)
	assert.Equal(t, []string{"rust-src"}, d.Spec.Vars["RUST_SRC_PATH"].ToolRefs())
	assert.Equal(t, []string{"rustc"}, d.Spec.Vars["TOOLCHAIN_BIN"].ToolRefs())
}

func TestReadDescriptorContentsVarsOnly(t *testing.T) {
	contents := `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  vars:
    PROFILE: release
`
	d, err := ReadDescriptorContents([]byte(contents))
	require.NoError(t, err)
	assert.Empty(t, d.Spec.Tools)
	assert.Len(t, d.Spec.Vars, 1)
}

func TestReadDescriptorContentsErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		errMsg   string
	}{
		{
			name: "wrong kind",
			contents: `
apiVersion: digitalasset.com/v1
kind: Tool
spec:
  tools: [rustc]
`,
			errMsg: "kind",
		},
		{
			name: "empty spec",
			contents: `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  tools: []
`,
			errMsg: "at least one tool or variable",
		},
		{
			name: "duplicate tool",
			contents: `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  tools: [rustc, rustc@^1.75]
`,
			errMsg: "declared twice",
		},
		{
			name: "bad constraint",
			contents: `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  tools: ["rustc@bananas"]
`,
			errMsg: "invalid version constraint",
		},
		{
			name: "empty constraint",
			contents: `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  tools: ["rustc@"]
`,
			errMsg: "empty version constraint",
		},
		{
			name: "bad variable name",
			contents: `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  vars:
    1BAD: value
`,
			errMsg: "not a valid environment variable name",
		},
		{
			name: "unknown spec field",
			contents: `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  tools: [rustc]
  packages: [rustc]
`,
			errMsg: "unknown field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDescriptorContents([]byte(tt.contents))
			require.ErrorIs(t, err, ErrInvalidDescriptor)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestReadDescriptorContentsRejectsCycles(t *testing.T) {
	contents := `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  vars:
    A: ${var.B}
    B: ${var.A}
`
	_, err := ReadDescriptorContents([]byte(contents))
	var cycleErr *expr.CyclicDerivationError
	require.ErrorAs(t, err, &cycleErr)
}

func TestReadDescriptorContentsRejectsBadExpression(t *testing.T) {
	contents := `
apiVersion: digitalasset.com/v1
kind: Environment
spec:
  vars:
    V: ${env.HOME}
`
	_, err := ReadDescriptorContents([]byte(contents))
	require.ErrorIs(t, err, expr.ErrInvalidExpression)
}
