// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package envdescriptor reads and validates denv.yaml, the declarative
// description of a development environment: the tools it needs and the
// environment variables derived from them.
package envdescriptor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"daml.com/x/denv/pkg/expr"
	"daml.com/x/denv/pkg/schema"
	"daml.com/x/denv/pkg/utils"
	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

var ErrInvalidDescriptor = fmt.Errorf("invalid environment descriptor")
var ErrMissingDescriptorField = fmt.Errorf("%w: a required field is missing", ErrInvalidDescriptor)

const (
	EnvironmentKind          = "Environment"
	EnvironmentSchemaVersion = "v1"
	EnvironmentAPIVersion    = schema.APIGroup + "/" + EnvironmentSchemaVersion
)

type Descriptor struct {
	schema.ManifestMeta `yaml:",inline"`
	Spec                *Spec `yaml:"spec"`
}

type Spec struct {
	// Tools in declaration order. Order decides precedence on the search path.
	Tools []*ToolReference

	// Vars maps environment variable names to their parsed derivation expressions
	Vars map[string]*expr.Expression
}

func (s *Spec) UnmarshalYAML(data []byte) error {
	raw := struct {
		Tools []*ToolReference  `yaml:"tools"`
		Vars  map[string]string `yaml:"vars"`
	}{}
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.Strict()); err != nil {
		return fmt.Errorf("failed to unmarshal Spec: %w", err)
	}

	if len(raw.Tools) == 0 && len(raw.Vars) == 0 {
		return fmt.Errorf("%w: an environment must declare at least one tool or variable", ErrInvalidDescriptor)
	}

	seen := map[string]bool{}
	for _, tool := range raw.Tools {
		if seen[tool.Name] {
			return fmt.Errorf("%w: tool %q is declared twice", ErrInvalidDescriptor, tool.Name)
		}
		seen[tool.Name] = true
	}

	vars := make(map[string]*expr.Expression, len(raw.Vars))
	for name, source := range raw.Vars {
		if !utils.IsValidEnvVarIdentifier(name) {
			return fmt.Errorf("%w: %q is not a valid environment variable name", ErrInvalidDescriptor, name)
		}
		parsed, err := expr.Parse(name, source)
		if err != nil {
			return err
		}
		vars[name] = parsed
	}

	s.Tools = raw.Tools
	s.Vars = vars
	return nil
}

// ToolNames returns the declared tool names in declaration order
func (s *Spec) ToolNames() []string {
	return lo.Map(s.Tools, func(t *ToolReference, _ int) string {
		return t.Name
	})
}

// ToolReference is one entry of the descriptor's tool list. It accepts the
// scalar shorthand "name" or "name@constraint", and the mapping form with
// explicit 'name' and 'version' keys.
type ToolReference struct {
	Name string

	// Constraint is nil when the reference accepts any version
	Constraint *semver.Constraints

	// constraint source, kept for display
	constraintStr string
}

func (t *ToolReference) UnmarshalYAML(data []byte) error {
	var shorthand string
	if err := yaml.Unmarshal(data, &shorthand); err == nil {
		return t.fromParts(strings.Cut(shorthand, "@"))
	}

	mapping := struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	}{}
	if err := yaml.UnmarshalWithOptions(data, &mapping, yaml.Strict()); err != nil {
		return fmt.Errorf("failed to unmarshal tool reference: %w", err)
	}
	return t.fromParts(mapping.Name, mapping.Version, mapping.Version != "")
}

func (t *ToolReference) fromParts(name, constraint string, hasConstraint bool) error {
	if name == "" {
		return fmt.Errorf("%w: tool reference: 'name'", ErrMissingDescriptorField)
	}
	if hasConstraint && constraint == "" {
		return fmt.Errorf("%w: tool %q has an empty version constraint", ErrInvalidDescriptor, name)
	}

	t.Name = name
	if hasConstraint {
		parsed, err := semver.NewConstraint(constraint)
		if err != nil {
			return fmt.Errorf("%w: tool %q: invalid version constraint %q: %s",
				ErrInvalidDescriptor, name, constraint, err.Error())
		}
		t.Constraint = parsed
		t.constraintStr = constraint
	}
	return nil
}

func (t *ToolReference) String() string {
	if t.Constraint == nil {
		return t.Name
	}
	return t.Name + "@" + t.constraintStr
}

var _ yaml.BytesUnmarshaler = (*ToolReference)(nil)
var _ yaml.BytesUnmarshaler = (*Spec)(nil)

func ReadDescriptor(filePath string) (*Descriptor, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	bytes, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return ReadDescriptorContents(bytes)
}

func ReadDescriptorContents(contents []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(contents, &d); err != nil {
		return nil, errors.Join(ErrInvalidDescriptor, err)
	}

	s := schema.Meta(EnvironmentKind, EnvironmentSchemaVersion)
	if err := s.ValidateSchema(d.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDescriptor, err.Error())
	}

	if d.Spec == nil {
		return nil, fmt.Errorf("%w: 'spec'", ErrMissingDescriptorField)
	}

	// reject cycles and dangling variable references up front
	if _, err := expr.Order(d.Spec.Vars); err != nil {
		return nil, err
	}

	return &d, nil
}
