// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package toolmanifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"daml.com/x/denv/pkg/schema"
	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

var ErrInvalidToolManifest = fmt.Errorf("invalid tool manifest")
var ErrMissingToolField = fmt.Errorf("%w: a required field is missing", ErrInvalidToolManifest)

const (
	ToolKind          = "Tool"
	ToolSchemaVersion = "v1"
	ToolAPIVersion    = schema.APIGroup + "/" + ToolSchemaVersion
)

// attribute names implicitly exposed to derivation expressions for every tool
var reservedPathNames = []string{"root", "bin", "version"}

type ToolManifest struct {
	schema.ManifestMeta `yaml:",inline"`
	Spec                *Spec `yaml:"spec"`
}

type Spec struct {
	Name    string  `yaml:"name"`
	Version *SemVer `yaml:"version"`

	// Bin is the directory containing the tool's executables, relative to the install root
	Bin string `yaml:"bin"`

	// Paths are named paths exported to derivation expressions,
	// relative to the install root. e.g. src: lib/rustlib/src/rust/library
	Paths map[string]string `yaml:"paths"`

	Desc *string `yaml:"desc"`
}

func (s *Spec) UnmarshalYAML(data []byte) error {
	type Alias Spec
	alias := Alias{}
	if err := yaml.UnmarshalWithOptions(data, &alias, yaml.Strict()); err != nil {
		return fmt.Errorf("failed to unmarshal Spec: %w", err)
	}

	if alias.Name == "" {
		return fmt.Errorf("%w: 'name'", ErrMissingToolField)
	}
	if alias.Version == nil {
		return fmt.Errorf("%w: 'version'", ErrMissingToolField)
	}
	if alias.Bin == "" {
		return fmt.Errorf("%w: 'bin'", ErrMissingToolField)
	}

	for k := range alias.Paths {
		if lo.Contains(reservedPathNames, k) {
			return fmt.Errorf("%w: path name %q is reserved", ErrInvalidToolManifest, k)
		}
	}

	*s = Spec(alias)
	return nil
}

type SemVer semver.Version

func NewSemVer(v *semver.Version) *SemVer {
	s := SemVer(*v)
	return &s
}

func (v *SemVer) Value() semver.Version {
	return (semver.Version)(*v)
}

func (v *SemVer) UnmarshalYAML(data []byte) error {
	var versionStr string
	if err := yaml.Unmarshal(data, &versionStr); err != nil {
		return fmt.Errorf("failed to unmarshal 'version': %w", err)
	}
	parsedVersion, err := semver.NewVersion(versionStr)
	if err != nil {
		return fmt.Errorf("invalid semantic version: %w", err)
	}
	*v = SemVer(*parsedVersion)
	return nil
}

func (v *SemVer) MarshalYAML() ([]byte, error) {
	return []byte(v.Value().String()), nil
}

var _ yaml.BytesUnmarshaler = (*SemVer)(nil)
var _ yaml.BytesMarshaler = (*SemVer)(nil)
var _ yaml.BytesUnmarshaler = (*Spec)(nil)

func ReadToolManifest(filePath string) (*ToolManifest, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	bytes, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return ReadToolManifestContents(bytes)
}

func ReadToolManifestContents(contents []byte) (*ToolManifest, error) {
	var m ToolManifest
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return nil, errors.Join(ErrInvalidToolManifest, err)
	}

	s := schema.Meta(ToolKind, ToolSchemaVersion)
	if err := s.ValidateSchema(m.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToolManifest, err.Error())
	}

	if m.Spec == nil {
		return nil, fmt.Errorf("%w: 'spec'", ErrMissingToolField)
	}

	return &m, nil
}
