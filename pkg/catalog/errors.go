// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// UnresolvedToolError indicates that no tool version in the catalog
// satisfies a requirement of the environment descriptor.
type UnresolvedToolError struct {
	Name       string
	Constraint *semver.Constraints
}

func (e *UnresolvedToolError) Error() string {
	if e.Constraint == nil {
		return fmt.Sprintf("no installed version of tool %q", e.Name)
	}
	return fmt.Sprintf("no installed version of tool %q satisfies %q", e.Name, e.Constraint.String())
}

var _ error = (*UnresolvedToolError)(nil)

// CatalogUnavailableError indicates the catalog itself could not be read.
// Distinct from UnresolvedToolError: the requirement may well be satisfiable,
// we just cannot know.
type CatalogUnavailableError struct {
	Cause error
}

func (e *CatalogUnavailableError) Error() string {
	return fmt.Sprintf("tool catalog unavailable: %s", e.Cause.Error())
}

func (e *CatalogUnavailableError) Unwrap() error {
	return e.Cause
}

var _ error = (*CatalogUnavailableError)(nil)
