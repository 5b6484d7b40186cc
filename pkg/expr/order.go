// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// CyclicDerivationError reports a reference cycle among derived variables.
// Raised during descriptor validation, before any tool is looked up.
type CyclicDerivationError struct {
	Var string
}

func (e *CyclicDerivationError) Error() string {
	return fmt.Sprintf("cyclic derivation involving variable %q", e.Var)
}

var _ error = (*CyclicDerivationError)(nil)

// Order returns the expressions in an evaluation order where every derived
// variable is computed before any expression that reads it. The order is
// deterministic for a given input set.
func Order(exprs map[string]*Expression) ([]*Expression, error) {
	names := lo.Keys(exprs)
	slices.Sort(names)

	// depth-first walk with in-progress marking for cycle detection
	permanent := map[string]bool{}
	inProgress := map[string]bool{}
	var ordered []*Expression

	var visit func(name string) error
	visit = func(name string) error {
		if permanent[name] {
			return nil
		}
		if inProgress[name] {
			return &CyclicDerivationError{Var: name}
		}
		inProgress[name] = true

		for _, dep := range exprs[name].VarRefs() {
			if _, ok := exprs[dep]; !ok {
				return fmt.Errorf("%w: variable %q references undefined variable %q", ErrInvalidExpression, name, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		delete(inProgress, name)
		permanent[name] = true
		ordered = append(ordered, exprs[name])
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return ordered, nil
}
