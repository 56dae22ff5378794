// Copyright (C) 2024 PartiQL-Go Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package compile turns a checked expression tree into one of two
// execution targets: a vector-op stream for the vectorized engine, or
// register bytecode for the hybrid row VM. Both targets share the
// same argument-check wrapper so a builtin's Missing/Null propagation
// policy and shape constraints are declared once and honored by
// either compiler.
package compile

import (
	"fmt"

	"github.com/partiqlgo/execore/value"
)

// NullPolicy controls how an argument-check wrapper reacts to a
// Missing or Null argument value before the wrapped operation ever
// runs.
type NullPolicy int

const (
	// PropagateMissing returns Missing immediately if any argument is
	// Missing, without invoking the wrapped operation.
	PropagateMissing NullPolicy = iota
	// PropagateNull returns Null immediately if any argument is Null
	// (after the PropagateMissing check has already passed).
	PropagateNull
	// RejectMissing turns off Missing/Null propagation for the argument:
	// an absent value is neither propagated nor checked against Shape,
	// and reaches the wrapped operation as data; used by operators
	// (e.g. COALESCE) that must observe Missing and Null rather than
	// short-circuit on them.
	RejectMissing
)

// ArgSpec declares the expected shape and null-handling policy for one
// argument position of a builtin or operator.
type ArgSpec struct {
	Shape    value.Shape
	Policies []NullPolicy // applied in order; defaults to [PropagateMissing, PropagateNull]
}

func defaultPolicies() []NullPolicy {
	return []NullPolicy{PropagateMissing, PropagateNull}
}

// Check declares the full argument-check contract for an operator:
// one ArgSpec per fixed argument, plus an optional Variadic spec
// applied to every argument beyond the fixed ones.
type Check struct {
	Args     []ArgSpec
	Variadic *ArgSpec
	Strict   bool // strict mode: a shape violation is a hard error, not Missing
}

// ArgCheckError is returned in strict mode when an argument does not
// satisfy its declared shape.
type ArgCheckError struct {
	Index int
	Got   value.Value
}

func (e *ArgCheckError) Error() string {
	return fmt.Sprintf("argument %d has unexpected type (kind=%v)", e.Index, e.Got.Kind())
}

// Outcome is the result of running an argument check: either the
// check short-circuited to a terminal value (Missing/Null/error), or
// every argument passed and the wrapped operation should run.
type Outcome struct {
	// Short, if true, means Value (or Err in strict mode) is the
	// final result and the wrapped operation must not run.
	Short bool
	Value value.Value
	Err   error
}

// Apply runs the declared argument check over args, following each
// ArgSpec's policy list and then its Shape. It never evaluates the
// wrapped operation itself — callers invoke that only when
// Outcome.Short is false.
func (c *Check) Apply(args []value.Value) Outcome {
	// Missing dominates Null across the whole call: every Missing
	// argument is consulted before a Null in any position.
	for i, a := range args {
		spec := c.specFor(i)
		if spec == nil || !a.IsMissing() {
			continue
		}
		policies := spec.Policies
		if policies == nil {
			policies = defaultPolicies()
		}
		if out, ok := applyPolicies(policies, a); ok {
			return out
		}
	}
	for i, a := range args {
		spec := c.specFor(i)
		if spec == nil {
			continue
		}
		policies := spec.Policies
		if policies == nil {
			policies = defaultPolicies()
		}
		if out, ok := applyPolicies(policies, a); ok {
			return out
		}
		observesAbsent := false
		for _, p := range policies {
			observesAbsent = observesAbsent || p == RejectMissing
		}
		if observesAbsent && a.IsAbsent() {
			continue
		}
		if !spec.Shape.Subsumes(a) {
			if c.Strict {
				return Outcome{Short: true, Err: &ArgCheckError{Index: i, Got: a}}
			}
			return Outcome{Short: true, Value: value.Missing()}
		}
	}
	return Outcome{}
}

func applyPolicies(policies []NullPolicy, a value.Value) (Outcome, bool) {
	for _, p := range policies {
		switch p {
		case PropagateMissing:
			if a.IsMissing() {
				return Outcome{Short: true, Value: value.Missing()}, true
			}
		case PropagateNull:
			if a.IsNull() {
				return Outcome{Short: true, Value: value.Null()}, true
			}
		case RejectMissing:
			// no short-circuit here: Apply passes the absent value through
		}
	}
	return Outcome{}, false
}

func (c *Check) specFor(i int) *ArgSpec {
	if i < len(c.Args) {
		return &c.Args[i]
	}
	return c.Variadic
}

// Fixed builds a Check for an operator with exactly len(shapes) fixed
// arguments, each using the default Missing/Null propagation policy.
func Fixed(shapes ...value.Shape) *Check {
	args := make([]ArgSpec, len(shapes))
	for i, s := range shapes {
		args[i] = ArgSpec{Shape: s}
	}
	return &Check{Args: args}
}

// Variadic builds a Check where every argument is checked against the
// same shape.
func Variadic(shape value.Shape) *Check {
	return &Check{Variadic: &ArgSpec{Shape: shape}}
}
