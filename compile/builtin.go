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

package compile

import "github.com/partiqlgo/execore/value"

// BuiltinFn evaluates a builtin or user-defined function over already
// argument-checked values.
type BuiltinFn func(args []value.Value) (value.Value, error)

// Builtin bundles one function's argument-check contract with its
// evaluator, the unit the argument-check wrapper applies uniformly
// regardless of which engine ultimately calls it.
type Builtin struct {
	Name  string
	Check *Check
	Eval  BuiltinFn
}

// Builtins is a name-addressed lookup table of registered functions,
// shared by the legacy and hybrid engines so a function behaves
// identically in either. The vectorized engine does not call
// functions: the vector-op target rejects function-call expressions.
type Builtins struct {
	fns map[string]*Builtin
}

func NewBuiltins() *Builtins {
	return &Builtins{fns: make(map[string]*Builtin)}
}

// Has implements Registry for the bytecode compiler's UDF-existence
// check.
func (b *Builtins) Has(name string) bool {
	_, ok := b.fns[name]
	return ok
}

func (b *Builtins) Register(fn *Builtin) {
	b.fns[fn.Name] = fn
}

func (b *Builtins) Lookup(name string) (*Builtin, bool) {
	fn, ok := b.fns[name]
	return fn, ok
}

// Call runs the argument-check wrapper for name, then its evaluator,
// in one step. Used by the legacy tuple-at-a-time engine, which does
// not pre-compile a vector-op or bytecode program.
func (b *Builtins) Call(name string, args []value.Value) (value.Value, error) {
	fn, ok := b.fns[name]
	if !ok {
		return value.Value{}, &ArgCheckError{Index: -1, Got: value.Missing()}
	}
	if out := fn.Check.Apply(args); out.Short {
		if out.Err != nil {
			return value.Value{}, out.Err
		}
		return out.Value, nil
	}
	return fn.Eval(args)
}

// StandardBuiltins returns the builtin registry the legacy and hybrid
// engines share by default: a small set of scalar functions exercising the
// argument-check wrapper against both numeric and string shapes.
func StandardBuiltins() *Builtins {
	b := NewBuiltins()

	b.Register(&Builtin{
		Name:  "ABS",
		Check: Fixed(value.Numeric()),
		Eval: func(args []value.Value) (value.Value, error) {
			v := args[0]
			if i, ok := v.AsInt(); ok {
				if i < 0 {
					i = -i
				}
				return value.Int(i), nil
			}
			if f, ok := v.AsReal(); ok {
				if f < 0 {
					f = -f
				}
				return value.Real(f), nil
			}
			return value.Missing(), nil
		},
	})

	b.Register(&Builtin{
		Name:  "UPPER",
		Check: Fixed(value.OfKind(value.KindString)),
		Eval: func(args []value.Value) (value.Value, error) {
			s, _ := args[0].AsString()
			return value.String(toUpperASCII(s)), nil
		},
	})

	b.Register(&Builtin{
		Name:  "LOWER",
		Check: Fixed(value.OfKind(value.KindString)),
		Eval: func(args []value.Value) (value.Value, error) {
			s, _ := args[0].AsString()
			return value.String(toLowerASCII(s)), nil
		},
	})

	b.Register(&Builtin{
		Name:  "COALESCE",
		Check: &Check{Variadic: &ArgSpec{Shape: value.AnyKind(), Policies: []NullPolicy{RejectMissing}}},
		Eval: func(args []value.Value) (value.Value, error) {
			for _, a := range args {
				if !a.IsMissing() && !a.IsNull() {
					return a, nil
				}
			}
			return value.Null(), nil
		},
	})

	return b
}

func toUpperASCII(s string) string {
	out := []byte(s)
	for i, c := range out {
		if 'a' <= c && c <= 'z' {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}

func toLowerASCII(s string) string {
	out := []byte(s)
	for i, c := range out {
		if 'A' <= c && c <= 'Z' {
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}
