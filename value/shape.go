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

package value

// Shape is a declared expected runtime shape for a value. It is the
// vocabulary the argument-check wrapper (compile.Check) uses to
// decide whether an evaluated argument is acceptable: a richer shape
// union over the plainer scalar-tag checks an earlier evaluator used.
type Shape struct {
	kinds []Kind // empty means "any kind"
	anyOf []Shape
}

// AnyKind accepts any runtime value except Null and Missing.
func AnyKind() Shape { return Shape{} }

// OfKind accepts exactly the listed Kinds.
func OfKind(ks ...Kind) Shape { return Shape{kinds: ks} }

// Numeric accepts Int, Real or Decimal.
func Numeric() Shape { return OfKind(KindInt, KindReal, KindDecimal) }

// AnyOf builds a shape that subsumes by any-match over its
// alternatives, mirroring PartiQL's AnyOf shape union.
func AnyOf(shapes ...Shape) Shape { return Shape{anyOf: shapes} }

// Subsumes reports whether v satisfies shape s. Null and Missing never
// satisfy a concrete shape; callers route them through the
// propagate-null/propagate-missing policy before reaching Subsumes.
func (s Shape) Subsumes(v Value) bool {
	if len(s.anyOf) > 0 {
		for _, alt := range s.anyOf {
			if alt.Subsumes(v) {
				return true
			}
		}
		return false
	}
	if len(s.kinds) == 0 {
		return !v.IsAbsent()
	}
	for _, k := range s.kinds {
		if v.Kind() == k {
			return true
		}
	}
	return false
}
