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

package legacy

import "github.com/partiqlgo/execore/value"

// tupleBindings adapts one row tuple — the output of Scan, Project or
// Join — to the value.Bindings interface the Env stack resolves names
// against.
type tupleBindings struct{ t *value.Tuple }

func (b tupleBindings) Get(n value.BindingsName) (value.Value, bool) {
	if n.CaseSensitive {
		return b.t.GetCase(n.Name)
	}
	return b.t.Get(n.Name)
}

// pushRow binds row's tuple as the innermost frame of env, the scope a
// row's own Filter/Project/Join-on expressions evaluate against.
func pushRow(env *value.Env, row value.Value) *value.Env {
	t, _ := row.AsTuple()
	return env.Push(tupleBindings{t})
}

// wrapCollection re-collects items as a List (if ordered) or Bag,
// preserving the input collection kind the way Project's ordering rule
// requires.
func wrapCollection(ordered bool, items []value.Value) value.Value {
	if ordered {
		return value.List(items)
	}
	return value.Bag(items)
}

// rows unwraps a collection Value into its elements plus its
// orderedness; any non-collection Value is a fatal scheduling error,
// since every Scan/Filter/Project/... edge in the DAG carries rows.
func rows(v value.Value) ([]value.Value, bool, error) {
	elems, ok := v.Elements()
	if !ok {
		return nil, false, fatalEval("expected a collection of rows, got kind=%v", v.Kind())
	}
	return elems, v.IsOrdered(), nil
}
