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

// Package arena implements the hybrid row VM's per-row bump arena: a
// reusable slice that the VM resets at the start of every tick and
// that Promote appends deep copies into, so a value borrowed from a
// reader under reader.UntilNext stability survives past the next_row
// call that would otherwise overwrite its backing storage.
package arena

import "github.com/partiqlgo/execore/value"

// Arena holds the values promoted during the current row tick, plus
// whatever capacity was grown on prior ticks; Reset only truncates the
// length so the backing array is reused across rows.
type Arena struct {
	vals []value.Value
}

func New() *Arena { return &Arena{} }

// Reset discards every value promoted during the row tick just
// finished. Called once per Frame.Reset, before the next NextRow.
func (a *Arena) Reset() {
	a.vals = a.vals[:0]
}

// Promote deep-copies v so it remains valid after the reader overwrites
// whatever scratch storage it came from, and keeps the copy alive
// until the next Reset. Values with no pointer-shaped payload (ints,
// bools, reals, strings, datetimes) are already independent Go copies
// and are returned unchanged; only Tuple needs an explicit Clone.
func (a *Arena) Promote(v value.Value) value.Value {
	if t, ok := v.AsTuple(); ok {
		v = value.TupleVal(t.Clone())
	}
	a.vals = append(a.vals, v)
	return v
}

// Len reports how many values are currently held, for tests asserting
// the arena actually grows and shrinks across ticks.
func (a *Arena) Len() int { return len(a.vals) }
