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

package hybrid

import "github.com/partiqlgo/execore/value"

// Frame is the row VM's register-bytecode input: a fixed-width slot
// array a reader.RowReader (or this package's own node operators)
// fills before a compile.Program runs against it. It implements
// reader.RowFrame.
type Frame struct {
	slots []value.Value
	refs  []func() value.Value
}

func NewFrame(numSlots int) *Frame {
	return &Frame{
		slots: make([]value.Value, numSlots),
		refs:  make([]func() value.Value, numSlots),
	}
}

// SetSlot installs an already-materialized value in slot i.
func (f *Frame) SetSlot(i int, v value.Value) {
	f.slots[i] = v
	f.refs[i] = nil
}

// SetSlotRef installs a deferred reference: ref is called the first
// time Slot(i) is read, letting a reader avoid materializing a column
// it turns out no compiled expression touches.
func (f *Frame) SetSlotRef(i int, ref func() value.Value) {
	f.refs[i] = ref
}

// Slot resolves slot i, evaluating a deferred reference if one is
// installed rather than a materialized value.
func (f *Frame) Slot(i int) value.Value {
	if f.refs[i] != nil {
		return f.refs[i]()
	}
	return f.slots[i]
}

// Reset clears every slot ahead of the next row tick, so a value
// a reader borrowed under UntilNext stability is never read stale.
func (f *Frame) Reset() {
	for i := range f.slots {
		f.slots[i] = value.Value{}
		f.refs[i] = nil
	}
}
