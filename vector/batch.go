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

package vector

import "fmt"

// Column is one (name, logical_type) entry of a Schema.
type Column struct {
	Name string
	Type LogicalType
}

// Schema is the ordered sequence of (name, logical_type) describing a
// Batch's columns. A Schema is immutable for a given batch;
// producing a projected batch produces a new Schema.
type Schema struct {
	Columns []Column
}

func NewSchema(cols ...Column) *Schema {
	return &Schema{Columns: cols}
}

func (s *Schema) IndexOf(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (s *Schema) String() string {
	out := "("
	for i, c := range s.Columns {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s:%s", c.Name, c.Type)
	}
	return out + ")"
}

// Batch is (schema, row_count, optional selection_vector, columns).
// Every column has length >= RowCount; only the first RowCount
// entries are valid.
type Batch struct {
	Schema    *Schema
	RowCount  int
	Selection []int // sorted indices in [0, RowCount); nil means "all rows"
	Columns   []PhysicalVector
}

// NewBatch constructs a batch of the given schema and row count with
// freshly owned, zero-valued columns.
func NewBatch(schema *Schema, rowCount int) *Batch {
	cols := make([]PhysicalVector, len(schema.Columns))
	for i, c := range schema.Columns {
		switch c.Type {
		case Int64:
			cols[i] = FromInt64(Owned(make([]int64, rowCount)))
		case Float64:
			cols[i] = FromFloat64(Owned(make([]float64, rowCount)))
		case Boolean:
			cols[i] = FromBool(Owned(make([]bool, rowCount)))
		case String:
			cols[i] = FromString(Owned(make([]string, rowCount)))
		}
	}
	return &Batch{Schema: schema, RowCount: rowCount, Columns: cols}
}

// Column returns column i's physical vector. Panics if i is out of
// range; callers resolve names to indices via Schema.IndexOf first.
func (b *Batch) Column(i int) PhysicalVector { return b.Columns[i] }

// SetSelection installs a selection vector: idx must be sorted and
// every index must be in [0, RowCount); passing nil restores "all
// rows".
func (b *Batch) SetSelection(idx []int) error {
	prev := -1
	for _, i := range idx {
		if i < prev || i < 0 || i >= b.RowCount {
			return fmt.Errorf("vector: selection vector not sorted or out of range")
		}
		prev = i
	}
	b.Selection = idx
	return nil
}

// Selected returns the indices downstream operators should iterate:
// the installed selection vector, or 0..RowCount if none is present.
func (b *Batch) Selected() []int {
	if b.Selection != nil {
		return b.Selection
	}
	all := make([]int, b.RowCount)
	for i := range all {
		all[i] = i
	}
	return all
}

// SelectedCount returns len(Selected()) without allocating the
// identity slice when no selection vector is installed.
func (b *Batch) SelectedCount() int {
	if b.Selection != nil {
		return len(b.Selection)
	}
	return b.RowCount
}

// Valid checks that every column has length >= RowCount, and that any
// selection vector is sorted and in range.
func (b *Batch) Valid() error {
	for i, col := range b.Columns {
		if col.Len() < b.RowCount {
			return fmt.Errorf("vector: column %d length %d < row count %d", i, col.Len(), b.RowCount)
		}
	}
	prev := -1
	for _, idx := range b.Selection {
		if idx < 0 || idx >= b.RowCount || idx < prev {
			return fmt.Errorf("vector: invalid selection vector entry %d", idx)
		}
		prev = idx
	}
	return nil
}

// Project produces a new batch with a fresh schema containing the
// listed source columns by name, possibly aliasing their buffers
// (when the projection is identity) rather than copying.
func (b *Batch) Project(aliases []string, sources []string) (*Batch, error) {
	cols := make([]Column, len(sources))
	phys := make([]PhysicalVector, len(sources))
	for i, name := range sources {
		idx := b.Schema.IndexOf(name)
		if idx < 0 {
			return nil, fmt.Errorf("vector: no such column %q", name)
		}
		cols[i] = Column{Name: aliases[i], Type: b.Schema.Columns[idx].Type}
		phys[i] = b.Columns[idx].Shared()
	}
	return &Batch{
		Schema:    &Schema{Columns: cols},
		RowCount:  b.RowCount,
		Selection: b.Selection,
		Columns:   phys,
	}, nil
}
