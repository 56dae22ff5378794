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

// Package reader defines the pull-based reader contract consumed by
// the vectorized and hybrid execution engines: batch-oriented readers
// for the vectorized engine, row-oriented readers for the hybrid VM. Concrete
// formats (in-memory generator, tuple iterator, Ion, Arrow, Parquet)
// live in sibling packages and only depend on this one.
package reader

import (
	"fmt"

	"github.com/partiqlgo/execore/value"
	"github.com/partiqlgo/execore/vector"
)

// SourceKind tags a projection source's shape.
type SourceKind uint8

const (
	// SourceColumnIndex is positional, for column-oriented formats
	// (Arrow, Parquet).
	SourceColumnIndex SourceKind = iota
	// SourceFieldPath is a single-level named field, or one level of
	// nesting ("a.b"); deeper nesting is rejected for now.
	SourceFieldPath
	// SourceBaseRow materializes the entire row as a Tuple value.
	SourceBaseRow
)

// Source is one alternative of the projection source grammar.
type Source struct {
	Kind        SourceKind
	ColumnIndex int
	FieldPath   []string // 1 or 2 elements; >2 is a Phase-0 error
}

func ByColumnIndex(i int) Source { return Source{Kind: SourceColumnIndex, ColumnIndex: i} }

// ByFieldPath builds a FieldPath source from dot-separated components.
// At most one level of nesting is currently permitted: len(parts) <= 2.
func ByFieldPath(parts ...string) Source { return Source{Kind: SourceFieldPath, FieldPath: parts} }

func BaseRow() Source { return Source{Kind: SourceBaseRow} }

func (s Source) String() string {
	switch s.Kind {
	case SourceColumnIndex:
		return fmt.Sprintf("ColumnIndex(%d)", s.ColumnIndex)
	case SourceFieldPath:
		out := "FieldPath("
		for i, p := range s.FieldPath {
			if i > 0 {
				out += "."
			}
			out += p
		}
		return out + ")"
	case SourceBaseRow:
		return "BaseRow"
	default:
		return "?"
	}
}

// Target is one entry of a projection spec: map Source to a named
// output column/slot with a declared logical type.
type Target struct {
	Name   string
	Type   vector.LogicalType
	Source Source
}

// ProjectionSpec is the full set of (source -> target) mappings
// negotiated with a reader before the first batch/row is produced.
// For batch-oriented readers the targets become the output
// Batch's Schema, in order.
type ProjectionSpec struct {
	Targets []Target
}

func (p *ProjectionSpec) Schema() *vector.Schema {
	cols := make([]vector.Column, len(p.Targets))
	for i, t := range p.Targets {
		cols[i] = vector.Column{Name: t.Name, Type: t.Type}
	}
	return &vector.Schema{Columns: cols}
}

// Stability is the promise a reader makes about how long borrowed
// slot values remain valid.
type Stability uint8

const (
	// UntilNext means borrowed values are valid only until the next
	// next_row call; the consumer must copy to promote lifetime.
	UntilNext Stability = iota
	// UntilClose permits holding borrows across rows until close.
	UntilClose
)

// Caps describes a row-oriented reader's capabilities.
type Caps struct {
	Stability      Stability
	CanProject     bool
	CanReturnOpaque bool
}

// BatchReader is the contract for batch-oriented engines (vectorized).
type BatchReader interface {
	// SetProjection declares the projection before the first
	// NextBatch call. It must be called at most once.
	SetProjection(spec *ProjectionSpec) error
	// NextBatch returns the next batch conforming to the projection
	// schema, or (nil, nil) at end-of-stream.
	NextBatch() (*vector.Batch, error)
	Close() error
}

// RowReader is the contract for row-oriented engines (hybrid).
type RowReader interface {
	Caps() Caps
	// SetProjection declares target slot ids and sources; layout maps
	// slot id (index into the returned slice) to its Source and
	// logical type.
	SetProjection(layout []Target) error
	Open() error
	Close() error
	// NextRow fills frame's slots (frame is the hybrid engine's *Frame,
	// passed in through the RowFrame interface to avoid an import cycle
	// between reader and engine/hybrid); returns false at end.
	NextRow(frame RowFrame) (bool, error)
	// Resolve translates a binding name into the Source a compiler
	// should use to read it, for readers that can expose that mapping
	// without a full SetProjection round-trip.
	Resolve(fieldName string) (Source, bool)
}

// RowFrame is the minimal interface the reader needs against a hybrid
// engine row frame: set a slot's value by index. engine/hybrid.Frame
// implements this.
type RowFrame interface {
	SetSlot(i int, v value.Value)
	SetSlotRef(i int, ref func() value.Value)
}
