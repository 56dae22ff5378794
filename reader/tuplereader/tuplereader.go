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

// Package tuplereader implements a tuple-iterator reader: a RowReader
// over a pre-materialized sequence of value.Tuple, used by the hybrid
// engine for small in-memory fixtures and tests. It
// accepts FieldPath(name) and one-level FieldPath(a.b) sources and
// promises UntilNext stability.
package tuplereader

import (
	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/value"
)

// Reader iterates over a fixed slice of tuples.
type Reader struct {
	Rows   []*value.Tuple
	layout []reader.Target
	pos    int
}

func New(rows []*value.Tuple) *Reader {
	return &Reader{Rows: rows}
}

func (r *Reader) Caps() reader.Caps {
	return reader.Caps{Stability: reader.UntilNext, CanProject: true, CanReturnOpaque: false}
}

func (r *Reader) SetProjection(layout []reader.Target) error {
	for _, t := range layout {
		if t.Source.Kind != reader.SourceFieldPath && t.Source.Kind != reader.SourceBaseRow {
			return reader.RejectedSource(t.Source.Kind, reader.SourceFieldPath, reader.SourceBaseRow)
		}
		if err := reader.ValidateFieldPath(t.Source); err != nil {
			return err
		}
	}
	r.layout = layout
	return nil
}

func (r *Reader) Open() error  { r.pos = 0; return nil }
func (r *Reader) Close() error { return nil }

func (r *Reader) NextRow(frame reader.RowFrame) (bool, error) {
	if r.pos >= len(r.Rows) {
		return false, nil
	}
	row := r.Rows[r.pos]
	r.pos++
	for slot, t := range r.layout {
		v := resolveSource(row, t.Source)
		frame.SetSlot(slot, v)
	}
	return true, nil
}

func (r *Reader) Resolve(fieldName string) (reader.Source, bool) {
	return reader.ByFieldPath(fieldName), true
}

func resolveSource(row *value.Tuple, s reader.Source) value.Value {
	switch s.Kind {
	case reader.SourceBaseRow:
		return value.TupleVal(row)
	case reader.SourceFieldPath:
		v, ok := row.Get(s.FieldPath[0])
		if !ok {
			return value.Missing()
		}
		if len(s.FieldPath) == 1 {
			return v
		}
		inner, ok := v.AsTuple()
		if !ok {
			return value.Missing()
		}
		nested, ok := inner.Get(s.FieldPath[1])
		if !ok {
			return value.Missing()
		}
		return nested
	default:
		return value.Missing()
	}
}
