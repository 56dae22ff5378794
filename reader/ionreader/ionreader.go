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

// Package ionreader implements an Ion text/binary reader, reading
// through the ecosystem github.com/amazon-ion/ion-go decoder. Each
// top-level struct is one row; a top-level *stream* of multiple
// values is treated as a Bag. Only single-level FieldPath sources are
// accepted for now; scalar types are Int64, Float64, Bool, String and
// Null.
package ionreader

import (
	"bytes"

	ion "github.com/amazon-ion/ion-go/ion"

	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/value"
)

// Reader is a RowReader over an Ion text or binary byte stream.
type Reader struct {
	data   []byte
	ir     ion.Reader
	layout []reader.Target
}

func New(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Caps() reader.Caps {
	return reader.Caps{Stability: reader.UntilNext, CanProject: true, CanReturnOpaque: true}
}

func (r *Reader) SetProjection(layout []reader.Target) error {
	for _, t := range layout {
		if t.Source.Kind != reader.SourceFieldPath && t.Source.Kind != reader.SourceBaseRow {
			return reader.RejectedSource(t.Source.Kind, reader.SourceFieldPath, reader.SourceBaseRow)
		}
		if t.Source.Kind == reader.SourceFieldPath && len(t.Source.FieldPath) != 1 {
			return reader.DeepNesting(t.Source.FieldPath)
		}
	}
	r.layout = layout
	return nil
}

func (r *Reader) Open() error {
	r.ir = ion.NewReader(bytes.NewReader(r.data))
	return nil
}

func (r *Reader) Close() error { return nil }

// NextRow advances to the next top-level Ion struct and fills frame's
// slots according to the negotiated layout. Per-value decode failures
// are recoverable: the field is set to Missing and decoding continues
// with the next field.
func (r *Reader) NextRow(frame reader.RowFrame) (bool, error) {
	if !r.ir.Next() {
		if err := r.ir.Err(); err != nil {
			return false, reader.AccessFailed("ion stream", err)
		}
		return false, nil
	}
	if r.ir.Type() != ion.StructType {
		return false, reader.CorruptedData("ion stream", "top-level value", "expected a struct row")
	}

	fields := make(map[string]value.Value, len(r.layout))
	if err := r.ir.StepIn(); err != nil {
		return false, reader.AccessFailed("ion struct", err)
	}
	for r.ir.Next() {
		name, err := r.ir.FieldName()
		if err != nil || name == nil {
			continue
		}
		fields[name.Text.String()] = decodeScalar(r.ir)
	}
	if err := r.ir.StepOut(); err != nil {
		return false, reader.AccessFailed("ion struct", err)
	}

	for slot, t := range r.layout {
		switch t.Source.Kind {
		case reader.SourceBaseRow:
			tup := value.NewTuple()
			for k, v := range fields {
				tup.Set(k, v)
			}
			frame.SetSlot(slot, value.TupleVal(tup))
		case reader.SourceFieldPath:
			v, ok := fields[t.Source.FieldPath[0]]
			if !ok {
				v = value.Missing()
			}
			frame.SetSlot(slot, v)
		}
	}
	return true, nil
}

func (r *Reader) Resolve(fieldName string) (reader.Source, bool) {
	return reader.ByFieldPath(fieldName), true
}

// decodeScalar converts the Ion value the reader currently sits on
// into a scalar value.Value, mapping Ion null to value.Null and any
// decode error to value.Missing (a recoverable per-field failure).
func decodeScalar(ir ion.Reader) value.Value {
	if ir.IsNull() {
		return value.Null()
	}
	switch ir.Type() {
	case ion.BoolType:
		b, err := ir.BoolValue()
		if err != nil || b == nil {
			return value.Missing()
		}
		return value.Bool(*b)
	case ion.IntType:
		i, err := ir.Int64Value()
		if err != nil || i == nil {
			return value.Missing()
		}
		return value.Int(*i)
	case ion.FloatType:
		f, err := ir.FloatValue()
		if err != nil || f == nil {
			return value.Missing()
		}
		return value.Real(*f)
	case ion.StringType, ion.SymbolType:
		s, err := ir.StringValue()
		if err != nil || s == nil {
			return value.Missing()
		}
		return value.String(*s)
	default:
		return value.Missing()
	}
}
