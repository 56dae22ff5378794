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

// Package memreader implements an in-memory generator reader: a
// synthetic two-column (a, b) Int64 source used by benchmark/test
// scenarios and by cmd/execore's -bench mode. It accepts only
// FieldPath("a"|"b") projection sources and promises UntilNext
// stability.
package memreader

import (
	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/vector"
)

// Generator produces one row's worth of (a, b) values given the row's
// ordinal position. The default generator sets a=i, b=i+100.
type Generator func(i int64) (a, b int64)

// LinearGenerator is the default generator used by New when gen is nil.
func LinearGenerator(i int64) (a, b int64) { return i, i + 100 }

// Reader is a BatchReader over a synthetic (a, b) Int64 stream of
// TotalRows rows, delivered BatchSize rows at a time.
type Reader struct {
	TotalRows int64
	BatchSize int
	Gen       Generator

	proj      *reader.ProjectionSpec
	cols      []string // "a" or "b" per projected target, in order
	emitted   int64
}

func New(totalRows int64, batchSize int, gen Generator) *Reader {
	if gen == nil {
		gen = LinearGenerator
	}
	return &Reader{TotalRows: totalRows, BatchSize: batchSize, Gen: gen}
}

var available = []string{"a", "b"}

func (r *Reader) SetProjection(spec *reader.ProjectionSpec) error {
	cols := make([]string, len(spec.Targets))
	for i, t := range spec.Targets {
		if t.Source.Kind != reader.SourceFieldPath || len(t.Source.FieldPath) != 1 {
			return reader.RejectedSource(t.Source.Kind, reader.SourceFieldPath)
		}
		name := t.Source.FieldPath[0]
		if name != "a" && name != "b" {
			return reader.SourceNotFound(name, available)
		}
		if t.Type != vector.Int64 {
			return reader.UnsupportedConversion("int64", t.Type.String())
		}
		cols[i] = name
	}
	r.proj = spec
	r.cols = cols
	return nil
}

func (r *Reader) NextBatch() (*vector.Batch, error) {
	if r.emitted >= r.TotalRows {
		return nil, nil
	}
	n := int64(r.BatchSize)
	if remain := r.TotalRows - r.emitted; remain < n {
		n = remain
	}
	batch := vector.NewBatch(r.proj.Schema(), int(n))
	for ci, name := range r.cols {
		col := batch.Column(ci).Int64()
		for row := int64(0); row < n; row++ {
			a, b := r.Gen(r.emitted + row)
			if name == "a" {
				col.Set(int(row), a)
			} else {
				col.Set(int(row), b)
			}
		}
	}
	r.emitted += n
	return batch, nil
}

func (r *Reader) Close() error { return nil }
