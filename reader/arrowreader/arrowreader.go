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

// Package arrowreader implements an Arrow IPC stream reader using
// github.com/apache/arrow-go/v18. It accepts only ColumnIndex
// projection sources and promises UntilClose stability: borrowed
// string data stays valid until Close because the underlying Arrow
// record batches are themselves immutable, reference-counted buffers
// (the same ownership model as vector.Owned).
package arrowreader

import (
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/vector"
)

// Reader is a BatchReader over an Arrow IPC stream.
type Reader struct {
	src  io.Reader
	ipcr *ipc.Reader
	proj *reader.ProjectionSpec
	cols []int // source column index per projected target, in order
}

func New(src io.Reader) *Reader {
	return &Reader{src: src}
}

func (r *Reader) SetProjection(spec *reader.ProjectionSpec) error {
	cols := make([]int, len(spec.Targets))
	for i, t := range spec.Targets {
		if t.Source.Kind != reader.SourceColumnIndex {
			return reader.RejectedSource(t.Source.Kind, reader.SourceColumnIndex)
		}
		cols[i] = t.Source.ColumnIndex
	}
	r.proj = spec
	r.cols = cols
	return nil
}

func (r *Reader) open() error {
	if r.ipcr != nil {
		return nil
	}
	ipcr, err := ipc.NewReader(r.src)
	if err != nil {
		return reader.AccessFailed("arrow ipc stream", err)
	}
	r.ipcr = ipcr
	return nil
}

// NextBatch reads the next Arrow record batch and converts only the
// projected columns: unselected Arrow columns are never decoded into
// a PhysicalVector at all.
func (r *Reader) NextBatch() (*vector.Batch, error) {
	if err := r.open(); err != nil {
		return nil, err
	}
	if !r.ipcr.Next() {
		if err := r.ipcr.Err(); err != nil && err != io.EOF {
			return nil, reader.AccessFailed("arrow record batch", err)
		}
		return nil, nil
	}
	rec := r.ipcr.Record()
	n := int(rec.NumRows())
	schema := r.proj.Schema()
	batch := vector.NewBatch(schema, n)
	for i, srcIdx := range r.cols {
		if srcIdx < 0 || srcIdx >= int(rec.NumCols()) {
			return nil, reader.SourceNotFound(schema.Columns[i].Name, arrowColumnNames(rec))
		}
		col := rec.Column(srcIdx)
		if err := convertColumn(col, schema.Columns[i].Type, batch, i); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

func arrowColumnNames(rec arrow.Record) []string {
	names := make([]string, rec.NumCols())
	for i, f := range rec.Schema().Fields() {
		names[i] = f.Name
	}
	return names
}

func convertColumn(col arrow.Array, want vector.LogicalType, batch *vector.Batch, dstIdx int) error {
	n := col.Len()
	switch want {
	case vector.Int64:
		a, ok := col.(*array.Int64)
		if !ok {
			return reader.UnsupportedConversion(col.DataType().Name(), "int64")
		}
		dst := batch.Column(dstIdx).Int64()
		for i := 0; i < n; i++ {
			dst.Set(i, a.Value(i))
		}
	case vector.Float64:
		a, ok := col.(*array.Float64)
		if !ok {
			return reader.UnsupportedConversion(col.DataType().Name(), "float64")
		}
		dst := batch.Column(dstIdx).Float64()
		for i := 0; i < n; i++ {
			dst.Set(i, a.Value(i))
		}
	case vector.Boolean:
		a, ok := col.(*array.Boolean)
		if !ok {
			return reader.UnsupportedConversion(col.DataType().Name(), "boolean")
		}
		dst := batch.Column(dstIdx).Bool()
		for i := 0; i < n; i++ {
			dst.Set(i, a.Value(i))
		}
	case vector.String:
		dst := batch.Column(dstIdx).String()
		switch a := col.(type) {
		case *array.String:
			for i := 0; i < n; i++ {
				dst.Set(i, a.Value(i))
			}
		case *array.Int64:
			for i := 0; i < n; i++ {
				dst.Set(i, strconv.FormatInt(a.Value(i), 10))
			}
		default:
			return reader.UnsupportedConversion(col.DataType().Name(), "string")
		}
	}
	return nil
}

func (r *Reader) Close() error {
	if r.ipcr != nil {
		r.ipcr.Release()
	}
	return nil
}
