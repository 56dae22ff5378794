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

// Package parquetreader implements a Parquet reader via
// github.com/apache/arrow-go/v18/parquet/pqarrow, which decodes a
// Parquet file into Arrow record batches column-by-column: the natural
// home for projection pushdown. Only the requested ColumnIndex set is
// handed to the Arrow column reader, so unselected columns are never
// decoded from the Parquet page data. Promises UntilClose stability,
// matching arrowreader.
package parquetreader

import (
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/vector"
)

// Reader is a BatchReader over a Parquet file opened from a
// ReaderAt (Parquet requires random access for its footer/row-group
// index, unlike the Arrow IPC stream format).
type Reader struct {
	src      parquetSource
	proj     *reader.ProjectionSpec
	cols     []int
	fileRdr  *file.Reader
	recRdr   pqarrow.RecordReader
}

// parquetSource is the minimal io.ReaderAt+io.Closer a Parquet file
// reader needs.
type parquetSource interface {
	io.ReaderAt
	io.Closer
}

func New(src parquetSource) *Reader {
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
	if r.fileRdr != nil {
		return nil
	}
	fr, err := file.NewParquetReader(r.src)
	if err != nil {
		return reader.AccessFailed("parquet file", err)
	}
	r.fileRdr = fr

	arrRdr, err := pqarrow.NewFileReader(fr, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return reader.AccessFailed("parquet arrow bridge", err)
	}
	// Only the projected column indices are handed to GetRecordReader,
	// which is what realizes projection pushdown: the Parquet column
	// chunks for every other column are never touched.
	rr, err := arrRdr.GetRecordReader(context.Background(), r.cols, nil)
	if err != nil {
		return reader.AccessFailed("parquet record reader", err)
	}
	r.recRdr = rr
	return nil
}

func (r *Reader) NextBatch() (*vector.Batch, error) {
	if err := r.open(); err != nil {
		return nil, err
	}
	rec, err := r.recRdr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, reader.AccessFailed("parquet record batch", err)
	}
	n := int(rec.NumRows())
	schema := r.proj.Schema()
	batch := vector.NewBatch(schema, n)
	for i := range r.cols {
		col := rec.Column(i) // GetRecordReader already projected to r.cols order
		if err := convertColumn(col, schema.Columns[i].Type, batch, i); err != nil {
			return nil, err
		}
	}
	return batch, nil
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
		a, ok := col.(*array.String)
		if !ok {
			return reader.UnsupportedConversion(col.DataType().Name(), "string")
		}
		dst := batch.Column(dstIdx).String()
		for i := 0; i < n; i++ {
			dst.Set(i, a.Value(i))
		}
	}
	return nil
}

func (r *Reader) Close() error {
	if r.fileRdr != nil {
		return r.fileRdr.Close()
	}
	return nil
}
