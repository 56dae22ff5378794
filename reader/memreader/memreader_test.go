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

package memreader

import (
	"testing"

	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/vector"
)

// TestScenario1Rows checks the generator reader over 1,000 rows with
// a = 0..999, b = 100..1099, batched at 1024 rows. Only the reader
// half is exercised here; a WHERE predicate would be applied by
// engine/vectorized on top of the resulting batch.
func TestScenario1Rows(t *testing.T) {
	r := New(1000, 1024, nil)
	spec := &reader.ProjectionSpec{Targets: []reader.Target{
		{Name: "a", Type: vector.Int64, Source: reader.ByFieldPath("a")},
		{Name: "b", Type: vector.Int64, Source: reader.ByFieldPath("b")},
	}}
	if err := r.SetProjection(spec); err != nil {
		t.Fatalf("SetProjection: %v", err)
	}
	batch, err := r.NextBatch()
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	if batch.RowCount != 1000 {
		t.Fatalf("row count = %d, want 1000 (batch size 1024 > total rows)", batch.RowCount)
	}
	a := batch.Column(0).Int64()
	b := batch.Column(1).Int64()
	for i := 0; i < 1000; i++ {
		if a.At(i) != int64(i) {
			t.Fatalf("a[%d] = %d, want %d", i, a.At(i), i)
		}
		if b.At(i) != int64(i+100) {
			t.Fatalf("b[%d] = %d, want %d", i, b.At(i), i+100)
		}
	}
	next, err := r.NextBatch()
	if err != nil || next != nil {
		t.Fatalf("expected end of stream, got batch=%v err=%v", next, err)
	}
}

func TestRejectsUnsupportedSource(t *testing.T) {
	r := New(10, 10, nil)
	spec := &reader.ProjectionSpec{Targets: []reader.Target{
		{Name: "a", Type: vector.Int64, Source: reader.ByColumnIndex(0)},
	}}
	if err := r.SetProjection(spec); err == nil {
		t.Fatalf("memreader must reject ColumnIndex sources")
	}
}

func TestRejectsUnknownField(t *testing.T) {
	r := New(10, 10, nil)
	spec := &reader.ProjectionSpec{Targets: []reader.Target{
		{Name: "c", Type: vector.Int64, Source: reader.ByFieldPath("c")},
	}}
	if err := r.SetProjection(spec); err == nil {
		t.Fatalf("memreader must reject unknown field paths")
	}
}
