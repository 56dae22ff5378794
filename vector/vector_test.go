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

import "testing"

// TestCopyOnWrite builds a TypedVector<i64> of [1,2,3,4,5], clones
// it, mutates the clone's index 0, and confirms the original is
// unchanged.
func TestCopyOnWrite(t *testing.T) {
	orig := Owned([]int64{1, 2, 3, 4, 5})
	clone := orig.Shared()

	if err := clone.Set(0, 100); err != nil {
		t.Fatalf("Set: %v", err)
	}

	want := []int64{1, 2, 3, 4, 5}
	for i, w := range want {
		if got := orig.At(i); got != w {
			t.Errorf("original[%d] = %d, want %d (COW must not mutate shared view)", i, got, w)
		}
	}
	wantClone := []int64{100, 2, 3, 4, 5}
	for i, w := range wantClone {
		if got := clone.At(i); got != w {
			t.Errorf("clone[%d] = %d, want %d", i, got, w)
		}
	}
}

func TestConstantMaterializesOnMutation(t *testing.T) {
	v := Constant[int64](7, 4)
	for i := 0; i < 4; i++ {
		if v.At(i) != 7 {
			t.Fatalf("constant vector At(%d) = %d, want 7", i, v.At(i))
		}
	}
	if err := v.Set(1, 9); err != nil {
		t.Fatalf("Set on constant buffer should succeed after materializing: %v", err)
	}
	if v.At(0) != 7 || v.At(1) != 9 || v.At(2) != 7 {
		t.Fatalf("materialized constant vector has wrong contents: %v %v %v", v.At(0), v.At(1), v.At(2))
	}
}

func TestSliceIsZeroCopyUntilMutated(t *testing.T) {
	v := Owned([]int64{10, 20, 30, 40})
	s := v.Slice(1, 2)
	if s.Len() != 2 || s.At(0) != 20 || s.At(1) != 30 {
		t.Fatalf("slice contents wrong: len=%d", s.Len())
	}
	// Slicing aliases the same buffer (no data copy); the first
	// mutation through either view triggers copy-on-write, so the
	// original must stay untouched.
	if err := s.Set(0, 999); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v.At(1) != 20 {
		t.Fatalf("mutating a sliced view must not affect the original, got %d", v.At(1))
	}
	if s.At(0) != 999 {
		t.Fatalf("mutation should be visible through the view that performed it, got %d", s.At(0))
	}
}

func TestBatchSelectionDiscipline(t *testing.T) {
	schema := NewSchema(Column{Name: "a", Type: Int64})
	b := NewBatch(schema, 5)
	for i := 0; i < 5; i++ {
		b.Column(0).Int64().Set(i, int64(i))
	}
	if err := b.SetSelection([]int{1, 3}); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	sel := b.Selected()
	if len(sel) != 2 || sel[0] != 1 || sel[1] != 3 {
		t.Fatalf("Selected() = %v", sel)
	}

	b2 := NewBatch(schema, 5)
	if sel2 := b2.Selected(); len(sel2) != 5 {
		t.Fatalf("missing selection must mean all rows 0..row_count, got %v", sel2)
	}
}

func TestBatchSelectionMustBeSorted(t *testing.T) {
	schema := NewSchema(Column{Name: "a", Type: Int64})
	b := NewBatch(schema, 5)
	if err := b.SetSelection([]int{3, 1}); err == nil {
		t.Fatalf("unsorted selection vector must be rejected")
	}
	if err := b.SetSelection([]int{0, 10}); err == nil {
		t.Fatalf("out-of-range selection index must be rejected")
	}
}

func TestBatchValidFreshBatch(t *testing.T) {
	schema := NewSchema(Column{Name: "a", Type: Int64})
	b := NewBatch(schema, 5)
	if err := b.Valid(); err != nil {
		t.Fatalf("freshly constructed batch should be valid: %v", err)
	}
}
