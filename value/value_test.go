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

package value

import "testing"

func TestNullMissingDistinct(t *testing.T) {
	n, m := Null(), Missing()
	if Equal(n, m) {
		t.Fatalf("Null and Missing must not be equal")
	}
	if !n.IsAbsent() || !m.IsAbsent() {
		t.Fatalf("both Null and Missing must be IsAbsent")
	}
	if n.IsMissing() || m.IsNull() {
		t.Fatalf("Null/Missing must not cross-report")
	}
}

func TestNumericEquality(t *testing.T) {
	cases := []struct {
		a, b Value
		want bool
	}{
		{Int(2), Real(2.0), true},
		{Int(2), Real(2.5), false},
		{Int(3), Int(3), true},
		{String("3"), Int(3), false},
	}
	for _, c := range cases {
		if got := Equal(c.a, c.b); got != c.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestBagEqualityIsMultiset(t *testing.T) {
	a := Bag([]Value{Int(1), Int(1), Int(2)})
	b := Bag([]Value{Int(2), Int(1), Int(1)})
	c := Bag([]Value{Int(1), Int(2), Int(2)})
	if !Equal(a, b) {
		t.Fatalf("bags with the same multiset of elements must be equal")
	}
	if Equal(a, c) {
		t.Fatalf("bags with different multiplicities must not be equal")
	}
}

func TestListEqualityIsOrdered(t *testing.T) {
	a := List([]Value{Int(1), Int(2)})
	b := List([]Value{Int(2), Int(1)})
	if Equal(a, b) {
		t.Fatalf("lists must compare order-sensitively")
	}
}

func TestTupleEqualityIsOrderIndependent(t *testing.T) {
	a := NewTuple().Set("x", Int(1)).Set("y", Int(2))
	b := NewTuple().Set("y", Int(2)).Set("x", Int(1))
	if !Equal(TupleVal(a), TupleVal(b)) {
		t.Fatalf("tuple equality must be order-independent")
	}
}

func TestTupleCaseInsensitiveLookup(t *testing.T) {
	tup := NewTuple().Set("Name", String("ada"))
	if v, ok := tup.Get("name"); !ok || v.String() != `"ada"` {
		t.Fatalf("case-insensitive Get failed: %v %v", v, ok)
	}
	if _, ok := tup.GetCase("name"); ok {
		t.Fatalf("case-sensitive GetCase must not match differing case")
	}
	if v, ok := tup.GetCase("Name"); !ok || v.String() != `"ada"` {
		t.Fatalf("case-sensitive GetCase failed: %v %v", v, ok)
	}
}

func TestComparableCrossCategory(t *testing.T) {
	if Comparable(String("x"), Bool(true)) {
		t.Fatalf("String and Bool must not be directly Comparable (expression layer maps this to Null)")
	}
	if !Comparable(Int(1), Real(2.5)) {
		t.Fatalf("numeric kinds must be Comparable across Int/Real/Decimal")
	}
}
