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

func TestShapeSubsumes(t *testing.T) {
	num := Numeric()
	if !num.Subsumes(Int(1)) || !num.Subsumes(Real(1.5)) {
		t.Fatalf("Numeric() must subsume Int and Real")
	}
	if num.Subsumes(String("1")) {
		t.Fatalf("Numeric() must not subsume String")
	}
	if num.Subsumes(Missing()) || num.Subsumes(Null()) {
		t.Fatalf("no concrete shape subsumes Null/Missing")
	}
}

func TestAnyOfSubsumesByAnyMatch(t *testing.T) {
	s := AnyOf(OfKind(KindString), OfKind(KindBool))
	if !s.Subsumes(String("x")) || !s.Subsumes(Bool(true)) {
		t.Fatalf("AnyOf must subsume any listed alternative")
	}
	if s.Subsumes(Int(1)) {
		t.Fatalf("AnyOf must not subsume an unlisted kind")
	}
}

func TestAnyKindSubsumesEverythingButAbsent(t *testing.T) {
	s := AnyKind()
	if !s.Subsumes(Int(1)) || !s.Subsumes(TupleVal(nil)) {
		t.Fatalf("AnyKind must subsume any concrete value")
	}
	if s.Subsumes(Missing()) {
		t.Fatalf("AnyKind must not subsume Missing")
	}
}
