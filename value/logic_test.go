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

func TestShortCircuitAnd(t *testing.T) {
	called := false
	got := And(Bool(false), func() Value {
		called = true
		return Bool(true)
	})
	if called {
		t.Fatalf("AND(false, X) must not evaluate X")
	}
	if b, ok := got.AsBool(); !ok || b {
		t.Fatalf("AND(false, X) = %v, want false", got)
	}

	called = false
	got = And(Missing(), func() Value {
		called = true
		return Bool(true)
	})
	if called {
		t.Fatalf("AND(MISSING, X) must not evaluate X")
	}
}

func TestShortCircuitOr(t *testing.T) {
	called := false
	got := Or(Bool(true), func() Value {
		called = true
		return Bool(false)
	})
	if called {
		t.Fatalf("OR(true, X) must not evaluate X")
	}
	if b, ok := got.AsBool(); !ok || !b {
		t.Fatalf("OR(true, X) = %v, want true", got)
	}
}

func TestAndMissingDominatesNull(t *testing.T) {
	got := And(Null(), func() Value { return Missing() })
	if !got.IsMissing() {
		t.Fatalf("AND(Null, Missing) = %v, want Missing (Missing dominates)", got)
	}
}

func TestIsTrue(t *testing.T) {
	if IsTrue(Null()) || IsTrue(Missing()) || IsTrue(Bool(false)) {
		t.Fatalf("only Boolean(true) should satisfy IsTrue")
	}
	if !IsTrue(Bool(true)) {
		t.Fatalf("Boolean(true) must satisfy IsTrue")
	}
}
