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

package arena

import (
	"testing"

	"github.com/partiqlgo/execore/value"
)

func TestPromoteClonesTupleAndSurvivesMutation(t *testing.T) {
	a := New()
	src := value.NewTuple().Set("a", value.Int(1))
	promoted := a.Promote(value.TupleVal(src))

	src.Set("a", value.Int(99)) // simulate the reader reusing its scratch tuple

	pt, _ := promoted.AsTuple()
	got, _ := pt.Get("a")
	if i, _ := got.AsInt(); i != 1 {
		t.Fatalf("promoted tuple observed the mutation: got %v, want 1", got)
	}
}

func TestResetClearsArena(t *testing.T) {
	a := New()
	a.Promote(value.Int(1))
	a.Promote(value.Int(2))
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	a.Reset()
	if a.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", a.Len())
	}
}
