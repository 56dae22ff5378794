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

package compile

import (
	"testing"

	"github.com/partiqlgo/execore/value"
)

func TestStandardBuiltinsAbs(t *testing.T) {
	b := StandardBuiltins()
	v, err := b.Call("ABS", []value.Value{value.Int(-7)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if i, ok := v.AsInt(); !ok || i != 7 {
		t.Fatalf("ABS(-7) = %v, want 7", v)
	}
}

func TestStandardBuiltinsUpperLower(t *testing.T) {
	b := StandardBuiltins()
	v, err := b.Call("UPPER", []value.Value{value.String("AbC")})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	s, _ := v.AsString()
	if s != "ABC" {
		t.Fatalf("UPPER(AbC) = %q, want ABC", s)
	}
	v, _ = b.Call("LOWER", []value.Value{value.String("AbC")})
	s, _ = v.AsString()
	if s != "abc" {
		t.Fatalf("LOWER(AbC) = %q, want abc", s)
	}
}

func TestStandardBuiltinsCoalesce(t *testing.T) {
	b := StandardBuiltins()
	v, err := b.Call("COALESCE", []value.Value{value.Null(), value.Missing(), value.Int(5)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if i, ok := v.AsInt(); !ok || i != 5 {
		t.Fatalf("COALESCE(null, missing, 5) = %v, want 5", v)
	}
}

func TestBuiltinsCallUnknownFunction(t *testing.T) {
	b := StandardBuiltins()
	if _, err := b.Call("NOT_REGISTERED", nil); err == nil {
		t.Fatalf("expected an error calling an unregistered function")
	}
}
