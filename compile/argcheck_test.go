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

func TestArgCheckPropagatesMissingBeforeNull(t *testing.T) {
	c := Fixed(value.Numeric(), value.Numeric())
	out := c.Apply([]value.Value{value.Missing(), value.Null()})
	if !out.Short || !out.Value.IsMissing() {
		t.Fatalf("Missing must win over Null in the same call, got %+v", out)
	}
}

func TestArgCheckPropagatesNull(t *testing.T) {
	c := Fixed(value.Numeric())
	out := c.Apply([]value.Value{value.Null()})
	if !out.Short || !out.Value.IsNull() {
		t.Fatalf("expected Null short-circuit, got %+v", out)
	}
}

func TestArgCheckShapeMismatchPermissive(t *testing.T) {
	c := Fixed(value.Numeric())
	out := c.Apply([]value.Value{value.String("nope")})
	if !out.Short || out.Err != nil || !out.Value.IsMissing() {
		t.Fatalf("permissive mode should turn a shape mismatch into Missing, got %+v", out)
	}
}

func TestArgCheckShapeMismatchStrict(t *testing.T) {
	c := Fixed(value.Numeric())
	c.Strict = true
	out := c.Apply([]value.Value{value.String("nope")})
	if !out.Short || out.Err == nil {
		t.Fatalf("strict mode should surface an ArgCheckError, got %+v", out)
	}
}

func TestArgCheckPasses(t *testing.T) {
	c := Fixed(value.Numeric(), value.Numeric())
	out := c.Apply([]value.Value{value.Int(1), value.Real(2.5)})
	if out.Short {
		t.Fatalf("well-typed arguments must not short-circuit, got %+v", out)
	}
}

func TestVariadicChecksEveryArg(t *testing.T) {
	c := Variadic(value.Numeric())
	out := c.Apply([]value.Value{value.Int(1), value.Int(2), value.String("x")})
	if !out.Short || !out.Value.IsMissing() {
		t.Fatalf("a single bad variadic argument should short-circuit to Missing, got %+v", out)
	}
}
