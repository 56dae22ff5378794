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
	"github.com/partiqlgo/execore/vector"
)

func schemaAB() *vector.Schema {
	return vector.NewSchema(
		vector.Column{Name: "a", Type: vector.Int64},
		vector.Column{Name: "b", Type: vector.Int64},
	)
}

func TestLowerVectorArithmetic(t *testing.T) {
	e := Binary(BinAdd, Column(0), Column(1))
	p, err := LowerVector(e, schemaAB())
	if err != nil {
		t.Fatalf("LowerVector: %v", err)
	}
	if len(p.Instrs) != 3 {
		t.Fatalf("expected 3 instructions (two Identity loads + one add), got %d", len(p.Instrs))
	}
	last := p.Instrs[len(p.Instrs)-1]
	if last.Op != OpAddI64 {
		t.Fatalf("last instruction = %s, want add.i64", last.Op)
	}
	if p.ResultSlot != last.Output {
		t.Fatalf("ResultSlot = %d, want %d", p.ResultSlot, last.Output)
	}
}

func TestLowerVectorRejectsTypeMismatch(t *testing.T) {
	e := Binary(BinAdd, Column(0), Literal(value.String("x")))
	_, err := LowerVector(e, schemaAB())
	if err == nil {
		t.Fatalf("expected a compile error for int64+string")
	}
}

func TestLowerVectorComparisonYieldsBoolean(t *testing.T) {
	e := Binary(BinLt, Column(0), Column(1))
	p, err := LowerVector(e, schemaAB())
	if err != nil {
		t.Fatalf("LowerVector: %v", err)
	}
	last := p.Instrs[len(p.Instrs)-1]
	if last.Op != OpLt {
		t.Fatalf("comparison lowered to %s, want lt", last.Op)
	}
}

func TestLowerVectorNotEqualNegatesEquality(t *testing.T) {
	e := Binary(BinNe, Column(0), Column(1))
	p, err := LowerVector(e, schemaAB())
	if err != nil {
		t.Fatalf("LowerVector: %v", err)
	}
	if len(p.Instrs) < 2 {
		t.Fatalf("expected an eq followed by not.bool, got %+v", p.Instrs)
	}
	last := p.Instrs[len(p.Instrs)-1]
	prev := p.Instrs[len(p.Instrs)-2]
	if prev.Op != OpEq || last.Op != OpNotBool {
		t.Fatalf("expected eq then not.bool, got %s then %s", prev.Op, last.Op)
	}
	if p.ResultSlot != last.Output {
		t.Fatalf("ResultSlot = %d, want %d (the not.bool output)", p.ResultSlot, last.Output)
	}
}

func TestLowerVectorLogicalRequiresBoolean(t *testing.T) {
	e := Binary(BinAnd, Column(0), Column(1))
	_, err := LowerVector(e, schemaAB())
	if err == nil {
		t.Fatalf("AND over int64 columns should be a compile error")
	}
}
