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
	"fmt"

	"github.com/partiqlgo/execore/value"
	"github.com/partiqlgo/execore/vector"
)

// VecCompileError reports a type-directed lowering failure: a
// mismatched operand type, an unresolvable column reference, or an
// operator applied to an unsupported logical type.
type VecCompileError struct {
	Msg string
}

func (e *VecCompileError) Error() string { return "compile: " + e.Msg }

func vecErr(format string, args ...interface{}) error {
	return &VecCompileError{Msg: fmt.Sprintf(format, args...)}
}

// LowerVector compiles e into a flat vector-op program over the
// columns named by schema. Literal-only expressions are materialized
// via Identity so the caller always gets a scratch-backed result.
func LowerVector(e *Expr, schema *vector.Schema) (*VecProgram, error) {
	b := newVecBuilder()
	result, _, err := lowerVecNode(b, e, schema)
	if err != nil {
		return nil, err
	}
	return b.build(result), nil
}

func lowerVecNode(b *vecBuilder, e *Expr, schema *vector.Schema) (int, vector.LogicalType, error) {
	switch e.Kind {
	case ExprLiteral:
		typ, err := literalType(e.Lit)
		if err != nil {
			return 0, 0, err
		}
		out := b.emit(OpIdentity, FromConstant(e.Lit))
		return out, typ, nil

	case ExprColumn:
		if e.Column < 0 || e.Column >= len(schema.Columns) {
			return 0, 0, vecErr("column index %d out of range for schema %s", e.Column, schema.String())
		}
		typ := schema.Columns[e.Column].Type
		out := b.emit(OpIdentity, FromColumn(e.Column))
		return out, typ, nil

	case ExprPath:
		idx := schema.IndexOf(pathColumnName(e))
		if idx < 0 {
			return 0, 0, vecErr("no column for path %s", pathColumnName(e))
		}
		typ := schema.Columns[idx].Type
		out := b.emit(OpIdentity, FromColumn(idx))
		return out, typ, nil

	case ExprUnary:
		return lowerVecUnary(b, e, schema)

	case ExprBinary:
		return lowerVecBinary(b, e, schema)

	case ExprCall:
		return 0, 0, vecErr("function calls are not supported by the vector-op target yet: %s", e.Func)

	default:
		return 0, 0, vecErr("unknown expression kind %d", e.Kind)
	}
}

func pathColumnName(e *Expr) string {
	if e.Alias != "" {
		return e.Alias + "." + joinPath(e.Path)
	}
	return joinPath(e.Path)
}

func joinPath(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func literalType(v value.Value) (vector.LogicalType, error) {
	switch v.Kind() {
	case value.KindInt:
		return vector.Int64, nil
	case value.KindReal:
		return vector.Float64, nil
	case value.KindBool:
		return vector.Boolean, nil
	case value.KindString:
		return vector.String, nil
	default:
		return 0, vecErr("unsupported literal kind for vector target: %v", v.Kind())
	}
}

func lowerVecUnary(b *vecBuilder, e *Expr, schema *vector.Schema) (int, vector.LogicalType, error) {
	operand, typ, err := lowerVecNode(b, e.Operand, schema)
	if err != nil {
		return 0, 0, err
	}
	switch e.Un {
	case UnNot:
		if typ != vector.Boolean {
			return 0, 0, vecErr("NOT requires a boolean operand, got %s", typ)
		}
		out := b.emit(OpNotBool, FromScratch(operand))
		return out, vector.Boolean, nil
	case UnNeg:
		switch typ {
		case vector.Int64:
			out := b.emit(OpSubI64, FromConstant(int64(0)), FromScratch(operand))
			return out, vector.Int64, nil
		case vector.Float64:
			out := b.emit(OpSubF64, FromConstant(float64(0)), FromScratch(operand))
			return out, vector.Float64, nil
		default:
			return 0, 0, vecErr("unary negation requires a numeric operand, got %s", typ)
		}
	default:
		return 0, 0, vecErr("unknown unary operator %d", e.Un)
	}
}

func lowerVecBinary(b *vecBuilder, e *Expr, schema *vector.Schema) (int, vector.LogicalType, error) {
	lhs, ltyp, err := lowerVecNode(b, e.Left, schema)
	if err != nil {
		return 0, 0, err
	}
	rhs, rtyp, err := lowerVecNode(b, e.Right, schema)
	if err != nil {
		return 0, 0, err
	}

	switch {
	case isLogic(e.Bin):
		if ltyp != vector.Boolean || rtyp != vector.Boolean {
			return 0, 0, vecErr("logical operator requires boolean operands, got %s/%s", ltyp, rtyp)
		}
		op := OpAndBool
		if e.Bin == BinOr {
			op = OpOrBool
		}
		out := b.emit(op, FromScratch(lhs), FromScratch(rhs))
		return out, vector.Boolean, nil

	case isCompare(e.Bin):
		if ltyp != rtyp {
			return 0, 0, vecErr("comparison operand type mismatch: %s vs %s", ltyp, rtyp)
		}
		out := b.emit(compareOp(e.Bin), FromScratch(lhs), FromScratch(rhs))
		if e.Bin == BinNe {
			out = b.emit(OpNotBool, FromScratch(out))
		}
		return out, vector.Boolean, nil

	case isArith(e.Bin):
		if ltyp != rtyp {
			return 0, 0, vecErr("arithmetic operand type mismatch: %s vs %s", ltyp, rtyp)
		}
		op, err := arithOp(e.Bin, ltyp)
		if err != nil {
			return 0, 0, err
		}
		out := b.emit(op, FromScratch(lhs), FromScratch(rhs))
		return out, ltyp, nil

	default:
		return 0, 0, vecErr("unknown binary operator %d", e.Bin)
	}
}

func compareOp(op BinOp) VecOp {
	switch op {
	case BinEq, BinNe:
		return OpEq
	case BinLt:
		return OpLt
	case BinLe:
		return OpLe
	case BinGt:
		return OpGt
	case BinGe:
		return OpGe
	default:
		return OpEq
	}
}

func arithOp(op BinOp, typ vector.LogicalType) (VecOp, error) {
	switch typ {
	case vector.Int64:
		switch op {
		case BinAdd:
			return OpAddI64, nil
		case BinSub:
			return OpSubI64, nil
		case BinMul:
			return OpMulI64, nil
		case BinDiv:
			return OpDivI64, nil
		}
	case vector.Float64:
		switch op {
		case BinAdd:
			return OpAddF64, nil
		case BinSub:
			return OpSubF64, nil
		case BinMul:
			return OpMulF64, nil
		case BinDiv:
			return OpDivF64, nil
		}
	}
	return 0, vecErr("arithmetic is not supported for type %s", typ)
}
