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

package vectorized

import (
	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/execerr"
	"github.com/partiqlgo/execore/value"
	"github.com/partiqlgo/execore/vector"
)

// evalProgram runs p over every row in [0, b.RowCount), ignoring any
// selection vector currently installed on b: the caller decides which
// rows matter downstream (Filter turns the result into a new
// selection; Project/GroupBy gather only the rows Selected() names).
// Evaluating the whole column is cheap and keeps the interpreter
// itself free of selection bookkeeping.
func evalProgram(p *compile.VecProgram, b *vector.Batch, acc *execerr.Accumulator) (vector.PhysicalVector, error) {
	scratch := make([]vector.PhysicalVector, p.NumScratch)
	for _, instr := range p.Instrs {
		out, err := evalInstr(instr, b, scratch, acc)
		if err != nil {
			return vector.PhysicalVector{}, err
		}
		scratch[instr.Output] = out
	}
	return scratch[p.ResultSlot], nil
}

func resolveInput(in compile.VecInput, b *vector.Batch, scratch []vector.PhysicalVector) (vector.PhysicalVector, error) {
	switch in.Kind {
	case compile.InputCol:
		return b.Column(in.ColIdx), nil
	case compile.InputScratch:
		return scratch[in.Scratch], nil
	case compile.InputConstant:
		return constVector(in.Const, b.RowCount)
	default:
		return vector.PhysicalVector{}, fatalEval("vectorized: unknown vector-op input kind %d", in.Kind)
	}
}

// constVector materializes a compile-time constant as a Constant
// TypedVector of b's row count; LowerVector packs literals either as a
// raw Go int64/float64 (unary negation's zero operand) or as a
// value.Value (everything lowered from ExprLiteral).
func constVector(c interface{}, n int) (vector.PhysicalVector, error) {
	switch t := c.(type) {
	case int64:
		return vector.FromInt64(vector.Constant(t, n)), nil
	case float64:
		return vector.FromFloat64(vector.Constant(t, n)), nil
	case value.Value:
		switch t.Kind() {
		case value.KindInt:
			i, _ := t.AsInt()
			return vector.FromInt64(vector.Constant(i, n)), nil
		case value.KindReal:
			f, _ := t.AsReal()
			return vector.FromFloat64(vector.Constant(f, n)), nil
		case value.KindBool:
			bv, _ := t.AsBool()
			return vector.FromBool(vector.Constant(bv, n)), nil
		case value.KindString:
			s, _ := t.AsString()
			return vector.FromString(vector.Constant(s, n)), nil
		default:
			return vector.PhysicalVector{}, fatalEval("vectorized: unsupported constant kind %v for a scalar column", t.Kind())
		}
	default:
		return vector.PhysicalVector{}, fatalEval("vectorized: unrecognized vector-op constant %T", c)
	}
}

func evalInstr(instr compile.VecInstr, b *vector.Batch, scratch []vector.PhysicalVector, acc *execerr.Accumulator) (vector.PhysicalVector, error) {
	ins := make([]vector.PhysicalVector, len(instr.Inputs))
	for i, in := range instr.Inputs {
		pv, err := resolveInput(in, b, scratch)
		if err != nil {
			return vector.PhysicalVector{}, err
		}
		ins[i] = pv
	}
	n := b.RowCount

	switch instr.Op {
	case compile.OpIdentity:
		return ins[0], nil

	case compile.OpAddI64, compile.OpSubI64, compile.OpMulI64, compile.OpDivI64:
		return evalArithI64(instr.Op, ins[0].Int64(), ins[1].Int64(), n, acc)

	case compile.OpAddF64, compile.OpSubF64, compile.OpMulF64, compile.OpDivF64:
		return evalArithF64(instr.Op, ins[0].Float64(), ins[1].Float64(), n)

	case compile.OpEq, compile.OpLt, compile.OpLe, compile.OpGt, compile.OpGe:
		return evalCompare(instr.Op, ins[0], ins[1], n)

	case compile.OpAndBool:
		return evalBoolBinary(func(a, b bool) bool { return a && b }, ins[0].Bool(), ins[1].Bool(), n), nil

	case compile.OpOrBool:
		return evalBoolBinary(func(a, b bool) bool { return a || b }, ins[0].Bool(), ins[1].Bool(), n), nil

	case compile.OpNotBool:
		out := make([]bool, n)
		src := ins[0].Bool()
		for i := 0; i < n; i++ {
			out[i] = !src.At(i)
		}
		return vector.FromBool(vector.Owned(out)), nil

	default:
		return vector.PhysicalVector{}, fatalEval("vectorized: unimplemented vector op %s", instr.Op)
	}
}

// evalArithI64 records an overflow or divide-by-zero against acc as
// Recoverable and substitutes 0 for the offending row, the closest
// columnar analogue to the tree-walking engines' Null substitution: a
// scalar Int64 column has no per-cell null representation.
func evalArithI64(op compile.VecOp, a, b *vector.TypedVector[int64], n int, acc *execerr.Accumulator) (vector.PhysicalVector, error) {
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		x, y := a.At(i), b.At(i)
		var r int64
		var err error
		switch op {
		case compile.OpAddI64:
			r, err = value.AddI64(x, y)
		case compile.OpSubI64:
			r, err = value.SubI64(x, y)
		case compile.OpMulI64:
			r, err = value.MulI64(x, y)
		case compile.OpDivI64:
			r, err = value.DivI64(x, y)
		}
		if err != nil {
			if recErr := recordRecoverable(acc, execerr.KindEvaluation, err); recErr != nil {
				return vector.PhysicalVector{}, recErr
			}
			r = 0
		}
		out[i] = r
	}
	return vector.FromInt64(vector.Owned(out)), nil
}

func evalArithF64(op compile.VecOp, a, b *vector.TypedVector[float64], n int) (vector.PhysicalVector, error) {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		x, y := a.At(i), b.At(i)
		switch op {
		case compile.OpAddF64:
			out[i] = x + y
		case compile.OpSubF64:
			out[i] = x - y
		case compile.OpMulF64:
			out[i] = x * y
		case compile.OpDivF64:
			out[i] = x / y
		}
	}
	return vector.FromFloat64(vector.Owned(out)), nil
}

func evalBoolBinary(f func(a, b bool) bool, a, b *vector.TypedVector[bool], n int) vector.PhysicalVector {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = f(a.At(i), b.At(i))
	}
	return vector.FromBool(vector.Owned(out))
}

func evalCompare(op compile.VecOp, l, r vector.PhysicalVector, n int) (vector.PhysicalVector, error) {
	out := make([]bool, n)
	switch l.Type() {
	case vector.Int64:
		a, b := l.Int64(), r.Int64()
		for i := 0; i < n; i++ {
			out[i] = compareInt64(op, a.At(i), b.At(i))
		}
	case vector.Float64:
		a, b := l.Float64(), r.Float64()
		for i := 0; i < n; i++ {
			out[i] = compareFloat(op, a.At(i), b.At(i))
		}
	case vector.Boolean:
		a, b := l.Bool(), r.Bool()
		for i := 0; i < n; i++ {
			out[i] = compareBool(op, a.At(i), b.At(i))
		}
	case vector.String:
		a, b := l.String(), r.String()
		for i := 0; i < n; i++ {
			out[i] = compareString(op, a.At(i), b.At(i))
		}
	default:
		return vector.PhysicalVector{}, fatalEval("vectorized: comparison over an unrecognized column type")
	}
	return vector.FromBool(vector.Owned(out)), nil
}

func compareInt64(op compile.VecOp, a, b int64) bool {
	switch op {
	case compile.OpEq:
		return a == b
	case compile.OpLt:
		return a < b
	case compile.OpLe:
		return a <= b
	case compile.OpGt:
		return a > b
	case compile.OpGe:
		return a >= b
	default:
		return false
	}
}

func compareFloat(op compile.VecOp, a, b float64) bool {
	switch op {
	case compile.OpEq:
		return a == b
	case compile.OpLt:
		return a < b
	case compile.OpLe:
		return a <= b
	case compile.OpGt:
		return a > b
	case compile.OpGe:
		return a >= b
	default:
		return false
	}
}

func compareBool(op compile.VecOp, a, b bool) bool {
	ai, bi := 0, 0
	if a {
		ai = 1
	}
	if b {
		bi = 1
	}
	return compareFloat(op, float64(ai), float64(bi))
}

func compareString(op compile.VecOp, a, b string) bool {
	switch op {
	case compile.OpEq:
		return a == b
	case compile.OpLt:
		return a < b
	case compile.OpLe:
		return a <= b
	case compile.OpGt:
		return a > b
	case compile.OpGe:
		return a >= b
	default:
		return false
	}
}
