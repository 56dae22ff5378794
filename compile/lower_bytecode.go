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
)

func zeroInt() value.Value { return value.Int(0) }

// SlotMap resolves a binding alias to its row-frame slot index. A
// Path expression loads its alias's slot with LoadSlot, then emits
// one GetField per remaining path component; an alias absent from
// the map is a compile error, with no fallback to a base-row lookup.
type SlotMap map[string]int

// Registry looks up a user-defined function by name at compile time,
// only to confirm it exists; actual dispatch happens at run time
// through the same registry the hybrid VM holds.
type Registry interface {
	Has(name string) bool
}

// LowerBytecode compiles e into a register-bytecode Program for the
// hybrid row VM. slots maps known binding aliases directly to row
// frame slots; reg, if non-nil, is consulted to validate that UDF
// calls name a registered function (unknown UDFs are deferred to a
// run-time error per the spec's UDF dispatch contract, but a registry
// that is supplied here lets the compiler fail fast instead).
func LowerBytecode(e *Expr, slots SlotMap, reg Registry) (*Program, error) {
	b := newByteBuilder()
	result, err := lowerByteNode(b, e, slots, reg)
	if err != nil {
		return nil, err
	}
	return b.build(result), nil
}

func byteErr(format string, args ...interface{}) error {
	return &VecCompileError{Msg: fmt.Sprintf(format, args...)}
}

func lowerByteNode(b *byteBuilder, e *Expr, slots SlotMap, reg Registry) (Reg, error) {
	switch e.Kind {
	case ExprLiteral:
		dst := b.reg()
		b.emit(Instr{Op: OpLoadConst, Dst: dst, Imm: b.constant(e.Lit)})
		return dst, nil

	case ExprColumn:
		dst := b.reg()
		b.emit(Instr{Op: OpLoadSlot, Dst: dst, Imm: e.Column})
		return dst, nil

	case ExprPath:
		return lowerBytePath(b, e, slots)

	case ExprUnary:
		return lowerByteUnary(b, e, slots, reg)

	case ExprBinary:
		return lowerByteBinary(b, e, slots, reg)

	case ExprCall:
		return lowerByteCall(b, e, slots, reg)

	default:
		return 0, byteErr("unknown expression kind %d", e.Kind)
	}
}

func lowerBytePath(b *byteBuilder, e *Expr, slots SlotMap) (Reg, error) {
	if slot, ok := slots[e.Alias]; ok && len(e.Path) == 0 {
		dst := b.reg()
		b.emit(Instr{Op: OpLoadSlot, Dst: dst, Imm: slot})
		return dst, nil
	}
	base := e.Alias
	var cur Reg
	if slot, ok := slots[base]; ok {
		cur = b.reg()
		b.emit(Instr{Op: OpLoadSlot, Dst: cur, Imm: slot})
	} else {
		return 0, byseErrUnknownAlias(base)
	}
	for _, field := range e.Path {
		next := b.reg()
		b.emit(Instr{Op: OpGetField, Dst: next, Src: [2]Reg{cur}, Str: b.intern(field)})
		cur = next
	}
	return cur, nil
}

func byseErrUnknownAlias(alias string) error {
	return byteErr("no row-frame slot known for binding alias %q", alias)
}

func lowerByteUnary(b *byteBuilder, e *Expr, slots SlotMap, reg Registry) (Reg, error) {
	operand, err := lowerByteNode(b, e.Operand, slots, reg)
	if err != nil {
		return 0, err
	}
	switch e.Un {
	case UnNot:
		dst := b.reg()
		b.emit(Instr{Op: OpBNotBool, Dst: dst, Src: [2]Reg{operand}})
		return dst, nil
	case UnNeg:
		dst := b.reg()
		zero := b.reg()
		b.emit(Instr{Op: OpLoadConst, Dst: zero, Imm: b.constant(zeroInt())})
		b.emit(Instr{Op: OpBSubI64, Dst: dst, Src: [2]Reg{zero, operand}})
		return dst, nil
	default:
		return 0, byteErr("unknown unary operator %d", e.Un)
	}
}

func lowerByteBinary(b *byteBuilder, e *Expr, slots SlotMap, reg Registry) (Reg, error) {
	lhs, err := lowerByteNode(b, e.Left, slots, reg)
	if err != nil {
		return 0, err
	}
	rhs, err := lowerByteNode(b, e.Right, slots, reg)
	if err != nil {
		return 0, err
	}
	dst := b.reg()
	switch {
	case e.Bin == BinAnd:
		b.emit(Instr{Op: OpBAndBool, Dst: dst, Src: [2]Reg{lhs, rhs}})
	case e.Bin == BinOr:
		b.emit(Instr{Op: OpBOrBool, Dst: dst, Src: [2]Reg{lhs, rhs}})
	case e.Bin == BinEq:
		b.emit(Instr{Op: OpBEqI64, Dst: dst, Src: [2]Reg{lhs, rhs}})
	case e.Bin == BinNe:
		eq := b.reg()
		b.emit(Instr{Op: OpBEqI64, Dst: eq, Src: [2]Reg{lhs, rhs}})
		b.emit(Instr{Op: OpBNotBool, Dst: dst, Src: [2]Reg{eq}})
	case isOrderedCompare(e.Bin):
		op, ok := byteCompareOp(e.Bin)
		if !ok {
			return 0, byteErr("unsupported comparison operator %d", e.Bin)
		}
		b.emit(Instr{Op: op, Dst: dst, Src: [2]Reg{lhs, rhs}})
	case isArith(e.Bin):
		op, ok := byteArithOp(e.Bin)
		if !ok {
			return 0, byteErr("unsupported arithmetic operator %d", e.Bin)
		}
		b.emit(Instr{Op: op, Dst: dst, Src: [2]Reg{lhs, rhs}})
	default:
		return 0, byteErr("unknown binary operator %d", e.Bin)
	}
	return dst, nil
}

func isOrderedCompare(op BinOp) bool {
	return op == BinLt || op == BinLe || op == BinGt || op == BinGe
}

func byteCompareOp(op BinOp) (ByteOp, bool) {
	switch op {
	case BinLt:
		return OpBLtI64, true
	case BinLe:
		return OpBLeI64, true
	case BinGt:
		return OpBGtI64, true
	case BinGe:
		return OpBGeI64, true
	default:
		return 0, false
	}
}

func byteArithOp(op BinOp) (ByteOp, bool) {
	switch op {
	case BinAdd:
		return OpBAddI64, true
	case BinSub:
		return OpBSubI64, true
	case BinMul:
		return OpBMulI64, true
	case BinDiv:
		return OpBDivI64, true
	default:
		return 0, false
	}
}

func lowerByteCall(b *byteBuilder, e *Expr, slots SlotMap, reg Registry) (Reg, error) {
	if reg != nil && !reg.Has(e.Func) {
		return 0, byteErr("unknown function %q", e.Func)
	}
	args := make([]Reg, len(e.Args))
	for i, a := range e.Args {
		r, err := lowerByteNode(b, a, slots, reg)
		if err != nil {
			return 0, err
		}
		args[i] = r
	}
	dst := b.reg()
	// CallUdf's argument registers are recovered at run time by
	// scanning backward from Dst across len(args) consecutively
	// allocated registers, so arguments must be emitted immediately
	// before the call with no intervening allocations.
	b.emit(Instr{Op: OpCallUdf, Dst: dst, Str: b.intern(e.Func), Imm: len(args)})
	return dst, nil
}
