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

package hybrid

import (
	"errors"
	"fmt"

	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/execerr"
	"github.com/partiqlgo/execore/internal/arena"
	"github.com/partiqlgo/execore/value"
)

// VM is the register-bytecode interpreter: a stateless evaluator over
// one compile.Program at a time, reused across every row a node
// processes. All per-row mutable state lives in the caller's Frame,
// register file and arena.
type VM struct {
	Builtins *compile.Builtins
}

func NewVM(builtins *compile.Builtins) *VM {
	return &VM{Builtins: builtins}
}

// Eval runs p against frame's current slots, promoting any row-reader
// borrow it loads through a so it survives the row's remaining
// instructions and the caller's subsequent use of the result.
func (vm *VM) Eval(p *compile.Program, frame *Frame, a *arena.Arena, acc *execerr.Accumulator) (value.Value, error) {
	regs := make([]value.Value, p.NumRegs)
	for _, instr := range p.Instrs {
		v, err := vm.evalInstr(instr, p, frame, regs, a, acc)
		if err != nil {
			return value.Value{}, err
		}
		regs[instr.Dst] = v
	}
	return regs[p.Result], nil
}

func (vm *VM) evalInstr(instr compile.Instr, p *compile.Program, frame *Frame, regs []value.Value, a *arena.Arena, acc *execerr.Accumulator) (value.Value, error) {
	switch instr.Op {
	case compile.OpLoadSlot:
		return a.Promote(frame.Slot(instr.Imm)), nil
	case compile.OpLoadConst:
		return p.Constants[instr.Imm], nil
	case compile.OpGetField:
		return evalGetField(regs[instr.Src[0]], p.Strings[instr.Str]), nil
	case compile.OpStoreSlot:
		frame.SetSlot(instr.Imm, regs[instr.Src[0]])
		return regs[instr.Src[0]], nil
	case compile.OpBAddI64, compile.OpBSubI64, compile.OpBMulI64, compile.OpBDivI64:
		return vm.evalArithI64(instr.Op, regs[instr.Src[0]], regs[instr.Src[1]], acc)
	case compile.OpBEqI64, compile.OpBLtI64, compile.OpBLeI64, compile.OpBGtI64, compile.OpBGeI64:
		return evalCompareReg(instr.Op, regs[instr.Src[0]], regs[instr.Src[1]]), nil
	case compile.OpBAndBool:
		r := regs[instr.Src[1]]
		return value.And(regs[instr.Src[0]], func() value.Value { return r }), nil
	case compile.OpBOrBool:
		r := regs[instr.Src[1]]
		return value.Or(regs[instr.Src[0]], func() value.Value { return r }), nil
	case compile.OpBNotBool:
		return value.Not(regs[instr.Src[0]]), nil
	case compile.OpCallUdf:
		return vm.evalCallUdf(instr, p, regs, acc)
	default:
		return value.Value{}, fatalEval("hybrid: unknown bytecode op %v", instr.Op)
	}
}

func evalGetField(base value.Value, field string) value.Value {
	t, ok := base.AsTuple()
	if !ok {
		return value.Missing()
	}
	v, ok := t.Get(field)
	if !ok {
		return value.Missing()
	}
	return v
}

// evalArithI64 implements the bytecode target's integer-only
// arithmetic (see compile.byteArithOp): a type mismatch is recorded
// as Recoverable and folds to Null rather than aborting the row.
func (vm *VM) evalArithI64(op compile.ByteOp, l, r value.Value, acc *execerr.Accumulator) (value.Value, error) {
	if l.IsMissing() || r.IsMissing() {
		return value.Missing(), nil
	}
	if l.IsNull() || r.IsNull() {
		return value.Null(), nil
	}
	li, lok := l.AsInt()
	ri, rok := r.AsInt()
	if !lok || !rok {
		recordRecoverable(acc, execerr.KindTypeConversion, fmt.Errorf("arithmetic on non-integer operands (kinds %v, %v)", l.Kind(), r.Kind()))
		return value.Null(), nil
	}
	var res int64
	var err error
	switch op {
	case compile.OpBAddI64:
		res, err = value.AddI64(li, ri)
	case compile.OpBSubI64:
		res, err = value.SubI64(li, ri)
	case compile.OpBMulI64:
		res, err = value.MulI64(li, ri)
	case compile.OpBDivI64:
		res, err = value.DivI64(li, ri)
	}
	if err != nil {
		recordRecoverable(acc, execerr.KindEvaluation, err)
		return value.Null(), nil
	}
	return value.Int(res), nil
}

// evalCompareReg implements both equality and ordered comparison.
// The "I64" suffix in the ByteOp names reflects the bytecode
// compiler's typical operand shape; the VM itself compares any pair
// of values the same way the legacy tree-walker does (numeric
// promotion, Comparable gating, Null for cross-category operands).
func evalCompareReg(op compile.ByteOp, l, r value.Value) value.Value {
	if l.IsMissing() || r.IsMissing() {
		return value.Missing()
	}
	if l.IsNull() || r.IsNull() {
		return value.Null()
	}
	if op == compile.OpBEqI64 {
		return value.Bool(value.Equal(l, r))
	}
	if !value.Comparable(l, r) {
		return value.Null()
	}
	c := value.Compare(l, r)
	switch op {
	case compile.OpBLtI64:
		return value.Bool(c < 0)
	case compile.OpBLeI64:
		return value.Bool(c <= 0)
	case compile.OpBGtI64:
		return value.Bool(c > 0)
	case compile.OpBGeI64:
		return value.Bool(c >= 0)
	default:
		return value.Null()
	}
}

// evalCallUdf recovers CallUdf's argument registers by scanning
// backward from Dst, per the contract lowerByteCall documents.
func (vm *VM) evalCallUdf(instr compile.Instr, p *compile.Program, regs []value.Value, acc *execerr.Accumulator) (value.Value, error) {
	n := instr.Imm
	args := make([]value.Value, n)
	for i := 0; i < n; i++ {
		args[i] = regs[int(instr.Dst)-n+i]
	}
	name := p.Strings[instr.Str]
	v, err := vm.Builtins.Call(name, args)
	if err == nil {
		return v, nil
	}
	var ace *compile.ArgCheckError
	if errors.As(err, &ace) {
		if ace.Index < 0 {
			return value.Value{}, fatalCompile("hybrid: unknown function %q", name)
		}
		recordRecoverable(acc, execerr.KindTypeConversion, err)
		return value.Null(), nil
	}
	return value.Value{}, execerr.New(execerr.KindEvaluation, execerr.Fatal, err)
}
