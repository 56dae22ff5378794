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

import "fmt"

// VecOp names one instruction in a compiled vector-op stream.
type VecOp int

const (
	OpAddI64 VecOp = iota
	OpSubI64
	OpMulI64
	OpDivI64
	OpAddF64
	OpSubF64
	OpMulF64
	OpDivF64
	OpEq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAndBool
	OpOrBool
	OpNotBool
	OpIdentity
)

func (o VecOp) String() string {
	switch o {
	case OpAddI64:
		return "add.i64"
	case OpSubI64:
		return "sub.i64"
	case OpMulI64:
		return "mul.i64"
	case OpDivI64:
		return "div.i64"
	case OpAddF64:
		return "add.f64"
	case OpSubF64:
		return "sub.f64"
	case OpMulF64:
		return "mul.f64"
	case OpDivF64:
		return "div.f64"
	case OpEq:
		return "eq"
	case OpLt:
		return "lt"
	case OpLe:
		return "le"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	case OpAndBool:
		return "and.bool"
	case OpOrBool:
		return "or.bool"
	case OpNotBool:
		return "not.bool"
	case OpIdentity:
		return "identity"
	default:
		return "?"
	}
}

// VecInputKind tags where an instruction's input comes from.
type VecInputKind int

const (
	// InputCol reads a Batch column by index.
	InputCol VecInputKind = iota
	// InputScratch reads a prior instruction's output by scratch slot.
	InputScratch
	// InputConstant reads a compile-time constant.
	InputConstant
)

// VecInput is one operand reference in a compiled instruction.
type VecInput struct {
	Kind    VecInputKind
	ColIdx  int         // valid when Kind == InputCol
	Scratch int         // valid when Kind == InputScratch
	Const   interface{} // valid when Kind == InputConstant
}

func FromColumn(idx int) VecInput          { return VecInput{Kind: InputCol, ColIdx: idx} }
func FromScratch(slot int) VecInput        { return VecInput{Kind: InputScratch, Scratch: slot} }
func FromConstant(v interface{}) VecInput  { return VecInput{Kind: InputConstant, Const: v} }

// VecInstr is one flat instruction in the compiled vector-op program:
// an operator applied to its inputs, writing to a scratch output slot.
// The vectorized engine evaluates a Program once per Batch, with a
// fresh set of scratch slots for each evaluation.
type VecInstr struct {
	Op     VecOp
	Inputs []VecInput
	Output int // scratch slot this instruction writes
}

// VecProgram is the compiled form of a scalar expression for the
// vectorized engine: a flat sequence of VecInstr plus the scratch
// slot holding the final result.
type VecProgram struct {
	Instrs     []VecInstr
	ResultSlot int
	NumScratch int
}

func (p *VecProgram) String() string {
	out := ""
	for i, ins := range p.Instrs {
		out += fmt.Sprintf("%d: %s %v -> s%d\n", i, ins.Op, ins.Inputs, ins.Output)
	}
	return out
}

// vecBuilder accumulates instructions while compiling an expression
// tree into a VecProgram, handing out fresh scratch slots depth-first.
type vecBuilder struct {
	instrs []VecInstr
	next   int
}

func newVecBuilder() *vecBuilder { return &vecBuilder{} }

func (b *vecBuilder) scratch() int {
	s := b.next
	b.next++
	return s
}

func (b *vecBuilder) emit(op VecOp, inputs ...VecInput) int {
	out := b.scratch()
	b.instrs = append(b.instrs, VecInstr{Op: op, Inputs: inputs, Output: out})
	return out
}

func (b *vecBuilder) build(result int) *VecProgram {
	return &VecProgram{Instrs: b.instrs, ResultSlot: result, NumScratch: b.next}
}
