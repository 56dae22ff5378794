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

// ByteOp names one register-bytecode instruction for the hybrid row VM.
type ByteOp int

const (
	OpLoadSlot ByteOp = iota
	OpLoadConst
	OpBAddI64
	OpBSubI64
	OpBMulI64
	OpBDivI64
	OpBEqI64
	OpBLtI64
	OpBLeI64
	OpBGtI64
	OpBGeI64
	OpBAndBool
	OpBOrBool
	OpBNotBool
	OpGetField
	OpStoreSlot
	OpCallUdf
)

func (o ByteOp) String() string {
	names := [...]string{
		"load_slot", "load_const", "add_i64", "sub_i64", "mul_i64", "div_i64",
		"eq_i64", "lt_i64", "le_i64", "gt_i64", "ge_i64",
		"and_bool", "or_bool", "not_bool", "get_field", "store_slot", "call_udf",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return "?"
}

// Reg identifies one register in the row VM's register file.
type Reg int

// Instr is one register-bytecode instruction: an operator reading
// from zero or more source registers, writing to Dst. Field name and
// UDF identity are resolved through the Program's interned string
// pool (Str) rather than embedded directly, keeping instructions a
// fixed size.
type Instr struct {
	Op   ByteOp
	Dst  Reg
	Src  [2]Reg
	Imm  int // constant-pool index (OpLoadConst) or slot index (OpLoadSlot/OpStoreSlot)
	Str  int // interned string pool index (OpGetField field name, OpCallUdf name)
}

// Program is the compiled register-bytecode form of a scalar
// expression for the hybrid row VM: a flat instruction stream plus
// its constant pool and interned string pool. A Program is immutable
// and safely shared across concurrently executing row frames; all
// per-row mutable state lives in the VM's register file and arena.
type Program struct {
	Instrs    []Instr
	Constants []value.Value
	Strings   []string
	NumRegs   int
	Result    Reg
}

func (p *Program) String() string {
	out := ""
	for i, ins := range p.Instrs {
		out += fmt.Sprintf("%d: %s r%d <- r%d,r%d imm=%d str=%d\n",
			i, ins.Op, ins.Dst, ins.Src[0], ins.Src[1], ins.Imm, ins.Str)
	}
	return out
}

// byteBuilder accumulates instructions, constants and interned
// strings while compiling an expression tree into a Program.
type byteBuilder struct {
	instrs    []Instr
	constants []value.Value
	strings   []string
	strIdx    map[string]int
	nextReg   Reg
}

func newByteBuilder() *byteBuilder {
	return &byteBuilder{strIdx: make(map[string]int)}
}

func (b *byteBuilder) reg() Reg {
	r := b.nextReg
	b.nextReg++
	return r
}

func (b *byteBuilder) constant(v value.Value) int {
	b.constants = append(b.constants, v)
	return len(b.constants) - 1
}

func (b *byteBuilder) intern(s string) int {
	if i, ok := b.strIdx[s]; ok {
		return i
	}
	i := len(b.strings)
	b.strings = append(b.strings, s)
	b.strIdx[s] = i
	return i
}

func (b *byteBuilder) emit(ins Instr) {
	b.instrs = append(b.instrs, ins)
}

func (b *byteBuilder) build(result Reg) *Program {
	return &Program{
		Instrs:    b.instrs,
		Constants: b.constants,
		Strings:   b.strings,
		NumRegs:   int(b.nextReg),
		Result:    result,
	}
}
