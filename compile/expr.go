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

import "github.com/partiqlgo/execore/value"

// ExprKind tags the shape of one node in the logical expression tree
// handed to the compiler. Parsing and name resolution produce these
// trees upstream; this package only lowers them.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprColumn          // references input column/slot Column by index
	ExprPath            // references a binding alias, then a field path
	ExprBinary
	ExprUnary
	ExprCall
)

// BinOp is a binary operator in the logical expression tree.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

// UnOp is a unary operator in the logical expression tree.
type UnOp int

const (
	UnNot UnOp = iota
	UnNeg
)

// Expr is a node of the tree-shaped logical expression the compiler
// lowers. It intentionally carries no source-position or
// pretty-printing metadata — those live upstream in the parser/AST
// layer this package does not implement.
type Expr struct {
	Kind ExprKind

	// ExprLiteral
	Lit value.Value

	// ExprColumn: index into the current input schema (vector target)
	// or row-frame slot (bytecode target).
	Column int

	// ExprPath: Alias is the binding this path starts from ("" means
	// the current row); Path is the remaining field components.
	Alias string
	Path  []string

	// ExprBinary
	Bin         BinOp
	Left, Right *Expr

	// ExprUnary
	Un      UnOp
	Operand *Expr

	// ExprCall
	Func string
	Args []*Expr
}

func Literal(v value.Value) *Expr { return &Expr{Kind: ExprLiteral, Lit: v} }
func Column(i int) *Expr          { return &Expr{Kind: ExprColumn, Column: i} }
func Path(alias string, path ...string) *Expr {
	return &Expr{Kind: ExprPath, Alias: alias, Path: path}
}
func Binary(op BinOp, l, r *Expr) *Expr { return &Expr{Kind: ExprBinary, Bin: op, Left: l, Right: r} }
func Unary(op UnOp, e *Expr) *Expr      { return &Expr{Kind: ExprUnary, Un: op, Operand: e} }
func Call(name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Func: name, Args: args}
}

func isArith(op BinOp) bool {
	return op == BinAdd || op == BinSub || op == BinMul || op == BinDiv
}

func isCompare(op BinOp) bool {
	return op == BinEq || op == BinNe || op == BinLt || op == BinLe || op == BinGt || op == BinGe
}

func isLogic(op BinOp) bool {
	return op == BinAnd || op == BinOr
}
