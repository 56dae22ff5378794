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

package legacy

import (
	"errors"
	"fmt"

	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/execerr"
	"github.com/partiqlgo/execore/value"
)

// Eval tree-walks e against env, dispatching ExprCall through builtins.
// Type errors and argument-check failures are recorded on acc and
// replaced with a Null substitute rather than aborting the row; only a
// malformed plan (an ExprColumn reaching here, an unknown function
// name) returns a Fatal error. Call acc.Suppressed after a whole query
// runs to see whether strict mode demands the result be discarded.
func Eval(e *compile.Expr, env *value.Env, builtins *compile.Builtins, acc *execerr.Accumulator) (value.Value, error) {
	switch e.Kind {
	case compile.ExprLiteral:
		return e.Lit, nil
	case compile.ExprColumn:
		return value.Value{}, fatalEval("legacy: ExprColumn(%d) is a vector/bytecode-target node and cannot be tree-walked", e.Column)
	case compile.ExprPath:
		return evalPath(e, env), nil
	case compile.ExprBinary:
		return evalBinary(e, env, builtins, acc)
	case compile.ExprUnary:
		return evalUnary(e, env, builtins, acc)
	case compile.ExprCall:
		return evalCall(e, env, builtins, acc)
	default:
		return value.Missing(), nil
	}
}

func evalPath(e *compile.Expr, env *value.Env) value.Value {
	var base value.Value
	var ok bool
	path := e.Path
	switch {
	case e.Alias != "":
		base, ok = env.Resolve(value.CaseInsensitive(e.Alias))
	case len(path) > 0:
		base, ok = env.Resolve(value.CaseInsensitive(path[0]))
		path = path[1:]
	}
	if !ok {
		return value.Missing()
	}
	for _, p := range path {
		t, isTuple := base.AsTuple()
		if !isTuple {
			return value.Missing()
		}
		base, ok = t.Get(p)
		if !ok {
			return value.Missing()
		}
	}
	return base
}

func evalBinary(e *compile.Expr, env *value.Env, builtins *compile.Builtins, acc *execerr.Accumulator) (value.Value, error) {
	switch e.Bin {
	case compile.BinAnd:
		l, err := Eval(e.Left, env, builtins, acc)
		if err != nil {
			return value.Value{}, err
		}
		var rerr error
		r := value.And(l, func() value.Value {
			var rv value.Value
			rv, rerr = Eval(e.Right, env, builtins, acc)
			return rv
		})
		if rerr != nil {
			return value.Value{}, rerr
		}
		return r, nil
	case compile.BinOr:
		l, err := Eval(e.Left, env, builtins, acc)
		if err != nil {
			return value.Value{}, err
		}
		var rerr error
		r := value.Or(l, func() value.Value {
			var rv value.Value
			rv, rerr = Eval(e.Right, env, builtins, acc)
			return rv
		})
		if rerr != nil {
			return value.Value{}, rerr
		}
		return r, nil
	}

	l, err := Eval(e.Left, env, builtins, acc)
	if err != nil {
		return value.Value{}, err
	}
	r, err := Eval(e.Right, env, builtins, acc)
	if err != nil {
		return value.Value{}, err
	}

	if l.IsMissing() || r.IsMissing() {
		return value.Missing(), nil
	}
	if l.IsNull() || r.IsNull() {
		return value.Null(), nil
	}

	switch e.Bin {
	case compile.BinAdd, compile.BinSub, compile.BinMul, compile.BinDiv:
		return evalArith(e.Bin, l, r, acc), nil
	default:
		return evalCompare(e.Bin, l, r), nil
	}
}

func evalArith(op compile.BinOp, l, r value.Value, acc *execerr.Accumulator) value.Value {
	li, lIsInt := l.AsInt()
	ri, rIsInt := r.AsInt()
	lf, lIsReal := l.AsReal()
	rf, rIsReal := r.AsReal()

	if lIsInt && rIsInt {
		var res int64
		var err error
		switch op {
		case compile.BinAdd:
			res, err = value.AddI64(li, ri)
		case compile.BinSub:
			res, err = value.SubI64(li, ri)
		case compile.BinMul:
			res, err = value.MulI64(li, ri)
		case compile.BinDiv:
			res, err = value.DivI64(li, ri)
		}
		if err != nil {
			recordRecoverable(acc, execerr.KindEvaluation, err)
			return value.Null()
		}
		return value.Int(res)
	}

	if (lIsInt || lIsReal) && (rIsInt || rIsReal) {
		if !lIsReal {
			lf = float64(li)
		}
		if !rIsReal {
			rf = float64(ri)
		}
		switch op {
		case compile.BinAdd:
			return value.Real(lf + rf)
		case compile.BinSub:
			return value.Real(lf - rf)
		case compile.BinMul:
			return value.Real(lf * rf)
		case compile.BinDiv:
			if rf == 0 {
				recordRecoverable(acc, execerr.KindEvaluation, value.ErrDivideByZero)
				return value.Null()
			}
			return value.Real(lf / rf)
		}
	}

	recordRecoverable(acc, execerr.KindTypeConversion, fmt.Errorf("arithmetic on non-numeric operands (kinds %v, %v)", l.Kind(), r.Kind()))
	return value.Null()
}

func evalCompare(op compile.BinOp, l, r value.Value) value.Value {
	switch op {
	case compile.BinEq:
		return value.Bool(value.Equal(l, r))
	case compile.BinNe:
		return value.Bool(!value.Equal(l, r))
	}
	if !value.Comparable(l, r) {
		return value.Null()
	}
	c := value.Compare(l, r)
	switch op {
	case compile.BinLt:
		return value.Bool(c < 0)
	case compile.BinLe:
		return value.Bool(c <= 0)
	case compile.BinGt:
		return value.Bool(c > 0)
	case compile.BinGe:
		return value.Bool(c >= 0)
	default:
		return value.Null()
	}
}

func evalUnary(e *compile.Expr, env *value.Env, builtins *compile.Builtins, acc *execerr.Accumulator) (value.Value, error) {
	v, err := Eval(e.Operand, env, builtins, acc)
	if err != nil {
		return value.Value{}, err
	}
	switch e.Un {
	case compile.UnNot:
		return value.Not(v), nil
	case compile.UnNeg:
		if v.IsMissing() {
			return value.Missing(), nil
		}
		if v.IsNull() {
			return value.Null(), nil
		}
		if i, ok := v.AsInt(); ok {
			return value.Int(-i), nil
		}
		if f, ok := v.AsReal(); ok {
			return value.Real(-f), nil
		}
		recordRecoverable(acc, execerr.KindTypeConversion, fmt.Errorf("negation of non-numeric operand (kind %v)", v.Kind()))
		return value.Null(), nil
	default:
		return value.Null(), nil
	}
}

func evalCall(e *compile.Expr, env *value.Env, builtins *compile.Builtins, acc *execerr.Accumulator) (value.Value, error) {
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := Eval(a, env, builtins, acc)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	v, err := builtins.Call(e.Func, args)
	if err == nil {
		return v, nil
	}
	var ace *compile.ArgCheckError
	if errors.As(err, &ace) {
		if ace.Index < 0 {
			return value.Value{}, fatalCompile("legacy: unknown function %q", e.Func)
		}
		recordRecoverable(acc, execerr.KindTypeConversion, err)
		return value.Null(), nil
	}
	return value.Value{}, execerr.New(execerr.KindEvaluation, execerr.Fatal, err)
}
