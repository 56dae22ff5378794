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

package value

// dominant picks the absent result of a logic operator whose operands
// did not decide it: Missing if either operand is Missing, otherwise
// Null.
func dominant(a, b Value) Value {
	if a.IsMissing() || b.IsMissing() {
		return Missing()
	}
	return Null()
}

// And implements SQL three-valued AND with short-circuit evaluation:
// the caller supplies a thunk for the right operand so that
// AND(false, X) never evaluates X. A nil rhs stands for a Null right
// operand.
func And(lhs Value, rhs func() Value) Value {
	if lb, ok := lhs.AsBool(); ok && !lb {
		return Bool(false)
	}
	if lhs.IsMissing() {
		return Missing()
	}
	if rhs == nil {
		return Null()
	}
	r := rhs()
	if rb, ok := r.AsBool(); ok && !rb {
		return Bool(false)
	}
	lb, lok := lhs.AsBool()
	rb, rok := r.AsBool()
	if lok && rok {
		return Bool(lb && rb)
	}
	return dominant(lhs, r)
}

// Or implements SQL three-valued OR with short-circuit evaluation:
// OR(true, X) never evaluates X.
func Or(lhs Value, rhs func() Value) Value {
	if lb, ok := lhs.AsBool(); ok && lb {
		return Bool(true)
	}
	if rhs == nil {
		return Null()
	}
	r := rhs()
	if rb, ok := r.AsBool(); ok && rb {
		return Bool(true)
	}
	lb, lok := lhs.AsBool()
	rb, rok := r.AsBool()
	if lok && rok {
		return Bool(lb || rb)
	}
	return dominant(lhs, r)
}

// Not implements three-valued logical negation.
func Not(v Value) Value {
	if b, ok := v.AsBool(); ok {
		return Bool(!b)
	}
	if v.IsMissing() {
		return Missing()
	}
	return Null()
}

// IsTrue reports whether v is exactly Boolean(true); this is the
// predicate the Filter operator uses: any other value, including
// Null and Missing, eliminates the row.
func IsTrue(v Value) bool {
	b, ok := v.AsBool()
	return ok && b
}
