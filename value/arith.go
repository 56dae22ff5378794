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

import "errors"

// ErrDivideByZero is returned by DivI64 when the divisor is zero;
// the legacy and hybrid engines record it as a Recoverable error and
// substitute Null.
var ErrDivideByZero = errors.New("division by zero")

// ErrOverflow is returned when an i64 arithmetic operation overflows.
var ErrOverflow = errors.New("integer overflow")

// AddI64 adds two int64 values, detecting overflow.
func AddI64(a, b int64) (int64, error) {
	r := a + b
	if (r > a) != (b > 0) {
		return 0, ErrOverflow
	}
	return r, nil
}

// SubI64 subtracts two int64 values, detecting overflow.
func SubI64(a, b int64) (int64, error) {
	r := a - b
	if (r < a) != (b > 0) {
		return 0, ErrOverflow
	}
	return r, nil
}

// MulI64 multiplies two int64 values, detecting overflow.
func MulI64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	r := a * b
	if r/b != a {
		return 0, ErrOverflow
	}
	return r, nil
}

// DivI64 divides two int64 values.
func DivI64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}
