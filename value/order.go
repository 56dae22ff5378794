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

// typeOrder gives the total-ordering rank of a Kind, used when values
// of unrelated categories are compared: lower rank sorts first.
// Null sorts before everything, Missing is excluded from ordering
// (comparisons involving Missing yield Null, never a definite order).
func typeOrder(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt, KindReal, KindDecimal:
		return 2
	case KindDateTime:
		return 3
	case KindString:
		return 4
	case KindList:
		return 5
	case KindBag:
		return 6
	case KindTuple:
		return 7
	case KindEmbeddedDoc:
		return 8
	default:
		return 9
	}
}

func isNumeric(k Kind) bool {
	return k == KindInt || k == KindReal || k == KindDecimal
}

func numericValue(v Value) (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindReal:
		return v.f, true
	case KindDecimal:
		if v.dec == nil {
			return 0, true
		}
		f, _ := v.dec.Float64()
		return f, true
	default:
		return 0, false
	}
}

// Equal implements value equality with SQL numeric promotion across
// Int/Real/Decimal, and order-independent structural equality for
// Tuple and Bag (List remains order-sensitive). Null/Missing are
// equal only to themselves, never to each other.
func Equal(a, b Value) bool {
	if isNumeric(a.kind) && isNumeric(b.kind) {
		af, _ := numericValue(a)
		bf, _ := numericValue(b)
		return af == bf
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull, KindMissing:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindDateTime:
		return a.dt.Equal(b.dt)
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindBag:
		return bagEqual(a.bag, b.bag)
	case KindTuple:
		return tupleEqual(a.tup, b.tup)
	case KindEmbeddedDoc:
		return string(a.doc.Bytes) == string(b.doc.Bytes)
	default:
		return false
	}
}

func tupleEqual(a, b *Tuple) bool {
	if a.Len() != b.Len() {
		return false
	}
	matched := make([]bool, b.Len())
	ok := true
	a.Each(func(k string, v Value) {
		if !ok {
			return
		}
		found := false
		for i := 0; i < b.Len(); i++ {
			if matched[i] {
				continue
			}
			bk, bv := b.Field(i)
			if bk == k && Equal(v, bv) {
				matched[i] = true
				found = true
				break
			}
		}
		if !found {
			ok = false
		}
	})
	return ok
}

// bagEqual compares two bags as multisets: every element of a must
// have a matching, not-yet-consumed element in b, and vice versa.
func bagEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for i, bv := range b {
			if used[i] {
				continue
			}
			if Equal(av, bv) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Comparable reports whether a and b belong to a category the
// comparison operators (Lt/Gt/Eq/...) will order directly: both
// numeric, or the same orderable scalar kind. Cross-category pairs
// are still given a (total, but arbitrary) relative order by Compare
// for internal uses like ORDER BY/Distinct key normalization, but
// expression-level comparisons must treat a false Comparable as
// "yields Null".
func Comparable(a, b Value) bool {
	if isNumeric(a.kind) && isNumeric(b.kind) {
		return true
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool, KindString, KindDateTime:
		return true
	default:
		return false
	}
}

// Compare implements the total ordering used by ORDER BY and by
// Distinct/GroupBy key normalization. It always returns a
// definite -1/0/1, even across unrelated categories (ordered by
// typeOrder bucket) and within a bucket of unordered collections
// (ordered by equality, then by string rendering as a tiebreak so the
// order is total and stable). Expression-level `<`/`>` must not call
// Compare directly for cross-category operands — see Comparable.
func Compare(a, b Value) int {
	if isNumeric(a.kind) && isNumeric(b.kind) {
		af, _ := numericValue(a)
		bf, _ := numericValue(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	if a.kind != b.kind {
		ra, rb := typeOrder(a.kind), typeOrder(b.kind)
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		default:
			return 0
		}
	}
	switch a.kind {
	case KindNull, KindMissing:
		return 0
	case KindBool:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	case KindString:
		switch {
		case a.s < b.s:
			return -1
		case a.s > b.s:
			return 1
		default:
			return 0
		}
	case KindDateTime:
		switch {
		case a.dt.Before(b.dt):
			return -1
		case a.dt.After(b.dt):
			return 1
		default:
			return 0
		}
	default:
		// Collections and embedded docs have no canonical element
		// order; fall back to equality, then a stable string-
		// rendering tiebreak so the order stays total.
		if Equal(a, b) {
			return 0
		}
		as, bs := a.String(), b.String()
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
}
