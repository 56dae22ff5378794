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

// Package aggexec implements the GroupBy aggregate accumulators
// shared by all three execution engines, so COUNT/SUM/MIN/MAX/AVG
// behave identically whether a group is built tuple-at-a-time,
// batch-at-a-time, or row-at-a-time.
package aggexec

import "github.com/partiqlgo/execore/value"

// Accumulator folds a stream of per-row values into one aggregate
// result. Engines pass every row's value to Add, Missing included;
// each accumulator except COUNT(*) skips Missing inputs itself.
type Accumulator interface {
	Add(v value.Value)
	Result() value.Value
}

// NewAccumulator constructs an Accumulator for kind, identified by
// plan.AggKind's integer encoding (kept untyped here so this package
// does not import plan and create a cycle; engines pass the int
// directly from the Aggregate they are evaluating).
func NewAccumulator(kind int) Accumulator {
	switch kind {
	case 0: // AggCount
		return &countAcc{}
	case 1: // AggCountStar
		return &countStarAcc{}
	case 2: // AggSum
		return &sumAcc{}
	case 3: // AggMin
		return &minMaxAcc{min: true}
	case 4: // AggMax
		return &minMaxAcc{min: false}
	case 5: // AggAvg
		return &avgAcc{}
	default:
		return &countAcc{}
	}
}

type countAcc struct{ n int64 }

func (a *countAcc) Add(v value.Value) {
	if !v.IsMissing() {
		a.n++
	}
}
func (a *countAcc) Result() value.Value { return value.Int(a.n) }

type countStarAcc struct{ n int64 }

func (a *countStarAcc) Add(value.Value) { a.n++ }
func (a *countStarAcc) Result() value.Value { return value.Int(a.n) }

type sumAcc struct {
	sum  float64
	isum int64
	seen bool
	allI bool
}

func (a *sumAcc) Add(v value.Value) {
	if v.IsMissing() || v.IsNull() {
		return
	}
	if !a.seen {
		a.allI = true
		a.seen = true
	}
	if i, ok := v.AsInt(); ok {
		a.isum += i
		a.sum += float64(i)
		return
	}
	if f, ok := v.AsReal(); ok {
		a.allI = false
		a.sum += f
	}
}

func (a *sumAcc) Result() value.Value {
	if !a.seen {
		return value.Null()
	}
	if a.allI {
		return value.Int(a.isum)
	}
	return value.Real(a.sum)
}

type minMaxAcc struct {
	min  bool
	val  value.Value
	seen bool
}

func (a *minMaxAcc) Add(v value.Value) {
	if v.IsMissing() || v.IsNull() {
		return
	}
	if !a.seen {
		a.val = v
		a.seen = true
		return
	}
	cmp := value.Compare(v, a.val)
	if (a.min && cmp < 0) || (!a.min && cmp > 0) {
		a.val = v
	}
}

func (a *minMaxAcc) Result() value.Value {
	if !a.seen {
		return value.Null()
	}
	return a.val
}

type avgAcc struct {
	sum  float64
	n    int64
	seen bool
}

func (a *avgAcc) Add(v value.Value) {
	if v.IsMissing() || v.IsNull() {
		return
	}
	a.seen = true
	if i, ok := v.AsInt(); ok {
		a.sum += float64(i)
		a.n++
		return
	}
	if f, ok := v.AsReal(); ok {
		a.sum += f
		a.n++
	}
}

func (a *avgAcc) Result() value.Value {
	if !a.seen || a.n == 0 {
		return value.Null()
	}
	return value.Real(a.sum / float64(a.n))
}
