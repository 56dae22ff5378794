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

package plan

import "github.com/partiqlgo/execore/compile"

// AggKind is one supported GroupBy aggregate function. The set is
// deliberately small: COUNT/SUM/MIN/MAX/AVG cover the aggregates an
// external planner is expected to lower a GROUP BY clause to.
type AggKind int

const (
	AggCount AggKind = iota
	AggCountStar
	AggSum
	AggMin
	AggMax
	AggAvg
)

func (k AggKind) String() string {
	names := [...]string{"COUNT", "COUNT(*)", "SUM", "MIN", "MAX", "AVG"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Aggregate is one alias->aggregate(expr) binding of a GroupBy node.
// AggCountStar ignores Expr. Every aggregate skips Missing inputs;
// an aggregate over a group with no non-Missing input is Null for
// SUM/MIN/MAX/AVG and Int(0) for COUNT/COUNT(*).
type Aggregate struct {
	Alias string
	Kind  AggKind
	Expr  *compile.Expr
}
