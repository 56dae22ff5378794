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

package main

import (
	"fmt"
	"strings"

	"github.com/partiqlgo/execore/vector"
)

// formatBatch renders a Batch the way the value-stream output renders
// a Bag of tuples, one line per selected row, so -engine=vectorized's
// output reads comparably to the other two engines'.
func formatBatch(b *vector.Batch) string {
	if b == nil {
		return "<<0 rows>>"
	}
	var lines []string
	for _, i := range b.Selected() {
		var cells []string
		for ci, col := range b.Schema.Columns {
			cells = append(cells, fmt.Sprintf("%s: %s", col.Name, cellString(b.Column(ci), i)))
		}
		lines = append(lines, "{"+strings.Join(cells, ", ")+"}")
	}
	return "<<" + strings.Join(lines, ", ") + ">>"
}

func cellString(pv vector.PhysicalVector, i int) string {
	switch pv.Type() {
	case vector.Int64:
		return fmt.Sprintf("%d", pv.Int64().At(i))
	case vector.Float64:
		return fmt.Sprintf("%g", pv.Float64().At(i))
	case vector.Boolean:
		return fmt.Sprintf("%t", pv.Bool().At(i))
	case vector.String:
		return pv.String().At(i)
	default:
		return "null"
	}
}
