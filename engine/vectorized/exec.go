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

package vectorized

import (
	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/execerr"
	"github.com/partiqlgo/execore/internal/aggexec"
	"github.com/partiqlgo/execore/plan"
	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/value"
	"github.com/partiqlgo/execore/vector"
)

// Pipeline runs a plan.Graph restricted to the scalar-column operators
// the columnar layer can express: Scan, Filter, Project, GroupBy, Sink.
// Join/Unpivot/Distinct need a tuple/collection value model the batch
// layer does not have in this phase, and are rejected at run time.
type Pipeline struct{}

func New() *Pipeline { return &Pipeline{} }

// Run drains every Scan node's reader to exhaustion, concatenating its
// batches into one Batch, runs the graph over those Batches in
// topological order, and returns the Sink node's final Batch. readers is keyed by the Scan
// node's As binding, the only identifier a Scan node carries.
//
// A non-nil error means the graph was malformed or a Fatal error
// aborted the run; acc is still returned so its already-recorded
// Recoverable/Warning errors are not lost.
func (p *Pipeline) Run(g *plan.Graph, readers map[string]reader.BatchReader, strict bool) (*vector.Batch, *execerr.Accumulator, error) {
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	acc := &execerr.Accumulator{Strict: strict}

	results := make(map[plan.NodeID]*vector.Batch, len(g.Nodes))
	for _, id := range g.TopoOrder() {
		n := g.Nodes[id]
		in := gatherInput(n, results)
		b, err := p.execNode(n, in, readers, acc)
		if err != nil {
			return nil, acc, err
		}
		results[id] = b
	}
	return results[g.Sink], acc, nil
}

func gatherInput(n *plan.Node, results map[plan.NodeID]*vector.Batch) *vector.Batch {
	if len(n.Edges) == 0 {
		return nil
	}
	return results[n.Edges[0].From]
}

func (p *Pipeline) execNode(n *plan.Node, in *vector.Batch, readers map[string]reader.BatchReader, acc *execerr.Accumulator) (*vector.Batch, error) {
	switch n.Op {
	case plan.OpScan:
		return p.execScan(n, readers)
	case plan.OpFilter:
		return p.execFilter(n, in, acc)
	case plan.OpProject:
		return p.execProject(n, in, acc)
	case plan.OpGroupBy:
		return p.execGroupBy(n, in, acc)
	case plan.OpSink:
		return in, nil
	case plan.OpJoin, plan.OpUnpivot, plan.OpDistinct:
		return nil, fatalCompile("vectorized: %v is not supported over scalar columns", n.Op)
	default:
		return nil, fatalCompile("vectorized: unknown op %v", n.Op)
	}
}

// execScan pulls every batch from its bound reader to exhaustion,
// concatenating them into one materialized Batch: the reference
// pipeline trades the full pull-based laziness a production engine
// would want for the simplicity of letting every downstream operator
// work over one complete Batch.
func (p *Pipeline) execScan(n *plan.Node, readers map[string]reader.BatchReader) (*vector.Batch, error) {
	rd, ok := readers[n.As]
	if !ok {
		return nil, fatalEval("Scan(%s): no reader bound for this binding", n.As)
	}
	var batches []*vector.Batch
	for {
		b, err := rd.NextBatch()
		if err != nil {
			return nil, fatalEval("Scan(%s): %v", n.As, err)
		}
		if b == nil {
			break
		}
		batches = append(batches, b)
	}
	if len(batches) == 0 {
		return nil, nil
	}
	return concatBatches(batches), nil
}

func concatBatches(batches []*vector.Batch) *vector.Batch {
	schema := batches[0].Schema
	total := 0
	for _, b := range batches {
		total += b.SelectedCount()
	}
	out := vector.NewBatch(schema, total)
	row := 0
	for _, b := range batches {
		for _, i := range b.Selected() {
			for ci := range schema.Columns {
				setCell(out.Column(ci), row, b.Column(ci), i)
			}
			row++
		}
	}
	return out
}

func setCell(dst vector.PhysicalVector, di int, src vector.PhysicalVector, si int) {
	switch dst.Type() {
	case vector.Int64:
		dst.Int64().Set(di, src.Int64().At(si))
	case vector.Float64:
		dst.Float64().Set(di, src.Float64().At(si))
	case vector.Boolean:
		dst.Bool().Set(di, src.Bool().At(si))
	case vector.String:
		dst.String().Set(di, src.String().At(si))
	}
}

// execFilter installs a new selection vector over in rather than
// compacting, so downstream operators still see in's original column
// buffers alongside the narrower row list.
func (p *Pipeline) execFilter(n *plan.Node, in *vector.Batch, acc *execerr.Accumulator) (*vector.Batch, error) {
	prog, err := compile.LowerVector(n.FilterExpr, in.Schema)
	if err != nil {
		return nil, fatalCompile("Filter: %v", err)
	}
	pred, err := evalProgram(prog, in, acc)
	if err != nil {
		return nil, err
	}
	if pred.Type() != vector.Boolean {
		return nil, fatalEval("Filter: predicate did not evaluate to a boolean column")
	}
	out := &vector.Batch{Schema: in.Schema, RowCount: in.RowCount, Columns: in.Columns}
	bools := pred.Bool()
	var sel []int
	for _, i := range in.Selected() {
		if bools.At(i) {
			sel = append(sel, i)
		}
	}
	if err := out.SetSelection(sel); err != nil {
		return nil, fatalEval("Filter: %v", err)
	}
	return out, nil
}

// execProject always materializes a fresh schema over only the
// Selected() rows of in, so Filter's selection vector is consumed here
// rather than threaded further downstream.
func (p *Pipeline) execProject(n *plan.Node, in *vector.Batch, acc *execerr.Accumulator) (*vector.Batch, error) {
	sel := in.Selected()
	cols := make([]vector.Column, len(n.Aliases))
	progs := make([]*compile.VecProgram, len(n.Aliases))
	for i, a := range n.Aliases {
		prog, err := compile.LowerVector(a.Expr, in.Schema)
		if err != nil {
			return nil, fatalCompile("Project(%s): %v", a.Name, err)
		}
		progs[i] = prog
	}
	results := make([]vector.PhysicalVector, len(n.Aliases))
	for i, a := range n.Aliases {
		full, err := evalProgram(progs[i], in, acc)
		if err != nil {
			return nil, err
		}
		cols[i] = vector.Column{Name: a.Name, Type: full.Type()}
		results[i] = full
	}
	out := vector.NewBatch(&vector.Schema{Columns: cols}, len(sel))
	for ci := range cols {
		for ri, i := range sel {
			setCell(out.Column(ci), ri, results[ci], i)
		}
	}
	return out, nil
}

// execGroupBy evaluates every key/aggregate expression column-at-a-
// time, then folds row-at-a-time through internal/aggexec so the fold
// logic matches the other two engines exactly.
func (p *Pipeline) execGroupBy(n *plan.Node, in *vector.Batch, acc *execerr.Accumulator) (*vector.Batch, error) {
	sel := in.Selected()

	keyCols := make([]vector.PhysicalVector, len(n.GroupKeys))
	for i, k := range n.GroupKeys {
		prog, err := compile.LowerVector(k.Expr, in.Schema)
		if err != nil {
			return nil, fatalCompile("GroupBy key %s: %v", k.Name, err)
		}
		col, err := evalProgram(prog, in, acc)
		if err != nil {
			return nil, err
		}
		keyCols[i] = col
	}
	aggCols := make([]vector.PhysicalVector, len(n.Aggregates))
	for i, a := range n.Aggregates {
		if a.Kind == plan.AggCountStar {
			continue
		}
		prog, err := compile.LowerVector(a.Expr, in.Schema)
		if err != nil {
			return nil, fatalCompile("GroupBy aggregate %s: %v", a.Alias, err)
		}
		col, err := evalProgram(prog, in, acc)
		if err != nil {
			return nil, err
		}
		aggCols[i] = col
	}

	type group struct {
		keys []value.Value
		accs []aggexec.Accumulator
	}
	newGroup := func(keys []value.Value) *group {
		g := &group{keys: keys, accs: make([]aggexec.Accumulator, len(n.Aggregates))}
		for i, a := range n.Aggregates {
			g.accs[i] = aggexec.NewAccumulator(int(a.Kind))
		}
		return g
	}
	sameKeys := func(a, b []value.Value) bool {
		for i := range a {
			if !value.Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	}

	var groups []*group
	for _, row := range sel {
		keys := make([]value.Value, len(keyCols))
		for i, col := range keyCols {
			keys[i] = cellValue(col, row)
		}
		var g *group
		for _, cand := range groups {
			if sameKeys(cand.keys, keys) {
				g = cand
				break
			}
		}
		if g == nil {
			g = newGroup(keys)
			groups = append(groups, g)
		}
		for i, a := range n.Aggregates {
			if a.Kind == plan.AggCountStar {
				g.accs[i].Add(value.Bool(true))
				continue
			}
			g.accs[i].Add(cellValue(aggCols[i], row))
		}
	}
	if len(groups) == 0 && len(n.GroupKeys) == 0 {
		groups = append(groups, newGroup(nil))
	}

	cols := make([]vector.Column, 0, len(n.GroupKeys)+len(n.Aggregates))
	for i, k := range n.GroupKeys {
		cols = append(cols, vector.Column{Name: k.Name, Type: keyCols[i].Type()})
	}
	for i, a := range n.Aggregates {
		cols = append(cols, vector.Column{Name: a.Alias, Type: resultType(a, aggCols, i)})
	}

	out := vector.NewBatch(&vector.Schema{Columns: cols}, len(groups))
	for gi, g := range groups {
		ci := 0
		for range n.GroupKeys {
			setCellValue(out.Column(ci), gi, g.keys[ci])
			ci++
		}
		for i := range n.Aggregates {
			setCellValue(out.Column(ci), gi, g.accs[i].Result())
			ci++
		}
	}
	return out, nil
}

// resultType picks an aggregate's output column type: Int64 for
// COUNT/COUNT(*); Float64 for SUM/AVG, since aggexec returns a Real
// for AVG and for a SUM with any non-integer input; MIN/MAX keep the
// input column's own type.
func resultType(a plan.Aggregate, aggCols []vector.PhysicalVector, i int) vector.LogicalType {
	switch a.Kind {
	case plan.AggCount, plan.AggCountStar:
		return vector.Int64
	case plan.AggSum, plan.AggAvg:
		return vector.Float64
	default:
		return aggCols[i].Type()
	}
}

func cellValue(pv vector.PhysicalVector, i int) value.Value {
	switch pv.Type() {
	case vector.Int64:
		return value.Int(pv.Int64().At(i))
	case vector.Float64:
		return value.Real(pv.Float64().At(i))
	case vector.Boolean:
		return value.Bool(pv.Bool().At(i))
	case vector.String:
		return value.String(pv.String().At(i))
	default:
		return value.Null()
	}
}

// setCellValue writes v into dst's row i; an Int written to a Float64
// column is converted. Scalar columns have no null cell, so a Null or
// Missing v (e.g. SUM/MIN/MAX/AVG over a group with no non-Missing
// input) leaves the column type's zero value in the cell.
func setCellValue(dst vector.PhysicalVector, i int, v value.Value) {
	switch dst.Type() {
	case vector.Int64:
		n, _ := v.AsInt()
		dst.Int64().Set(i, n)
	case vector.Float64:
		if f, ok := v.AsReal(); ok {
			dst.Float64().Set(i, f)
		} else if n, ok := v.AsInt(); ok {
			dst.Float64().Set(i, float64(n))
		}
	case vector.Boolean:
		b, _ := v.AsBool()
		dst.Bool().Set(i, b)
	case vector.String:
		s, _ := v.AsString()
		dst.String().Set(i, s)
	}
}
