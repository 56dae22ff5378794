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
	"testing"

	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/plan"
	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/reader/memreader"
	"github.com/partiqlgo/execore/value"
	"github.com/partiqlgo/execore/vector"
)

// newScan adds a Scan(t) node to g and returns its id; the caller
// chains Filter/Project/GroupBy nodes off of it.
func newScan(g *plan.Graph) plan.NodeID {
	scan := plan.NewNodeID()
	g.AddNode(&plan.Node{ID: scan, Op: plan.OpScan, As: "t"})
	return scan
}

func sinkGraph(g *plan.Graph, last plan.NodeID) *plan.Graph {
	sink := plan.NewNodeID()
	g.AddNode(&plan.Node{ID: sink, Op: plan.OpSink, Edges: []plan.Edge{{From: last}}})
	g.Sink = sink
	return g
}

func newMemReader(totalRows int64) reader.BatchReader {
	rd := memreader.New(totalRows, 4, nil) // a = 0..totalRows-1, b = a+100
	spec := &reader.ProjectionSpec{Targets: []reader.Target{
		{Name: "a", Type: vector.Int64, Source: reader.ByFieldPath("a")},
		{Name: "b", Type: vector.Int64, Source: reader.ByFieldPath("b")},
	}}
	if err := rd.SetProjection(spec); err != nil {
		panic(err)
	}
	return rd
}

func TestScanFilterProjectSink(t *testing.T) {
	g := plan.NewGraph()
	scan := newScan(g)
	filter := plan.NewNodeID()
	g.AddNode(&plan.Node{
		ID: filter, Op: plan.OpFilter, Edges: []plan.Edge{{From: scan}},
		FilterExpr: compile.Binary(compile.BinGt, compile.Column(0), compile.Literal(value.Int(5))),
	})
	project := plan.NewNodeID()
	g.AddNode(&plan.Node{
		ID: project, Op: plan.OpProject, Edges: []plan.Edge{{From: filter}},
		Aliases: []plan.Alias{{Name: "b", Expr: compile.Column(1)}},
	})
	sinkGraph(g, project)

	out, acc, err := New().Run(g, map[string]reader.BatchReader{"t": newMemReader(10)}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(acc.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", acc.Errors())
	}
	// a in {6,7,8,9} survive a>5, so b = a+100 in {106,107,108,109}.
	if out.RowCount != 4 {
		t.Fatalf("RowCount = %d, want 4", out.RowCount)
	}
	col := out.Column(0).Int64()
	want := []int64{106, 107, 108, 109}
	for i, w := range want {
		if col.At(i) != w {
			t.Fatalf("row %d = %d, want %d", i, col.At(i), w)
		}
	}
}

func TestFilterInstallsSelectionWithoutCompacting(t *testing.T) {
	g := plan.NewGraph()
	scan := newScan(g)
	filter := plan.NewNodeID()
	g.AddNode(&plan.Node{
		ID: filter, Op: plan.OpFilter, Edges: []plan.Edge{{From: scan}},
		FilterExpr: compile.Binary(compile.BinNe, compile.Column(0), compile.Literal(value.Int(3))),
	})
	sinkGraph(g, filter)

	out, _, err := New().Run(g, map[string]reader.BatchReader{"t": newMemReader(5)}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.RowCount != 5 {
		t.Fatalf("RowCount = %d, want 5 (Filter must not compact)", out.RowCount)
	}
	if out.SelectedCount() != 4 {
		t.Fatalf("SelectedCount = %d, want 4 (every row but a=3)", out.SelectedCount())
	}
	for _, i := range out.Selected() {
		if out.Column(0).Int64().At(i) == 3 {
			t.Fatalf("row a=3 should have been excluded from the selection vector")
		}
	}
}

func TestGroupByCountSumOverInt64Column(t *testing.T) {
	g := plan.NewGraph()
	scan := newScan(g)
	gb := plan.NewNodeID()
	g.AddNode(&plan.Node{
		ID: gb, Op: plan.OpGroupBy, Edges: []plan.Edge{{From: scan}},
		Aggregates: []plan.Aggregate{
			{Alias: "n", Kind: plan.AggCountStar},
			{Alias: "total", Kind: plan.AggSum, Expr: compile.Column(0)},
		},
	})
	sinkGraph(g, gb)

	out, _, err := New().Run(g, map[string]reader.BatchReader{"t": newMemReader(4)}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.RowCount != 1 {
		t.Fatalf("RowCount = %d, want 1 (keyless group)", out.RowCount)
	}
	if n := out.Column(0).Int64().At(0); n != 4 {
		t.Fatalf("COUNT(*) = %d, want 4", n)
	}
	// a = 0+1+2+3 = 6, widened to Float64 by SUM's result type.
	if sum := out.Column(1).Float64().At(0); sum != 6 {
		t.Fatalf("SUM(a) = %v, want 6", sum)
	}
}

func TestJoinIsRejected(t *testing.T) {
	g := plan.NewGraph()
	scan := newScan(g)
	join := plan.NewNodeID()
	g.AddNode(&plan.Node{ID: join, Op: plan.OpJoin, JoinKind: plan.JoinCross, Edges: []plan.Edge{{From: scan}, {From: scan, BranchNum: 1}}})
	sinkGraph(g, join)

	_, _, err := New().Run(g, map[string]reader.BatchReader{"t": newMemReader(1)}, false)
	if err == nil {
		t.Fatalf("expected Join to be rejected over scalar columns")
	}
}
