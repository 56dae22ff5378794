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

package hybrid

import (
	"testing"

	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/plan"
	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/reader/tuplereader"
	"github.com/partiqlgo/execore/value"
)

func scanReader(rows []*value.Tuple) reader.RowReader { return tuplereader.New(rows) }

func newScanNode(g *plan.Graph, alias string) plan.NodeID {
	id := plan.NewNodeID()
	g.AddNode(&plan.Node{ID: id, Op: plan.OpScan, As: alias})
	return id
}

func sinkGraph(g *plan.Graph, last plan.NodeID) *plan.Graph {
	sink := plan.NewNodeID()
	g.AddNode(&plan.Node{ID: sink, Op: plan.OpSink, Edges: []plan.Edge{{From: last}}})
	g.Sink = sink
	return g
}

func TestScanFilterProjectSink(t *testing.T) {
	rows := []*value.Tuple{
		value.NewTuple().Set("a", value.Int(1)).Set("b", value.Int(101)),
		value.NewTuple().Set("a", value.Int(6)).Set("b", value.Int(106)),
		value.NewTuple().Set("a", value.Int(7)).Set("b", value.Int(107)),
	}
	g := plan.NewGraph()
	scan := newScanNode(g, "t")
	filter := plan.NewNodeID()
	g.AddNode(&plan.Node{
		ID: filter, Op: plan.OpFilter, Edges: []plan.Edge{{From: scan}},
		FilterExpr: compile.Binary(compile.BinGt, compile.Path("t", "a"), compile.Literal(value.Int(5))),
	})
	project := plan.NewNodeID()
	g.AddNode(&plan.Node{
		ID: project, Op: plan.OpProject, Edges: []plan.Edge{{From: filter}},
		Aliases: []plan.Alias{{Name: "b", Expr: compile.Path("t", "b")}},
	})
	sinkGraph(g, project)

	readers := map[string]reader.RowReader{"t": scanReader(rows)}
	out, acc, err := New(compile.StandardBuiltins()).Run(g, readers, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(acc.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", acc.Errors())
	}
	elems, ok := out.Elements()
	if !ok || len(elems) != 2 {
		t.Fatalf("want 2 rows with a>5, got %v", out)
	}
	for i, want := range []int64{106, 107} {
		rt, _ := elems[i].AsTuple()
		b, _ := rt.Get("b")
		got, _ := b.AsInt()
		if got != want {
			t.Fatalf("row %d b = %d, want %d", i, got, want)
		}
	}
}

func TestFilterOrderedComparison(t *testing.T) {
	rows := []*value.Tuple{
		value.NewTuple().Set("a", value.Int(1)),
		value.NewTuple().Set("a", value.Int(2)),
		value.NewTuple().Set("a", value.Int(3)),
	}
	g := plan.NewGraph()
	scan := newScanNode(g, "t")
	filter := plan.NewNodeID()
	g.AddNode(&plan.Node{
		ID: filter, Op: plan.OpFilter, Edges: []plan.Edge{{From: scan}},
		FilterExpr: compile.Binary(compile.BinGe, compile.Path("t", "a"), compile.Literal(value.Int(2))),
	})
	sinkGraph(g, filter)

	readers := map[string]reader.RowReader{"t": scanReader(rows)}
	out, _, err := New(compile.StandardBuiltins()).Run(g, readers, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elems, ok := out.Elements()
	if !ok || len(elems) != 2 {
		t.Fatalf("want 2 rows with a>=2, got %v", out)
	}
}

func TestGroupByCountSumOverInt64Column(t *testing.T) {
	rows := []*value.Tuple{
		value.NewTuple().Set("a", value.Int(0)),
		value.NewTuple().Set("a", value.Int(1)),
		value.NewTuple().Set("a", value.Int(2)),
		value.NewTuple().Set("a", value.Int(3)),
	}
	g := plan.NewGraph()
	scan := newScanNode(g, "t")
	gb := plan.NewNodeID()
	g.AddNode(&plan.Node{
		ID: gb, Op: plan.OpGroupBy, Edges: []plan.Edge{{From: scan}},
		Aggregates: []plan.Aggregate{
			{Alias: "n", Kind: plan.AggCountStar},
			{Alias: "total", Kind: plan.AggSum, Expr: compile.Path("t", "a")},
		},
	})
	sinkGraph(g, gb)

	readers := map[string]reader.RowReader{"t": scanReader(rows)}
	out, _, err := New(compile.StandardBuiltins()).Run(g, readers, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elems, ok := out.Elements()
	if !ok || len(elems) != 1 {
		t.Fatalf("want 1 keyless group, got %v", out)
	}
	row, _ := elems[0].AsTuple()
	n, _ := row.Get("n")
	if i, _ := n.AsInt(); i != 4 {
		t.Fatalf("COUNT(*) = %v, want 4", n)
	}
	total, _ := row.Get("total")
	if i, _ := total.AsInt(); i != 6 {
		t.Fatalf("SUM(a) = %v, want 6", total)
	}
}

func TestJoinCrossProduct(t *testing.T) {
	left := []*value.Tuple{
		value.NewTuple().Set("x", value.Int(1)),
		value.NewTuple().Set("x", value.Int(2)),
	}
	right := []*value.Tuple{
		value.NewTuple().Set("y", value.Int(10)),
		value.NewTuple().Set("y", value.Int(20)),
	}
	g := plan.NewGraph()
	l := newScanNode(g, "l")
	r := newScanNode(g, "r")
	join := plan.NewNodeID()
	g.AddNode(&plan.Node{
		ID: join, Op: plan.OpJoin, JoinKind: plan.JoinCross,
		Edges: []plan.Edge{{From: l, BranchNum: 0}, {From: r, BranchNum: 1}},
	})
	sinkGraph(g, join)

	readers := map[string]reader.RowReader{"l": scanReader(left), "r": scanReader(right)}
	out, _, err := New(compile.StandardBuiltins()).Run(g, readers, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elems, ok := out.Elements()
	if !ok || len(elems) != 4 {
		t.Fatalf("cross join of 2x2 want 4 rows, got %v", out)
	}
}

func TestDistinctDeduplicatesRows(t *testing.T) {
	rows := []*value.Tuple{
		value.NewTuple().Set("a", value.Int(1)),
		value.NewTuple().Set("a", value.Int(1)),
		value.NewTuple().Set("a", value.Int(2)),
	}
	g := plan.NewGraph()
	scan := newScanNode(g, "t")
	distinct := plan.NewNodeID()
	g.AddNode(&plan.Node{ID: distinct, Op: plan.OpDistinct, Edges: []plan.Edge{{From: scan}}})
	sinkGraph(g, distinct)

	readers := map[string]reader.RowReader{"t": scanReader(rows)}
	out, _, err := New(compile.StandardBuiltins()).Run(g, readers, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elems, ok := out.Elements()
	if !ok || len(elems) != 2 {
		t.Fatalf("want 2 distinct rows, got %v", out)
	}
}
