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
	"testing"

	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/plan"
	"github.com/partiqlgo/execore/value"
)

// numbers is a Scan source literal: a list of 1..5.
func numbers() *compile.Expr {
	items := make([]value.Value, 5)
	for i := range items {
		items[i] = value.Int(int64(i + 1))
	}
	return compile.Literal(value.List(items))
}

func TestScanFilterProjectSink(t *testing.T) {
	g := plan.NewGraph()

	scan := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpScan, ScanExpr: numbers(), As: "n"}
	g.AddNode(scan)

	filter := &plan.Node{
		ID:         plan.NewNodeID(),
		Op:         plan.OpFilter,
		Edges:      []plan.Edge{{From: scan.ID}},
		FilterExpr: compile.Binary(compile.BinGt, compile.Path("n"), compile.Literal(value.Int(2))),
	}
	g.AddNode(filter)

	project := &plan.Node{
		ID:    plan.NewNodeID(),
		Op:    plan.OpProject,
		Edges: []plan.Edge{{From: filter.ID}},
		Aliases: []plan.Alias{
			{Name: "doubled", Expr: compile.Binary(compile.BinMul, compile.Path("n"), compile.Literal(value.Int(2)))},
		},
	}
	g.AddNode(project)

	sink := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpSink, Edges: []plan.Edge{{From: project.ID}}}
	g.AddNode(sink)
	g.Sink = sink.ID

	ev := New(compile.StandardBuiltins(), value.SystemContext{})
	result, acc, err := ev.Run(g, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(acc.Errors()) != 0 {
		t.Fatalf("unexpected recorded errors: %v", acc.Errors())
	}

	elems, ok := result.Elements()
	if !ok || len(elems) != 3 {
		t.Fatalf("want 3 rows (n=3,4,5), got %v", result)
	}
	want := map[int64]bool{6: true, 8: true, 10: true}
	for _, row := range elems {
		tup, ok := row.AsTuple()
		if !ok {
			t.Fatalf("row %v is not a tuple", row)
		}
		v, ok := tup.Get("doubled")
		if !ok {
			t.Fatalf("row %v missing doubled", row)
		}
		i, _ := v.AsInt()
		if !want[i] {
			t.Fatalf("unexpected doubled value %d", i)
		}
	}
}

func TestFilterEliminatesNullAndMissing(t *testing.T) {
	g := plan.NewGraph()
	items := []value.Value{value.Bool(true), value.Bool(false), value.Null(), value.Missing()}
	scan := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpScan, ScanExpr: compile.Literal(value.List(items)), As: "b"}
	g.AddNode(scan)

	filter := &plan.Node{
		ID:         plan.NewNodeID(),
		Op:         plan.OpFilter,
		Edges:      []plan.Edge{{From: scan.ID}},
		FilterExpr: compile.Path("b"),
	}
	g.AddNode(filter)
	sink := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpSink, Edges: []plan.Edge{{From: filter.ID}}}
	g.AddNode(sink)
	g.Sink = sink.ID

	ev := New(compile.StandardBuiltins(), value.SystemContext{})
	result, _, err := ev.Run(g, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elems, _ := result.Elements()
	if len(elems) != 1 {
		t.Fatalf("want exactly the single true row, got %d rows", len(elems))
	}
}

func TestJoinCross(t *testing.T) {
	g := plan.NewGraph()
	left := &plan.Node{
		ID: plan.NewNodeID(), Op: plan.OpScan,
		ScanExpr: compile.Literal(value.List([]value.Value{value.Int(1), value.Int(2)})), As: "a",
	}
	right := &plan.Node{
		ID: plan.NewNodeID(), Op: plan.OpScan,
		ScanExpr: compile.Literal(value.List([]value.Value{value.Int(10), value.Int(20)})), As: "b",
	}
	g.AddNode(left)
	g.AddNode(right)

	join := &plan.Node{
		ID:       plan.NewNodeID(),
		Op:       plan.OpJoin,
		Edges:    []plan.Edge{{From: left.ID, BranchNum: 0}, {From: right.ID, BranchNum: 1}},
		JoinKind: plan.JoinCross,
	}
	g.AddNode(join)
	sink := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpSink, Edges: []plan.Edge{{From: join.ID}}}
	g.AddNode(sink)
	g.Sink = sink.ID

	ev := New(compile.StandardBuiltins(), value.SystemContext{})
	result, _, err := ev.Run(g, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elems, _ := result.Elements()
	if len(elems) != 4 {
		t.Fatalf("cross join of 2x2 want 4 rows, got %d", len(elems))
	}
}

func TestJoinReservedKindRejected(t *testing.T) {
	g := plan.NewGraph()
	left := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpScan, ScanExpr: compile.Literal(value.List(nil)), As: "a"}
	right := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpScan, ScanExpr: compile.Literal(value.List(nil)), As: "b"}
	g.AddNode(left)
	g.AddNode(right)
	join := &plan.Node{
		ID:       plan.NewNodeID(),
		Op:       plan.OpJoin,
		Edges:    []plan.Edge{{From: left.ID, BranchNum: 0}, {From: right.ID, BranchNum: 1}},
		JoinKind: plan.JoinLeft,
	}
	g.AddNode(join)
	sink := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpSink, Edges: []plan.Edge{{From: join.ID}}}
	g.AddNode(sink)
	g.Sink = sink.ID

	ev := New(compile.StandardBuiltins(), value.SystemContext{})
	if _, _, err := ev.Run(g, nil, false); err == nil {
		t.Fatalf("expected Left join to be rejected as reserved")
	}
}

func TestGroupByCountSum(t *testing.T) {
	g := plan.NewGraph()
	rowsLit := []value.Value{
		value.TupleVal(value.NewTuple().Set("k", value.String("x")).Set("v", value.Int(10))),
		value.TupleVal(value.NewTuple().Set("k", value.String("x")).Set("v", value.Int(20))),
		value.TupleVal(value.NewTuple().Set("k", value.String("y")).Set("v", value.Missing())),
	}
	scan := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpScan, ScanExpr: compile.Literal(value.Bag(rowsLit)), As: "r"}
	g.AddNode(scan)

	groupBy := &plan.Node{
		ID:        plan.NewNodeID(),
		Op:        plan.OpGroupBy,
		Edges:     []plan.Edge{{From: scan.ID}},
		GroupKeys: []plan.Alias{{Name: "k", Expr: compile.Path("r", "k")}},
		Aggregates: []plan.Aggregate{
			{Alias: "n", Kind: plan.AggCount, Expr: compile.Path("r", "v")},
			{Alias: "total", Kind: plan.AggSum, Expr: compile.Path("r", "v")},
		},
	}
	g.AddNode(groupBy)
	sink := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpSink, Edges: []plan.Edge{{From: groupBy.ID}}}
	g.AddNode(sink)
	g.Sink = sink.ID

	ev := New(compile.StandardBuiltins(), value.SystemContext{})
	result, _, err := ev.Run(g, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elems, _ := result.Elements()
	if len(elems) != 2 {
		t.Fatalf("want 2 groups, got %d", len(elems))
	}
	for _, row := range elems {
		tup, _ := row.AsTuple()
		k, _ := tup.Get("k")
		ks, _ := k.AsString()
		n, _ := tup.Get("n")
		total, _ := tup.Get("total")
		switch ks {
		case "x":
			if i, _ := n.AsInt(); i != 2 {
				t.Fatalf("group x: count = %v, want 2", n)
			}
			if i, _ := total.AsInt(); i != 30 {
				t.Fatalf("group x: total = %v, want 30", total)
			}
		case "y":
			if i, _ := n.AsInt(); i != 0 {
				t.Fatalf("group y: count = %v, want 0 (Missing skipped)", n)
			}
			if !total.IsNull() {
				t.Fatalf("group y: total = %v, want Null (no non-Missing input)", total)
			}
		default:
			t.Fatalf("unexpected group key %q", ks)
		}
	}
}

func TestDistinctCollapsesEqualValues(t *testing.T) {
	g := plan.NewGraph()
	items := []value.Value{value.Int(1), value.Int(1), value.Int(2)}
	scan := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpScan, ScanExpr: compile.Literal(value.Bag(items)), As: "n"}
	g.AddNode(scan)
	projVal := &plan.Node{
		ID: plan.NewNodeID(), Op: plan.OpProjectValue,
		Edges: []plan.Edge{{From: scan.ID}}, ValueExpr: compile.Path("n"),
	}
	g.AddNode(projVal)
	distinct := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpDistinct, Edges: []plan.Edge{{From: projVal.ID}}}
	g.AddNode(distinct)
	sink := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpSink, Edges: []plan.Edge{{From: distinct.ID}}}
	g.AddNode(sink)
	g.Sink = sink.ID

	ev := New(compile.StandardBuiltins(), value.SystemContext{})
	result, _, err := ev.Run(g, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elems, _ := result.Elements()
	if len(elems) != 2 {
		t.Fatalf("want 2 distinct values, got %d", len(elems))
	}
}

func TestUnpivotEmitsFieldRows(t *testing.T) {
	g := plan.NewGraph()
	tup := value.NewTuple().Set("a", value.Int(1)).Set("b", value.Int(2))
	unpivot := &plan.Node{
		ID: plan.NewNodeID(), Op: plan.OpUnpivot,
		ScanExpr: compile.Literal(value.TupleVal(tup)), As: "val", At: "key",
	}
	g.AddNode(unpivot)
	sink := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpSink, Edges: []plan.Edge{{From: unpivot.ID}}}
	g.AddNode(sink)
	g.Sink = sink.ID

	ev := New(compile.StandardBuiltins(), value.SystemContext{})
	result, _, err := ev.Run(g, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elems, _ := result.Elements()
	if len(elems) != 2 {
		t.Fatalf("want 2 field rows, got %d", len(elems))
	}
	seen := map[string]int64{}
	for _, row := range elems {
		rt, _ := row.AsTuple()
		k, _ := rt.Get("key")
		v, _ := rt.Get("val")
		ks, _ := k.AsString()
		vi, _ := v.AsInt()
		seen[ks] = vi
	}
	if seen["a"] != 1 || seen["b"] != 2 {
		t.Fatalf("unexpected unpivot output: %v", seen)
	}
}

func TestStrictModeSuppressesOnRecoverableError(t *testing.T) {
	g := plan.NewGraph()
	scan := &plan.Node{
		ID: plan.NewNodeID(), Op: plan.OpScan,
		ScanExpr: compile.Literal(value.List([]value.Value{value.String("not a number")})), As: "n",
	}
	g.AddNode(scan)
	projVal := &plan.Node{
		ID: plan.NewNodeID(), Op: plan.OpProjectValue,
		Edges:     []plan.Edge{{From: scan.ID}},
		ValueExpr: compile.Binary(compile.BinAdd, compile.Path("n"), compile.Literal(value.Int(1))),
	}
	g.AddNode(projVal)
	sink := &plan.Node{ID: plan.NewNodeID(), Op: plan.OpSink, Edges: []plan.Edge{{From: projVal.ID}}}
	g.AddNode(sink)
	g.Sink = sink.ID

	ev := New(compile.StandardBuiltins(), value.SystemContext{})
	_, acc, err := ev.Run(g, nil, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(acc.Errors()) == 0 {
		t.Fatalf("expected a recorded type-conversion error")
	}
	if !acc.Suppressed() {
		t.Fatalf("strict mode should suppress output after a Recoverable error")
	}
}
