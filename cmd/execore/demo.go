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
	"sort"

	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/plan"
	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/reader/memreader"
	"github.com/partiqlgo/execore/value"
	"github.com/partiqlgo/execore/vector"
)

// No SQL frontend exists in this repository (parsing, name resolution
// and the logical-plan builder are external collaborators), so the
// REPL's "query string" is one of these plan-graph names rather than
// free-form PartiQL text. The legacy and hybrid engines read their
// source as a literal collection (no reader binding needed); the
// vectorized engine instead reads the equivalent shape off a bound
// reader.BatchReader, since its Scan has no literal fallback.
var literalQueries = map[string]func() *plan.Graph{
	"scan":     scanQuery,
	"filter":   filterQuery,
	"groupby":  groupByQuery,
	"join":     joinQuery,
	"distinct": distinctQuery,
	"unpivot":  unpivotQuery,
}

func demoNames() []string {
	names := make([]string, 0, len(literalQueries))
	for n := range literalQueries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// sourceRows literally builds the (a, b) = (i, i+100) source every
// literal demo query reads from, matching memreader.LinearGenerator's
// shape so the vectorized demo below agrees on what "the data" looks
// like.
func sourceRows(n int) value.Value {
	rows := make([]value.Value, n)
	for i := 0; i < n; i++ {
		rows[i] = value.TupleVal(value.NewTuple().
			Set("a", value.Int(int64(i))).
			Set("b", value.Int(int64(i+100))))
	}
	return value.Bag(rows)
}

func addNode(g *plan.Graph, n *plan.Node) plan.NodeID {
	n.ID = plan.NewNodeID()
	g.AddNode(n)
	return n.ID
}

func sink(g *plan.Graph, last plan.NodeID) {
	id := plan.NewNodeID()
	g.AddNode(&plan.Node{ID: id, Op: plan.OpSink, Edges: []plan.Edge{{From: last}}})
	g.Sink = id
}

func scanNode(g *plan.Graph, as string) plan.NodeID {
	return addNode(g, &plan.Node{
		Op:       plan.OpScan,
		ScanExpr: compile.Literal(sourceRows(10)),
		As:       as,
	})
}

// scanQuery: SELECT t FROM source AS t.
func scanQuery() *plan.Graph {
	g := plan.NewGraph()
	sink(g, scanNode(g, "t"))
	return g
}

// filterQuery: SELECT t FROM source AS t WHERE t.a > 5.
func filterQuery() *plan.Graph {
	g := plan.NewGraph()
	scan := scanNode(g, "t")
	filter := addNode(g, &plan.Node{
		Op:         plan.OpFilter,
		Edges:      []plan.Edge{{From: scan}},
		FilterExpr: compile.Binary(compile.BinGt, compile.Path("t", "a"), compile.Literal(value.Int(5))),
	})
	sink(g, filter)
	return g
}

// groupByQuery: SELECT COUNT(*) AS n, SUM(t.a) AS total FROM source AS t.
func groupByQuery() *plan.Graph {
	g := plan.NewGraph()
	scan := scanNode(g, "t")
	gb := addNode(g, &plan.Node{
		Op:    plan.OpGroupBy,
		Edges: []plan.Edge{{From: scan}},
		Aggregates: []plan.Aggregate{
			{Alias: "n", Kind: plan.AggCountStar},
			{Alias: "total", Kind: plan.AggSum, Expr: compile.Path("t", "a")},
		},
	})
	sink(g, gb)
	return g
}

// joinQuery: SELECT * FROM source AS l, source AS r WHERE l.a = r.a.
func joinQuery() *plan.Graph {
	g := plan.NewGraph()
	l := scanNode(g, "l")
	r := scanNode(g, "r")
	join := addNode(g, &plan.Node{
		Op:       plan.OpJoin,
		JoinKind: plan.JoinInner,
		Edges:    []plan.Edge{{From: l, BranchNum: 0}, {From: r, BranchNum: 1}},
		On:       compile.Binary(compile.BinEq, compile.Path("l", "a"), compile.Path("r", "a")),
	})
	sink(g, join)
	return g
}

// distinctQuery: SELECT DISTINCT (t.a > 5) AS bucket FROM source AS t,
// a guaranteed-duplicate boolean bucket since there is no modulo
// builtin to bucket on more interestingly.
func distinctQuery() *plan.Graph {
	g := plan.NewGraph()
	scan := scanNode(g, "t")
	proj := addNode(g, &plan.Node{
		Op:    plan.OpProject,
		Edges: []plan.Edge{{From: scan}},
		Aliases: []plan.Alias{
			{Name: "bucket", Expr: compile.Binary(compile.BinGt, compile.Path("t", "a"), compile.Literal(value.Int(5)))},
		},
	})
	distinct := addNode(g, &plan.Node{Op: plan.OpDistinct, Edges: []plan.Edge{{From: proj}}})
	sink(g, distinct)
	return g
}

// unpivotQuery: SELECT k, v FROM UNPIVOT {'x': 1, 'y': 2} AS v AT k.
func unpivotQuery() *plan.Graph {
	g := plan.NewGraph()
	lit := value.NewTuple().Set("x", value.Int(1)).Set("y", value.Int(2))
	unpivot := addNode(g, &plan.Node{
		Op:       plan.OpUnpivot,
		ScanExpr: compile.Literal(value.TupleVal(lit)),
		As:       "v",
		At:       "k",
	})
	sink(g, unpivot)
	return g
}

// vectorizedQuery builds the demo graph named by name against the
// columnar engine's operator subset. "scan"/"filter"/"groupby" address
// columns by schema index since the vector-op lowering target resolves
// ExprColumn/ExprPath against a batch schema, not a tuple alias, and
// read through a bound reader.BatchReader rather than a literal
// ScanExpr (vectorized's Scan has no literal fallback). "join",
// "unpivot" and "distinct" build a minimal stub: the columnar pipeline
// rejects those three operators before compiling any expression, so
// the stub only needs a valid Scan predecessor to demonstrate that
// rejection end to end.
func vectorizedQuery(name string) (*plan.Graph, error) {
	switch name {
	case "scan":
		g := plan.NewGraph()
		sink(g, addNode(g, &plan.Node{Op: plan.OpScan, As: "t"}))
		return g, nil
	case "filter":
		g := plan.NewGraph()
		scan := addNode(g, &plan.Node{Op: plan.OpScan, As: "t"})
		filter := addNode(g, &plan.Node{
			Op:         plan.OpFilter,
			Edges:      []plan.Edge{{From: scan}},
			FilterExpr: compile.Binary(compile.BinGt, compile.Column(0), compile.Literal(value.Int(5))),
		})
		proj := addNode(g, &plan.Node{
			Op:      plan.OpProject,
			Edges:   []plan.Edge{{From: filter}},
			Aliases: []plan.Alias{{Name: "b", Expr: compile.Column(1)}},
		})
		sink(g, proj)
		return g, nil
	case "groupby":
		g := plan.NewGraph()
		scan := addNode(g, &plan.Node{Op: plan.OpScan, As: "t"})
		gb := addNode(g, &plan.Node{
			Op:    plan.OpGroupBy,
			Edges: []plan.Edge{{From: scan}},
			Aggregates: []plan.Aggregate{
				{Alias: "n", Kind: plan.AggCountStar},
				{Alias: "total", Kind: plan.AggSum, Expr: compile.Column(0)},
			},
		})
		sink(g, gb)
		return g, nil
	case "join", "unpivot", "distinct":
		g := plan.NewGraph()
		scan := addNode(g, &plan.Node{Op: plan.OpScan, As: "t"})
		op := map[string]plan.Op{"join": plan.OpJoin, "unpivot": plan.OpUnpivot, "distinct": plan.OpDistinct}[name]
		rejected := addNode(g, &plan.Node{Op: op, Edges: []plan.Edge{{From: scan}}})
		sink(g, rejected)
		return g, nil
	default:
		return nil, unknownQueryError(name)
	}
}

func unknownQueryError(name string) error {
	return fmt.Errorf("unknown query %q (available: %v)", name, demoNames())
}

// vectorizedReplGraph builds query's vectorized-engine graph plus the
// bound memreader it reads from, sized to match the ten literal rows
// the legacy/hybrid demo queries use.
func vectorizedReplGraph(query string) (*plan.Graph, reader.BatchReader, error) {
	g, err := vectorizedQuery(query)
	if err != nil {
		return nil, nil, err
	}
	rd := memreader.New(10, 4, nil)
	spec := &reader.ProjectionSpec{Targets: []reader.Target{
		{Name: "a", Type: vector.Int64, Source: reader.ByFieldPath("a")},
		{Name: "b", Type: vector.Int64, Source: reader.ByFieldPath("b")},
	}}
	if err := rd.SetProjection(spec); err != nil {
		return nil, nil, err
	}
	return g, rd, nil
}
