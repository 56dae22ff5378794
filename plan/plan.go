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

// Package plan defines the logical plan DAG the three execution
// engines ingest: a directed acyclic graph of bindings-producing
// operators, each with an opaque node id and zero or more child
// edges carrying a branch discriminator. The plan itself is an
// artifact of an external logical planner; this package only models
// its shape so engines can walk it.
package plan

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/partiqlgo/execore/compile"
)

// NodeID opaquely identifies one plan node. It is never parsed or
// constructed from components by engine code — only compared and
// used as a map key.
type NodeID uuid.UUID

func NewNodeID() NodeID { return NodeID(uuid.New()) }

func (id NodeID) String() string { return uuid.UUID(id).String() }

// Op tags which operator kind a Node implements.
type Op int

const (
	OpScan Op = iota
	OpFilter
	OpProject
	OpProjectValue
	OpJoin
	OpUnpivot
	OpDistinct
	OpGroupBy
	OpSink
)

func (o Op) String() string {
	names := [...]string{
		"Scan", "Filter", "Project", "ProjectValue", "Join", "Unpivot", "Distinct", "GroupBy", "Sink",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return "?"
}

// JoinKind tags which join semantics a Join node implements. Left,
// Right and Full are reserved: the engines accept them in the plan
// but reject them at compile time with a clear error rather than
// silently producing wrong results.
type JoinKind int

const (
	JoinCross JoinKind = iota
	JoinInner
	JoinLeft
	JoinRight
	JoinFull
)

func (k JoinKind) String() string {
	names := [...]string{"Cross", "Inner", "Left", "Right", "Full"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Alias is one alias->expr binding, used by Project's Aliases and
// GroupBy's GroupKeys.
type Alias struct {
	Name string
	Expr *compile.Expr
}

// Edge is one input edge into a Node, tagged with the branch
// discriminator the node assigns meaning to (0/1 = left/right for
// Join; otherwise the single input).
type Edge struct {
	From       NodeID
	BranchNum  int
}

// Node is one operator in the logical plan DAG.
type Node struct {
	ID    NodeID
	Op    Op
	Edges []Edge

	// Scan(expr, as, at?) / Unpivot(expr, as, at): both shapes are
	// "evaluate expr to a collection/tuple, bind each element under
	// As, optionally bind an index/key under At", so they share these
	// three fields.
	ScanExpr *compile.Expr
	As       string
	At       string // empty means no index binding

	// Filter(expr)
	FilterExpr *compile.Expr

	// Project(alias->expr*)
	Aliases []Alias

	// Join(kind, on)
	JoinKind JoinKind
	On       *compile.Expr

	// ProjectValue(expr)
	ValueExpr *compile.Expr

	// GroupBy(keys, aggregates) — see plan/groupby.go
	GroupKeys  []Alias
	Aggregates []Aggregate
}

// Graph is the full plan: a set of nodes plus the id of the Sink node
// that is the traversal's terminal output.
type Graph struct {
	Nodes map[NodeID]*Node
	Sink  NodeID
}

func NewGraph() *Graph {
	return &Graph{Nodes: make(map[NodeID]*Node)}
}

func (g *Graph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
}

// Validate reports a malformed DAG: a missing operator referenced by
// an edge, a cycle, or a Sink id that does not resolve. These are
// scheduling-time fatal errors per the engines' failure semantics.
func (g *Graph) Validate() error {
	if _, ok := g.Nodes[g.Sink]; !ok {
		return fmt.Errorf("plan: sink node %s not found", g.Sink)
	}
	for id, n := range g.Nodes {
		for _, e := range n.Edges {
			if _, ok := g.Nodes[e.From]; !ok {
				return fmt.Errorf("plan: node %s references missing input %s", id, e.From)
			}
		}
	}
	visiting := make(map[NodeID]bool)
	visited := make(map[NodeID]bool)
	var visit func(NodeID) error
	visit = func(id NodeID) error {
		if visited[id] {
			return nil
		}
		if visiting[id] {
			return fmt.Errorf("plan: cycle detected at node %s", id)
		}
		visiting[id] = true
		for _, e := range g.Nodes[id].Edges {
			if err := visit(e.From); err != nil {
				return err
			}
		}
		visiting[id] = false
		visited[id] = true
		return nil
	}
	for id := range g.Nodes {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// TopoOrder returns the plan's nodes in a valid topological order
// (inputs before consumers), the traversal order the legacy engine
// executes in. Callers must run Validate first to rule out cycles.
func (g *Graph) TopoOrder() []NodeID {
	order := make([]NodeID, 0, len(g.Nodes))
	visited := make(map[NodeID]bool)
	var visit func(NodeID)
	visit = func(id NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, e := range g.Nodes[id].Edges {
			visit(e.From)
		}
		order = append(order, id)
	}
	for id := range g.Nodes {
		visit(id)
	}
	return order
}
