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
	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/execerr"
	"github.com/partiqlgo/execore/internal/aggexec"
	"github.com/partiqlgo/execore/plan"
	"github.com/partiqlgo/execore/value"
)

// Evaluator runs a plan.Graph to completion, producing the Sink node's
// accumulated value. It holds no per-run state of its own; Run takes a
// fresh execerr.Accumulator for every call so one Evaluator can be
// reused concurrently across queries.
type Evaluator struct {
	Builtins *compile.Builtins
	Sys      value.SystemContext
}

func New(builtins *compile.Builtins, sys value.SystemContext) *Evaluator {
	return &Evaluator{Builtins: builtins, Sys: sys}
}

// Run executes g in topological order. global, if non-nil, is pushed
// as the outermost Env frame Scan/Unpivot leaf expressions resolve
// table/variable references against. strict selects whether a
// Recoverable error suppresses the returned value (see
// execerr.Accumulator.Suppressed).
//
// A non-nil error return means the graph was malformed or a Fatal
// error aborted the run; the Accumulator is still returned so its
// already-recorded Recoverable/Warning errors are not lost.
func (ev *Evaluator) Run(g *plan.Graph, global value.Bindings, strict bool) (value.Value, *execerr.Accumulator, error) {
	if err := g.Validate(); err != nil {
		return value.Value{}, nil, err
	}
	acc := &execerr.Accumulator{Strict: strict}
	env := value.NewEnv(ev.Sys)
	if global != nil {
		env = env.Push(global)
	}

	results := make(map[plan.NodeID]value.Value, len(g.Nodes))
	for _, id := range g.TopoOrder() {
		n := g.Nodes[id]
		v, err := ev.execNode(n, gatherInputs(n, results), env, acc)
		if err != nil {
			return value.Value{}, acc, err
		}
		results[id] = v
	}
	return results[g.Sink], acc, nil
}

// gatherInputs orders a node's already-computed input values by their
// edges' branch_num, the discriminator Join uses for left(0)/right(1).
func gatherInputs(n *plan.Node, results map[plan.NodeID]value.Value) []value.Value {
	if len(n.Edges) == 0 {
		return nil
	}
	max := 0
	for _, e := range n.Edges {
		if e.BranchNum > max {
			max = e.BranchNum
		}
	}
	in := make([]value.Value, max+1)
	for _, e := range n.Edges {
		in[e.BranchNum] = results[e.From]
	}
	return in
}

func (ev *Evaluator) execNode(n *plan.Node, inputs []value.Value, env *value.Env, acc *execerr.Accumulator) (value.Value, error) {
	switch n.Op {
	case plan.OpScan:
		return ev.execScan(n, env, acc)
	case plan.OpFilter:
		return ev.execFilter(n, inputs[0], env, acc)
	case plan.OpProject:
		return ev.execProject(n, inputs[0], env, acc)
	case plan.OpProjectValue:
		return ev.execProjectValue(n, inputs[0], env, acc)
	case plan.OpJoin:
		return ev.execJoin(n, inputs, env, acc)
	case plan.OpUnpivot:
		return ev.execUnpivot(n, env, acc)
	case plan.OpDistinct:
		return ev.execDistinct(inputs[0])
	case plan.OpGroupBy:
		return ev.execGroupBy(n, inputs[0], env, acc)
	case plan.OpSink:
		return inputs[0], nil
	default:
		return value.Value{}, fatalCompile("legacy: unknown op %v", n.Op)
	}
}

// execScan evaluates expr (a leaf expression, not a row-dependent one)
// to a collection and wraps each element as {as: elt[, at: index]}.
func (ev *Evaluator) execScan(n *plan.Node, env *value.Env, acc *execerr.Accumulator) (value.Value, error) {
	src, err := Eval(n.ScanExpr, env, ev.Builtins, acc)
	if err != nil {
		return value.Value{}, err
	}
	elems, ok := src.Elements()
	if !ok {
		return value.Value{}, fatalEval("Scan(%s): expression did not evaluate to a collection (kind=%v)", n.As, src.Kind())
	}
	ordered := src.IsOrdered()
	out := make([]value.Value, len(elems))
	for i, elt := range elems {
		t := value.NewTuple().Set(n.As, elt)
		if n.At != "" {
			if ordered {
				t.Set(n.At, value.Int(int64(i)))
			} else {
				t.Set(n.At, value.Missing())
			}
		}
		out[i] = value.TupleVal(t)
	}
	return wrapCollection(ordered, out), nil
}

func (ev *Evaluator) execFilter(n *plan.Node, in value.Value, env *value.Env, acc *execerr.Accumulator) (value.Value, error) {
	elems, ordered, err := rows(in)
	if err != nil {
		return value.Value{}, err
	}
	out := make([]value.Value, 0, len(elems))
	for _, row := range elems {
		v, err := Eval(n.FilterExpr, pushRow(env, row), ev.Builtins, acc)
		if err != nil {
			return value.Value{}, err
		}
		if value.IsTrue(v) {
			out = append(out, row)
		}
	}
	return wrapCollection(ordered, out), nil
}

func (ev *Evaluator) execProject(n *plan.Node, in value.Value, env *value.Env, acc *execerr.Accumulator) (value.Value, error) {
	elems, ordered, err := rows(in)
	if err != nil {
		return value.Value{}, err
	}
	out := make([]value.Value, len(elems))
	for i, row := range elems {
		rowEnv := pushRow(env, row)
		t := value.NewTuple()
		for _, a := range n.Aliases {
			v, err := Eval(a.Expr, rowEnv, ev.Builtins, acc)
			if err != nil {
				return value.Value{}, err
			}
			if v.IsMissing() {
				continue
			}
			t.Set(a.Name, v)
		}
		out[i] = value.TupleVal(t)
	}
	return wrapCollection(ordered, out), nil
}

func (ev *Evaluator) execProjectValue(n *plan.Node, in value.Value, env *value.Env, acc *execerr.Accumulator) (value.Value, error) {
	elems, ordered, err := rows(in)
	if err != nil {
		return value.Value{}, err
	}
	out := make([]value.Value, len(elems))
	for i, row := range elems {
		v, err := Eval(n.ValueExpr, pushRow(env, row), ev.Builtins, acc)
		if err != nil {
			return value.Value{}, err
		}
		out[i] = v
	}
	return wrapCollection(ordered, out), nil
}

// execJoin implements Cross and Inner as a nested loop; Left/Right/
// Full are reserved (see plan.JoinKind) and rejected here with a
// typed Fatal error rather than silently producing wrong rows.
func (ev *Evaluator) execJoin(n *plan.Node, inputs []value.Value, env *value.Env, acc *execerr.Accumulator) (value.Value, error) {
	if n.JoinKind != plan.JoinCross && n.JoinKind != plan.JoinInner {
		return value.Value{}, fatalCompile("legacy: join kind %v is reserved and not yet implemented", n.JoinKind)
	}
	left, leftOrdered, err := rows(inputs[0])
	if err != nil {
		return value.Value{}, err
	}
	right, _, err := rows(inputs[1])
	if err != nil {
		return value.Value{}, err
	}

	var out []value.Value
	for _, l := range left {
		lt, _ := l.AsTuple()
		for _, r := range right {
			rt, _ := r.AsTuple()
			merged := mergeTuples(lt, rt)
			if n.JoinKind == plan.JoinInner {
				v, err := Eval(n.On, env.Push(tupleBindings{merged}), ev.Builtins, acc)
				if err != nil {
					return value.Value{}, err
				}
				if !value.IsTrue(v) {
					continue
				}
			}
			out = append(out, value.TupleVal(merged))
		}
	}
	return wrapCollection(leftOrdered, out), nil
}

func mergeTuples(a, b *value.Tuple) *value.Tuple {
	out := value.NewTuple()
	a.Each(func(k string, v value.Value) { out.Set(k, v) })
	b.Each(func(k string, v value.Value) { out.Set(k, v) })
	return out
}

// execUnpivot is a leaf like Scan: it evaluates expr once against the
// outer env, coerces the result to a tuple, and emits one row per
// field rather than iterating an upstream row collection.
func (ev *Evaluator) execUnpivot(n *plan.Node, env *value.Env, acc *execerr.Accumulator) (value.Value, error) {
	v, err := Eval(n.ScanExpr, env, ev.Builtins, acc)
	if err != nil {
		return value.Value{}, err
	}
	t, ok := v.AsTuple()
	if !ok {
		return value.Value{}, fatalEval("Unpivot(%s): expression did not evaluate to a tuple (kind=%v)", n.As, v.Kind())
	}
	var out []value.Value
	t.Each(func(key string, val value.Value) {
		row := value.NewTuple().Set(n.As, val)
		if n.At != "" {
			row.Set(n.At, value.String(key))
		}
		out = append(out, value.TupleVal(row))
	})
	return value.Bag(out), nil
}

func (ev *Evaluator) execDistinct(in value.Value) (value.Value, error) {
	elems, ordered, err := rows(in)
	if err != nil {
		return value.Value{}, err
	}
	out := make([]value.Value, 0, len(elems))
	for _, e := range elems {
		dup := false
		for _, seen := range out {
			if value.Equal(seen, e) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	return wrapCollection(ordered, out), nil
}

// execGroupBy keys each input row by its GroupKeys tuple and folds
// every aggregate's Expr through internal/aggexec, so the fold logic
// is identical across all three engines. A GROUP BY with no keys over
// zero input rows still yields one group, matching the SQL rule that
// a keyless aggregate always returns exactly one row.
func (ev *Evaluator) execGroupBy(n *plan.Node, in value.Value, env *value.Env, acc *execerr.Accumulator) (value.Value, error) {
	elems, _, err := rows(in)
	if err != nil {
		return value.Value{}, err
	}

	type group struct {
		key  value.Value
		accs []aggexec.Accumulator
	}
	newGroup := func(key value.Value) *group {
		g := &group{key: key, accs: make([]aggexec.Accumulator, len(n.Aggregates))}
		for i, a := range n.Aggregates {
			g.accs[i] = aggexec.NewAccumulator(int(a.Kind))
		}
		return g
	}

	var groups []*group
	find := func(key value.Value) *group {
		for _, g := range groups {
			if value.Equal(g.key, key) {
				return g
			}
		}
		return nil
	}

	for _, row := range elems {
		rowEnv := pushRow(env, row)
		keyFields := value.NewTuple()
		for _, k := range n.GroupKeys {
			v, err := Eval(k.Expr, rowEnv, ev.Builtins, acc)
			if err != nil {
				return value.Value{}, err
			}
			keyFields.Set(k.Name, v)
		}
		key := value.TupleVal(keyFields)
		g := find(key)
		if g == nil {
			g = newGroup(key)
			groups = append(groups, g)
		}
		for i, a := range n.Aggregates {
			if a.Kind == plan.AggCountStar {
				g.accs[i].Add(value.Bool(true))
				continue
			}
			v, err := Eval(a.Expr, rowEnv, ev.Builtins, acc)
			if err != nil {
				return value.Value{}, err
			}
			g.accs[i].Add(v)
		}
	}
	if len(groups) == 0 && len(n.GroupKeys) == 0 {
		groups = append(groups, newGroup(value.TupleVal(value.NewTuple())))
	}

	out := make([]value.Value, len(groups))
	for gi, g := range groups {
		t, _ := g.key.AsTuple()
		result := t.Clone()
		for i, a := range n.Aggregates {
			result.Set(a.Alias, g.accs[i].Result())
		}
		out[gi] = value.TupleVal(result)
	}
	return value.Bag(out), nil
}
