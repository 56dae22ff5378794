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
	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/execerr"
	"github.com/partiqlgo/execore/internal/aggexec"
	"github.com/partiqlgo/execore/internal/arena"
	"github.com/partiqlgo/execore/plan"
	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/value"
)

// Engine runs a plan.Graph node by node, the same topological walk
// legacy and vectorized use, but evaluates every row's expressions
// through the register-bytecode VM against a Frame instead of
// tree-walking an Expr or running a vector-op stream.
type Engine struct {
	VM *VM
}

func New(builtins *compile.Builtins) *Engine {
	return &Engine{VM: NewVM(builtins)}
}

// rowSet is one node's materialized output: a row collection plus its
// orderedness, mirroring legacy's List/Bag distinction.
type rowSet struct {
	rows    []value.Value
	ordered bool
}

// Run executes g in topological order against readers, a table of
// RowReaders keyed by Scan binding alias. strict selects
// whether a Recoverable error suppresses the returned value.
func (e *Engine) Run(g *plan.Graph, readers map[string]reader.RowReader, strict bool) (value.Value, *execerr.Accumulator, error) {
	if err := g.Validate(); err != nil {
		return value.Value{}, nil, err
	}
	acc := &execerr.Accumulator{Strict: strict}
	results := make(map[plan.NodeID]rowSet, len(g.Nodes))
	slotNames := make(map[plan.NodeID][]string, len(g.Nodes))
	for _, id := range g.TopoOrder() {
		n := g.Nodes[id]
		rs, names, err := e.execNode(n, results, slotNames, readers, acc)
		if err != nil {
			return value.Value{}, acc, err
		}
		results[id] = rs
		slotNames[id] = names
	}
	sink := results[g.Sink]
	return wrapCollection(sink.ordered, sink.rows), acc, nil
}

func (e *Engine) execNode(n *plan.Node, results map[plan.NodeID]rowSet, slotNames map[plan.NodeID][]string, readers map[string]reader.RowReader, acc *execerr.Accumulator) (rowSet, []string, error) {
	switch n.Op {
	case plan.OpScan:
		return e.execScan(n, readers, acc)
	case plan.OpUnpivot:
		return e.execUnpivot(n, acc)
	case plan.OpFilter:
		in, names := singleInput(n, results, slotNames)
		rs, err := e.execFilter(n, in, names, acc)
		return rs, names, err
	case plan.OpProject:
		in, names := singleInput(n, results, slotNames)
		return e.execProject(n, in, names, acc)
	case plan.OpProjectValue:
		in, names := singleInput(n, results, slotNames)
		rs, err := e.execProjectValue(n, in, names, acc)
		return rs, nil, err
	case plan.OpDistinct:
		in, names := singleInput(n, results, slotNames)
		return execDistinct(in, names)
	case plan.OpGroupBy:
		in, names := singleInput(n, results, slotNames)
		return e.execGroupBy(n, in, names, acc)
	case plan.OpJoin:
		left, leftNames, right, rightNames := joinInputs(n, results, slotNames)
		return e.execJoin(n, left, right, leftNames, rightNames, acc)
	case plan.OpSink:
		in, names := singleInput(n, results, slotNames)
		return in, names, nil
	default:
		return rowSet{}, nil, fatalCompile("hybrid: unknown op %v", n.Op)
	}
}

func singleInput(n *plan.Node, results map[plan.NodeID]rowSet, slotNames map[plan.NodeID][]string) (rowSet, []string) {
	id := n.Edges[0].From
	return results[id], slotNames[id]
}

func joinInputs(n *plan.Node, results map[plan.NodeID]rowSet, slotNames map[plan.NodeID][]string) (rowSet, []string, rowSet, []string) {
	var leftID, rightID plan.NodeID
	for _, ed := range n.Edges {
		if ed.BranchNum == 0 {
			leftID = ed.From
		} else {
			rightID = ed.From
		}
	}
	return results[leftID], slotNames[leftID], results[rightID], slotNames[rightID]
}

// execScan pulls a registered RowReader to exhaustion if one is bound
// to n.As, otherwise falls back to evaluating n.ScanExpr once as a
// leaf expression (a literal or global-only collection), the same
// shape legacy's Scan supports.
func (e *Engine) execScan(n *plan.Node, readers map[string]reader.RowReader, acc *execerr.Accumulator) (rowSet, []string, error) {
	names := []string{n.As}
	if n.At != "" {
		names = append(names, n.At)
	}
	if rd, ok := readers[n.As]; ok {
		rs, err := e.execReaderScan(n, rd)
		return rs, names, err
	}
	if n.ScanExpr == nil {
		return rowSet{}, nil, fatalCompile("hybrid: Scan(%s): no row reader registered and no literal expression to evaluate", n.As)
	}
	prog, err := compile.LowerBytecode(n.ScanExpr, compile.SlotMap{}, e.VM.Builtins)
	if err != nil {
		return rowSet{}, nil, fatalCompile("hybrid: Scan(%s): %v", n.As, err)
	}
	frame := NewFrame(0)
	a := arena.New()
	v, err := e.VM.Eval(prog, frame, a, acc)
	if err != nil {
		return rowSet{}, nil, err
	}
	elems, ok := v.Elements()
	if !ok {
		return rowSet{}, nil, fatalEval("hybrid: Scan(%s): expression did not evaluate to a collection (kind=%v)", n.As, v.Kind())
	}
	ordered := v.IsOrdered()
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
	return rowSet{rows: out, ordered: ordered}, names, nil
}

// execReaderScan is the genuine per-row pull: one NextRow call per
// tick, Frame and arena reset between ticks, the row's bound value
// promoted before it outlives the reader's UntilNext promise.
func (e *Engine) execReaderScan(n *plan.Node, rd reader.RowReader) (rowSet, error) {
	layout := []reader.Target{{Name: n.As, Source: reader.BaseRow()}}
	if err := rd.SetProjection(layout); err != nil {
		return rowSet{}, err
	}
	if err := rd.Open(); err != nil {
		return rowSet{}, err
	}
	defer rd.Close()

	frame := NewFrame(1)
	a := arena.New()
	var out []value.Value
	for {
		frame.Reset()
		a.Reset()
		ok, err := rd.NextRow(frame)
		if err != nil {
			return rowSet{}, err
		}
		if !ok {
			break
		}
		elt := a.Promote(frame.Slot(0))
		row := value.NewTuple().Set(n.As, elt)
		if n.At != "" {
			row.Set(n.At, value.Int(int64(len(out))))
		}
		out = append(out, value.TupleVal(row))
	}
	return rowSet{rows: out, ordered: true}, nil
}

// execUnpivot is a leaf like Scan's literal path: it evaluates
// n.ScanExpr once with no row in scope, coerces the result to a
// tuple, and emits one row per field.
func (e *Engine) execUnpivot(n *plan.Node, acc *execerr.Accumulator) (rowSet, []string, error) {
	prog, err := compile.LowerBytecode(n.ScanExpr, compile.SlotMap{}, e.VM.Builtins)
	if err != nil {
		return rowSet{}, nil, fatalCompile("hybrid: Unpivot(%s): %v", n.As, err)
	}
	frame := NewFrame(0)
	a := arena.New()
	v, err := e.VM.Eval(prog, frame, a, acc)
	if err != nil {
		return rowSet{}, nil, err
	}
	t, ok := v.AsTuple()
	if !ok {
		return rowSet{}, nil, fatalEval("hybrid: Unpivot(%s): expression did not evaluate to a tuple (kind=%v)", n.As, v.Kind())
	}
	names := []string{n.As}
	if n.At != "" {
		names = append(names, n.At)
	}
	var out []value.Value
	t.Each(func(key string, val value.Value) {
		row := value.NewTuple().Set(n.As, val)
		if n.At != "" {
			row.Set(n.At, value.String(key))
		}
		out = append(out, value.TupleVal(row))
	})
	return rowSet{rows: out, ordered: false}, names, nil
}

func (e *Engine) execFilter(n *plan.Node, in rowSet, names []string, acc *execerr.Accumulator) (rowSet, error) {
	prog, err := compile.LowerBytecode(n.FilterExpr, slotMapOf(names), e.VM.Builtins)
	if err != nil {
		return rowSet{}, fatalCompile("hybrid: Filter: %v", err)
	}
	frame := NewFrame(len(names))
	a := arena.New()
	out := make([]value.Value, 0, len(in.rows))
	for _, row := range in.rows {
		t, _ := row.AsTuple()
		frame.Reset()
		a.Reset()
		fillFrame(frame, t, names)
		v, err := e.VM.Eval(prog, frame, a, acc)
		if err != nil {
			return rowSet{}, err
		}
		if value.IsTrue(v) {
			out = append(out, row)
		}
	}
	return rowSet{rows: out, ordered: in.ordered}, nil
}

func (e *Engine) execProject(n *plan.Node, in rowSet, names []string, acc *execerr.Accumulator) (rowSet, []string, error) {
	sm := slotMapOf(names)
	progs := make([]*compile.Program, len(n.Aliases))
	for i, al := range n.Aliases {
		p, err := compile.LowerBytecode(al.Expr, sm, e.VM.Builtins)
		if err != nil {
			return rowSet{}, nil, fatalCompile("hybrid: Project(%s): %v", al.Name, err)
		}
		progs[i] = p
	}
	frame := NewFrame(len(names))
	a := arena.New()
	out := make([]value.Value, len(in.rows))
	for ri, row := range in.rows {
		t, _ := row.AsTuple()
		frame.Reset()
		a.Reset()
		fillFrame(frame, t, names)
		result := value.NewTuple()
		for i, al := range n.Aliases {
			v, err := e.VM.Eval(progs[i], frame, a, acc)
			if err != nil {
				return rowSet{}, nil, err
			}
			if v.IsMissing() {
				continue
			}
			result.Set(al.Name, v)
		}
		out[ri] = value.TupleVal(result)
	}
	outNames := make([]string, len(n.Aliases))
	for i, al := range n.Aliases {
		outNames[i] = al.Name
	}
	return rowSet{rows: out, ordered: in.ordered}, outNames, nil
}

func (e *Engine) execProjectValue(n *plan.Node, in rowSet, names []string, acc *execerr.Accumulator) (rowSet, error) {
	prog, err := compile.LowerBytecode(n.ValueExpr, slotMapOf(names), e.VM.Builtins)
	if err != nil {
		return rowSet{}, fatalCompile("hybrid: ProjectValue: %v", err)
	}
	frame := NewFrame(len(names))
	a := arena.New()
	out := make([]value.Value, len(in.rows))
	for i, row := range in.rows {
		t, _ := row.AsTuple()
		frame.Reset()
		a.Reset()
		fillFrame(frame, t, names)
		v, err := e.VM.Eval(prog, frame, a, acc)
		if err != nil {
			return rowSet{}, err
		}
		out[i] = v
	}
	return rowSet{rows: out, ordered: in.ordered}, nil
}

// execJoin implements Cross and Inner as a nested loop over two
// materialized row sets; Left/Right/Full are reserved, same as legacy.
func (e *Engine) execJoin(n *plan.Node, left, right rowSet, leftNames, rightNames []string, acc *execerr.Accumulator) (rowSet, []string, error) {
	if n.JoinKind != plan.JoinCross && n.JoinKind != plan.JoinInner {
		return rowSet{}, nil, fatalCompile("hybrid: join kind %v is reserved and not yet implemented", n.JoinKind)
	}
	outNames := mergeNames(leftNames, rightNames)

	var prog *compile.Program
	var frame *Frame
	var a *arena.Arena
	if n.JoinKind == plan.JoinInner {
		p, err := compile.LowerBytecode(n.On, slotMapOf(outNames), e.VM.Builtins)
		if err != nil {
			return rowSet{}, nil, fatalCompile("hybrid: Join on: %v", err)
		}
		prog = p
		frame = NewFrame(len(outNames))
		a = arena.New()
	}

	var out []value.Value
	for _, l := range left.rows {
		lt, _ := l.AsTuple()
		for _, r := range right.rows {
			rt, _ := r.AsTuple()
			merged := mergeTuples(lt, rt)
			if n.JoinKind == plan.JoinInner {
				frame.Reset()
				a.Reset()
				fillFrame(frame, merged, outNames)
				v, err := e.VM.Eval(prog, frame, a, acc)
				if err != nil {
					return rowSet{}, nil, err
				}
				if !value.IsTrue(v) {
					continue
				}
			}
			out = append(out, value.TupleVal(merged))
		}
	}
	return rowSet{rows: out, ordered: left.ordered}, outNames, nil
}

func execDistinct(in rowSet, names []string) (rowSet, []string, error) {
	out := make([]value.Value, 0, len(in.rows))
	for _, row := range in.rows {
		dup := false
		for _, seen := range out {
			if value.Equal(seen, row) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, row)
		}
	}
	return rowSet{rows: out, ordered: in.ordered}, names, nil
}

// execGroupBy keys each input row by its GroupKeys tuple and folds
// every aggregate's Expr through internal/aggexec, the same fold
// logic legacy and vectorized share. A keyless GROUP BY over zero
// input rows still yields one group.
func (e *Engine) execGroupBy(n *plan.Node, in rowSet, names []string, acc *execerr.Accumulator) (rowSet, []string, error) {
	sm := slotMapOf(names)
	keyProgs := make([]*compile.Program, len(n.GroupKeys))
	for i, k := range n.GroupKeys {
		p, err := compile.LowerBytecode(k.Expr, sm, e.VM.Builtins)
		if err != nil {
			return rowSet{}, nil, fatalCompile("hybrid: GroupBy key %s: %v", k.Name, err)
		}
		keyProgs[i] = p
	}
	aggProgs := make([]*compile.Program, len(n.Aggregates))
	for i, a := range n.Aggregates {
		if a.Kind == plan.AggCountStar {
			continue
		}
		p, err := compile.LowerBytecode(a.Expr, sm, e.VM.Builtins)
		if err != nil {
			return rowSet{}, nil, fatalCompile("hybrid: GroupBy aggregate %s: %v", a.Alias, err)
		}
		aggProgs[i] = p
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

	frame := NewFrame(len(names))
	arn := arena.New()
	for _, row := range in.rows {
		t, _ := row.AsTuple()
		frame.Reset()
		arn.Reset()
		fillFrame(frame, t, names)

		keyFields := value.NewTuple()
		for i, k := range n.GroupKeys {
			v, err := e.VM.Eval(keyProgs[i], frame, arn, acc)
			if err != nil {
				return rowSet{}, nil, err
			}
			keyFields.Set(k.Name, v)
		}
		key := value.TupleVal(keyFields)
		g := find(key)
		if g == nil {
			g = newGroup(key)
			groups = append(groups, g)
		}
		for i, ag := range n.Aggregates {
			if ag.Kind == plan.AggCountStar {
				g.accs[i].Add(value.Bool(true))
				continue
			}
			v, err := e.VM.Eval(aggProgs[i], frame, arn, acc)
			if err != nil {
				return rowSet{}, nil, err
			}
			g.accs[i].Add(v)
		}
	}
	if len(groups) == 0 && len(n.GroupKeys) == 0 {
		groups = append(groups, newGroup(value.TupleVal(value.NewTuple())))
	}

	out := make([]value.Value, len(groups))
	for gi, g := range groups {
		kt, _ := g.key.AsTuple()
		result := kt.Clone()
		for i, ag := range n.Aggregates {
			result.Set(ag.Alias, g.accs[i].Result())
		}
		out[gi] = value.TupleVal(result)
	}
	outNames := make([]string, 0, len(n.GroupKeys)+len(n.Aggregates))
	for _, k := range n.GroupKeys {
		outNames = append(outNames, k.Name)
	}
	for _, ag := range n.Aggregates {
		outNames = append(outNames, ag.Alias)
	}
	return rowSet{rows: out, ordered: false}, outNames, nil
}

func slotMapOf(names []string) compile.SlotMap {
	sm := make(compile.SlotMap, len(names))
	for i, name := range names {
		sm[name] = i
	}
	return sm
}

func fillFrame(frame *Frame, t *value.Tuple, names []string) {
	for i, name := range names {
		v, _ := t.Get(name)
		frame.SetSlot(i, v)
	}
}

func mergeTuples(a, b *value.Tuple) *value.Tuple {
	out := value.NewTuple()
	a.Each(func(k string, v value.Value) { out.Set(k, v) })
	b.Each(func(k string, v value.Value) { out.Set(k, v) })
	return out
}

// mergeNames builds a Join row's field order the same way Tuple.Set
// would: left's fields in order, then any right field not already
// present.
func mergeNames(left, right []string) []string {
	out := append([]string{}, left...)
	seen := make(map[string]bool, len(left))
	for _, name := range left {
		seen[name] = true
	}
	for _, name := range right {
		if !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	return out
}

func wrapCollection(ordered bool, items []value.Value) value.Value {
	if ordered {
		return value.List(items)
	}
	return value.Bag(items)
}
