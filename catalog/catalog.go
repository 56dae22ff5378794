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

// Package catalog holds the type and function metadata an engine
// consults at compile time: named shapes, builtin/UDF descriptors,
// and table functions. Name resolution and the logical-plan builder
// that populate a catalog live upstream of this package.
package catalog

import (
	"sync"

	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/value"
)

// FunctionInfo describes one resolvable function: either a builtin
// already present in a compile.Builtins registry, or a table function
// usable in the FROM clause.
type FunctionInfo struct {
	Name      string
	IsTable   bool
	ArgShapes []value.Shape
}

// SharedCatalog is the mutable store a query session builds up before
// compilation; engines are handed a read-only View over it.
type SharedCatalog struct {
	mu        sync.RWMutex
	types     map[string]value.Shape
	functions map[string]FunctionInfo
	builtins  *compile.Builtins
}

func NewSharedCatalog() *SharedCatalog {
	return &SharedCatalog{
		types:     make(map[string]value.Shape),
		functions: make(map[string]FunctionInfo),
		builtins:  compile.StandardBuiltins(),
	}
}

// AddTypeEntry registers a named shape (e.g. a table's row shape).
func (c *SharedCatalog) AddTypeEntry(name string, shape value.Shape) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[name] = shape
}

// AddTableFunction registers a function usable in table position.
func (c *SharedCatalog) AddTableFunction(name string, argShapes ...value.Shape) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.functions[name] = FunctionInfo{Name: name, IsTable: true, ArgShapes: argShapes}
}

// AddFunction registers a scalar function's argument-check contract
// and evaluator in the shared builtin registry, and records its
// metadata for resolve_function lookups.
func (c *SharedCatalog) AddFunction(fn *compile.Builtin, argShapes ...value.Shape) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builtins.Register(fn)
	c.functions[fn.Name] = FunctionInfo{Name: fn.Name, ArgShapes: argShapes}
}

// View returns a read-only snapshot an engine can consult without
// taking the catalog's write lock on every lookup.
func (c *SharedCatalog) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make(map[string]value.Shape, len(c.types))
	for k, v := range c.types {
		types[k] = v
	}
	funcs := make(map[string]FunctionInfo, len(c.functions))
	for k, v := range c.functions {
		funcs[k] = v
	}
	return View{types: types, functions: funcs, builtins: c.builtins}
}

// View is the read-only subset of a SharedCatalog engines consume.
// Its type and function metadata are copies taken when View was
// called, so later AddTypeEntry/AddTableFunction/AddFunction calls do
// not change them. The builtin registry is not copied: Builtins()
// returns the SharedCatalog's own registry, so a later AddFunction is
// visible through it, and that registration is not synchronized with
// lookups made through the View.
type View struct {
	types     map[string]value.Shape
	functions map[string]FunctionInfo
	builtins  *compile.Builtins
}

// ResolveType looks up a named shape.
func (v View) ResolveType(name string) (value.Shape, bool) {
	s, ok := v.types[name]
	return s, ok
}

// ResolveFunction looks up a builtin or UDF's metadata.
func (v View) ResolveFunction(name string) (FunctionInfo, bool) {
	fn, ok := v.functions[name]
	return fn, ok
}

// Builtins returns the shared builtin registry engines dispatch
// CallUdf/function-call nodes through.
func (v View) Builtins() *compile.Builtins { return v.builtins }
