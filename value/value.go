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

// Package value implements the dynamically typed logical value that
// flows through every execution engine: a tagged union over null,
// missing, boolean, integer, real, decimal, string, datetime, tuple,
// list, bag and an embedded-document escape hatch.
package value

import (
	"fmt"
	"math/big"

	"golang.org/x/exp/slices"

	"github.com/partiqlgo/execore/date"
)

// Kind tags the alternative a Value currently holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindMissing
	KindBool
	KindInt
	KindReal
	KindDecimal
	KindString
	KindDateTime
	KindTuple
	KindList
	KindBag
	KindEmbeddedDoc
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindMissing:
		return "missing"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindDateTime:
		return "datetime"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindBag:
		return "bag"
	case KindEmbeddedDoc:
		return "embedded_doc"
	default:
		return "unknown"
	}
}

// EmbeddedDoc is an escape hatch for nested self-describing formats:
// an opaque bytestring plus a factory for iterating/indexing it
// (e.g. an embedded Ion document).
type EmbeddedDoc struct {
	Bytes   []byte
	Factory func([]byte) (Iterator, error)
}

// Iterator produces a sequence of Values, used by EmbeddedDoc.Factory
// and by Bag/List streaming producers.
type Iterator interface {
	Next() (Value, bool)
}

// Value is a tagged union over the PartiQL logical value space. The
// zero Value is Null; construct the other alternatives with the
// package-level constructors below.
type Value struct {
	kind Kind

	b    bool
	i    int64
	f    float64
	dec  *big.Rat
	s    string
	dt   date.Time
	tup  *Tuple
	list []Value
	bag  []Value
	doc  *EmbeddedDoc
}

func Null() Value    { return Value{kind: KindNull} }
func Missing() Value { return Value{kind: KindMissing} }
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Real(f float64) Value   { return Value{kind: KindReal, f: f} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func DateTime(t date.Time) Value {
	return Value{kind: KindDateTime, dt: t}
}
func Decimal(r *big.Rat) Value { return Value{kind: KindDecimal, dec: r} }

// List constructs an ordered sequence Value; is_ordered() is true.
func List(items []Value) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// Bag constructs an unordered multiset Value.
func Bag(items []Value) Value {
	return Value{kind: KindBag, bag: slices.Clone(items)}
}

func NewEmbeddedDoc(doc *EmbeddedDoc) Value {
	return Value{kind: KindEmbeddedDoc, doc: doc}
}

func TupleVal(t *Tuple) Value {
	if t == nil {
		t = NewTuple()
	}
	return Value{kind: KindTuple, tup: t}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsMissing() bool   { return v.kind == KindMissing }
func (v Value) IsAbsent() bool    { return v.kind == KindNull || v.kind == KindMissing }
func (v Value) IsOrdered() bool   { return v.kind == KindList }

func (v Value) AsBool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)       { return v.i, v.kind == KindInt }
func (v Value) AsReal() (float64, bool)    { return v.f, v.kind == KindReal }
func (v Value) AsString() (string, bool)   { return v.s, v.kind == KindString }
func (v Value) AsDateTime() (date.Time, bool) { return v.dt, v.kind == KindDateTime }
func (v Value) AsDecimal() (*big.Rat, bool)   { return v.dec, v.kind == KindDecimal }
func (v Value) AsEmbeddedDoc() (*EmbeddedDoc, bool) { return v.doc, v.kind == KindEmbeddedDoc }

// AsTuple returns the underlying tuple, or nil, ok=false if the value
// is not a tuple.
func (v Value) AsTuple() (*Tuple, bool) { return v.tup, v.kind == KindTuple }

// AsList returns a copy-free view of the list contents.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsBag returns a copy-free view of the bag contents.
func (v Value) AsBag() ([]Value, bool) { return v.bag, v.kind == KindBag }

// Elements returns the contents of a List or Bag uniformly, for
// operators (Scan, ProjectValue, Unpivot) that only care about
// "some collection of values" and use IsOrdered to decide output kind.
func (v Value) Elements() ([]Value, bool) {
	switch v.kind {
	case KindList:
		return v.list, true
	case KindBag:
		return v.bag, true
	default:
		return nil, false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindMissing:
		return "missing"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindReal:
		return fmt.Sprintf("%g", v.f)
	case KindDecimal:
		if v.dec != nil {
			return v.dec.RatString()
		}
		return "0"
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindDateTime:
		return v.dt.String()
	case KindTuple:
		return v.tup.String()
	case KindList:
		return collString("[", "]", v.list)
	case KindBag:
		return collString("<<", ">>", v.bag)
	case KindEmbeddedDoc:
		return fmt.Sprintf("embedded_doc(%d bytes)", len(v.doc.Bytes))
	default:
		return "?"
	}
}

func collString(open, close string, items []Value) string {
	s := open
	for i, it := range items {
		if i > 0 {
			s += ", "
		}
		s += it.String()
	}
	return s + close
}
