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

package vector

import "unsafe"

// LogicalType is one of the four scalar column types a Batch schema
// may declare.
type LogicalType uint8

const (
	Int64 LogicalType = iota
	Float64
	Boolean
	String
)

func (t LogicalType) String() string {
	switch t {
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

func elemSize(t LogicalType) uintptr {
	switch t {
	case Int64:
		return 8
	case Float64:
		return 8
	case Boolean:
		return 1
	case String:
		return unsafe.Sizeof("")
	default:
		return 0
	}
}

// TypedVector[T] is a (buffer, offset, len) view over one of the four
// scalar storage types, enabling zero-copy Slice.
type TypedVector[T any] struct {
	buf    *buffer
	offset int
	length int
}

func newTyped[T any](buf *buffer, offset, length int) *TypedVector[T] {
	return &TypedVector[T]{buf: buf, offset: offset, length: length}
}

// Owned constructs a TypedVector backed by a freshly owned slice.
func Owned[T any](data []T) *TypedVector[T] {
	return newTyped[T](newOwned(data), 0, len(data))
}

// Constant constructs a TypedVector that logically repeats v for
// length elements without allocating a length-sized buffer; it is
// materialized into an Owned buffer on first mutation.
func Constant[T any](v T, length int) *TypedVector[T] {
	return newTyped[T](newConstant(constantHolder[T]{v: v, n: length}), 0, length)
}

type constantHolder[T any] struct {
	v T
	n int
}

// Len returns the number of valid (in-bounds) elements in the view.
func (v *TypedVector[T]) Len() int { return v.length }

func (v *TypedVector[T]) raw() []T {
	switch v.buf.kind {
	case bufConstant:
		ch := v.buf.raw.(constantHolder[T])
		if ch.n == 0 {
			return nil
		}
		out := make([]T, ch.n)
		for i := range out {
			out[i] = ch.v
		}
		return out
	default:
		return v.buf.raw.([]T)
	}
}

// At returns the element at logical index i (relative to the view's
// offset, not the underlying buffer).
func (v *TypedVector[T]) At(i int) T {
	if v.buf.kind == bufConstant {
		return v.buf.raw.(constantHolder[T]).v
	}
	data := v.buf.raw.([]T)
	return data[v.offset+i]
}

// Slice returns a zero-copy view over [start, start+n) of the
// current view.
func (v *TypedVector[T]) Slice(start, n int) *TypedVector[T] {
	if start < 0 || n < 0 || start+n > v.length {
		panic("vector: slice out of range")
	}
	if v.buf.kind == bufConstant {
		ch := v.buf.raw.(constantHolder[T])
		return newTyped[T](newConstant(constantHolder[T]{v: ch.v, n: n}), 0, n)
	}
	return newTyped[T](v.buf.share(), v.offset+start, n)
}

// Shared returns a new TypedVector aliasing the same buffer (bumping
// the owned-buffer refcount); mutating either view triggers
// copy-on-write on the one that is mutated.
func (v *TypedVector[T]) Shared() *TypedVector[T] {
	return newTyped[T](v.buf.share(), v.offset, v.length)
}

// IsMutable reports whether in-place mutation is possible without
// first cloning: false for mmap buffers, true otherwise (owned
// buffers may still need an internal
// COW clone if they are presently shared, and Constant buffers always
// materialize on first write).
func (v *TypedVector[T]) IsMutable() bool {
	return v.buf.kind != bufMmap
}

// Set mutates index i to value, applying the copy-on-write policy:
// a shared Owned buffer is cloned first; a Constant buffer is
// materialized into a fresh Owned buffer first; an Mmap buffer
// rejects the mutation outright.
func (v *TypedVector[T]) Set(i int, value T) error {
	switch v.buf.kind {
	case bufMmap:
		return ErrImmutable
	case bufConstant:
		v.materialize()
	case bufOwned:
		if v.buf.shared() {
			v.clone()
		}
	}
	data := v.buf.raw.([]T)
	data[v.offset+i] = value
	return nil
}

// materialize turns a Constant buffer into an Owned buffer containing
// length physically-repeated copies of the constant.
func (v *TypedVector[T]) materialize() {
	ch := v.buf.raw.(constantHolder[T])
	data := make([]T, v.length)
	for i := range data {
		data[i] = ch.v
	}
	v.buf = newOwned(data)
	v.offset = 0
}

// clone performs the copy-on-write clone of a shared Owned buffer:
// the mutating view gets a private copy; every pre-existing shared
// view keeps observing the original data unchanged.
func (v *TypedVector[T]) clone() {
	old := v.buf.raw.([]T)
	cp := cloneSlice(old)
	v.buf = newOwned(cp)
}

// CopyFrom copies min(len(v), len(src)) elements from src into v,
// starting at index 0 of each; a homogeneous type-to-type copy.
// It applies the same copy-on-write policy as Set.
func (v *TypedVector[T]) CopyFrom(src *TypedVector[T]) error {
	n := v.length
	if src.length < n {
		n = src.length
	}
	for i := 0; i < n; i++ {
		if err := v.Set(i, src.At(i)); err != nil {
			return err
		}
	}
	return nil
}

// ToSlice materializes the view as a plain Go slice (a copy).
func (v *TypedVector[T]) ToSlice() []T {
	out := make([]T, v.length)
	for i := range out {
		out[i] = v.At(i)
	}
	return out
}
