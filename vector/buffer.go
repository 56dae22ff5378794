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

// Package vector implements the columnar batch layer: typed physical
// vectors backed by owned, memory-mapped or constant buffers,
// selection vectors, and batch schemas.
package vector

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/partiqlgo/execore/internal/mmapbuf"
)

// ErrImmutable is returned when a mutation is attempted on a buffer
// kind that cannot be mutated in place (an mmap buffer).
var ErrImmutable = errors.New("vector: buffer is immutable")

// ErrUnaligned is returned when a typed mmap view is constructed over
// a region whose length is not a multiple of the element size.
var ErrUnaligned = errors.New("vector: mmap region is not aligned for element type")

// bufferKind tags which of the three buffer kinds backs a physical
// vector's storage.
type bufferKind uint8

const (
	bufOwned bufferKind = iota
	bufMmap
	bufConstant
)

// buffer is the generic (element-type-erased at this layer) backing
// store for a TypedVector[T]. It is shared by reference: cloning a
// buffer is cheap (it bumps a refcount) and only copies data when a
// mutation actually occurs (copy-on-write).
type buffer struct {
	kind bufferKind
	refs *int // shared refcount cell; nil for mmap/constant (never cloned in place)

	// owned/constant storage, type-erased as an interface value
	// holding a []T (or a constantHolder[T]); the TypedVector wrapper
	// recovers it with a type assertion, so no unsafe casting is
	// needed at this layer.
	raw any

	// mmap-only: the region keeping the mapping alive. The mapping
	// outlives every view into it; Region.Close must only be
	// called once no TypedVector references it.
	region *mmapbuf.Region
}

func newOwned(raw any) *buffer {
	n := 1
	return &buffer{kind: bufOwned, refs: &n, raw: raw}
}

func newConstant(raw any) *buffer {
	return &buffer{kind: bufConstant, raw: raw}
}

func newMmap(raw any, region *mmapbuf.Region) *buffer {
	return &buffer{kind: bufMmap, raw: raw, region: region}
}

// share increments the shared refcount and returns a new *buffer
// header that aliases the same storage; both headers must agree on
// mutation (the first mutation clones, per copy-on-write policy).
func (b *buffer) share() *buffer {
	switch b.kind {
	case bufOwned:
		*b.refs++
		return &buffer{kind: bufOwned, refs: b.refs, raw: b.raw}
	default:
		// Mmap and Constant buffers are immutable/materialize-on-write,
		// so aliasing them needs no refcount bookkeeping.
		return &buffer{kind: b.kind, raw: b.raw, region: b.region}
	}
}

func (b *buffer) shared() bool {
	return b.kind == bufOwned && b.refs != nil && *b.refs > 1
}

func (b *buffer) String() string {
	return fmt.Sprintf("buffer(kind=%d)", b.kind)
}

// cloneSlice deep-copies a generic slice-typed raw buffer; used by
// the copy-on-write path in TypedVector.
func cloneSlice[T any](s []T) []T {
	return slices.Clone(s)
}
