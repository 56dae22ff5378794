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

import (
	"github.com/partiqlgo/execore/internal/mmapbuf"
)

// PhysicalVector is the type-erased enum wrapping exactly one
// typed vector of Int64, Float64, Boolean or String storage. It is
// the unit a Batch column holds.
type PhysicalVector struct {
	typ   LogicalType
	ints  *TypedVector[int64]
	flts  *TypedVector[float64]
	bools *TypedVector[bool]
	strs  *TypedVector[string]
}

func FromInt64(v *TypedVector[int64]) PhysicalVector     { return PhysicalVector{typ: Int64, ints: v} }
func FromFloat64(v *TypedVector[float64]) PhysicalVector { return PhysicalVector{typ: Float64, flts: v} }
func FromBool(v *TypedVector[bool]) PhysicalVector       { return PhysicalVector{typ: Boolean, bools: v} }
func FromString(v *TypedVector[string]) PhysicalVector   { return PhysicalVector{typ: String, strs: v} }

func (p PhysicalVector) Type() LogicalType { return p.typ }

func (p PhysicalVector) Len() int {
	switch p.typ {
	case Int64:
		return p.ints.Len()
	case Float64:
		return p.flts.Len()
	case Boolean:
		return p.bools.Len()
	case String:
		return p.strs.Len()
	default:
		return 0
	}
}

func (p PhysicalVector) Int64() *TypedVector[int64]     { return p.ints }
func (p PhysicalVector) Float64() *TypedVector[float64] { return p.flts }
func (p PhysicalVector) Bool() *TypedVector[bool]       { return p.bools }
func (p PhysicalVector) String() *TypedVector[string]   { return p.strs }

// Slice returns a zero-copy slice of the underlying typed vector,
// re-wrapped as a PhysicalVector of the same type.
func (p PhysicalVector) Slice(start, n int) PhysicalVector {
	switch p.typ {
	case Int64:
		return FromInt64(p.ints.Slice(start, n))
	case Float64:
		return FromFloat64(p.flts.Slice(start, n))
	case Boolean:
		return FromBool(p.bools.Slice(start, n))
	case String:
		return FromString(p.strs.Slice(start, n))
	default:
		panic("vector: invalid PhysicalVector")
	}
}

// Shared returns a PhysicalVector aliasing the same backing buffer.
func (p PhysicalVector) Shared() PhysicalVector {
	switch p.typ {
	case Int64:
		return FromInt64(p.ints.Shared())
	case Float64:
		return FromFloat64(p.flts.Shared())
	case Boolean:
		return FromBool(p.bools.Shared())
	case String:
		return FromString(p.strs.Shared())
	default:
		panic("vector: invalid PhysicalVector")
	}
}

// MmapInt64 constructs a read-only Int64 TypedVector from region's
// bytes, decoded little-endian into a Go slice that the vector holds
// together with region. It returns ErrUnaligned if the region's length
// is not a multiple of 8 bytes; the start address is not checked.
func MmapInt64(region *mmapbuf.Region) (*TypedVector[int64], error) {
	b := region.Bytes()
	if uintptr(len(b))%elemSize(Int64) != 0 {
		return nil, ErrUnaligned
	}
	n := len(b) / 8
	data := make([]int64, n)
	for i := 0; i < n; i++ {
		data[i] = int64(le64(b[i*8:]))
	}
	buf := newMmap(data, region)
	buf.kind = bufMmap
	return newTyped[int64](buf, 0, n), nil
}

func le64(b []byte) uint64 {
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	return u
}
