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

// Package mmapbuf memory-maps a file read-only: a thin,
// platform-specific wrapper kept out of the portable vector package so
// the Mmap buffer kind can be backed by a real OS mapping on unix and
// windows alike.
package mmapbuf

import "io"

// Region is a read-only memory-mapped byte region. The mapping
// outlives every TypedVector view into it; callers must call Close
// only after the last view is done.
type Region struct {
	data []byte
	impl io.Closer
}

// Bytes returns the mapped region.
func (r *Region) Bytes() []byte { return r.data }

// Close unmaps the region.
func (r *Region) Close() error {
	if r.impl == nil {
		return nil
	}
	return r.impl.Close()
}
