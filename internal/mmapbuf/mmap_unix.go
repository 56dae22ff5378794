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

//go:build linux || darwin

package mmapbuf

import (
	"os"
	"syscall"
)

type unixCloser struct{ data []byte }

func (c unixCloser) Close() error {
	if c.data == nil {
		return nil
	}
	return syscall.Munmap(c.data)
}

// Open memory-maps path read-only, matching vm/malloc_linux.go's use
// of syscall.Mmap directly (no golang.org/x/sys dependency needed on
// unix; that dependency is reserved for the windows build below).
func Open(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &Region{data: nil, impl: unixCloser{}}, nil
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &Region{data: data, impl: unixCloser{data: data}}, nil
}
