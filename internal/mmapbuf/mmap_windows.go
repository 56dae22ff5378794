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

//go:build windows

package mmapbuf

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// matches vm/malloc_windows.go's use of golang.org/x/sys/windows for
// the platform the unix syscall package cannot cover.
type windowsCloser struct {
	addr    uintptr
	mapping windows.Handle
}

func (c windowsCloser) Close() error {
	if c.addr == 0 {
		return nil
	}
	if err := windows.UnmapViewOfFile(c.addr); err != nil {
		return err
	}
	return windows.CloseHandle(c.mapping)
}

// Open memory-maps path read-only on Windows.
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
		return &Region{data: nil}, nil
	}
	h := windows.Handle(f.Fd())
	mapping, err := windows.CreateFileMapping(h, nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(mapping)
		return nil, err
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return &Region{data: data, impl: windowsCloser{addr: addr, mapping: mapping}}, nil
}
