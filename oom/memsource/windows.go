//go:build windows

package memsource

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Windows is a Source backed by VirtualAlloc/VirtualFree, grounded
// directly on the original allocator's Win32VirtualAllocSource.
type Windows struct {
	pageSize int
}

// New returns a Windows memory source.
func New() *Windows {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return &Windows{pageSize: int(info.PageSize)}
}

func (w *Windows) PageSize() int { return w.pageSize }

// Reserve reserves size bytes (rounded up to a page) of address space
// without committing physical memory.
func (w *Windows) Reserve(size uintptr) ([]byte, error) {
	n := roundUpPage(size, uintptr(w.pageSize))
	addr, err := windows.VirtualAlloc(0, n, windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return nil, fmt.Errorf("memsource: VirtualAlloc reserve: %w", err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), nil
}

// Commit backs region with physical memory, read/write accessible.
func (w *Windows) Commit(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&region[0]))
	_, err := windows.VirtualAlloc(addr, uintptr(len(region)), windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return fmt.Errorf("memsource: VirtualAlloc commit: %w", err)
	}
	return nil
}

// Decommit gives the physical backing for region back to the OS while
// keeping the address range reserved.
func (w *Windows) Decommit(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&region[0]))
	if err := windows.VirtualFree(addr, uintptr(len(region)), windows.MEM_DECOMMIT); err != nil {
		return fmt.Errorf("memsource: VirtualFree decommit: %w", err)
	}
	return nil
}

// Release gives up region's reservation entirely.
func (w *Windows) Release(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&region[0]))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("memsource: VirtualFree release: %w", err)
	}
	return nil
}

func roundUpPage(n, page uintptr) uintptr {
	mask := page - 1
	return (n + mask) &^ mask
}
