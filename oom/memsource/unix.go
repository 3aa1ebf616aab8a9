//go:build unix

package memsource

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Unix is a Source backed by mmap/mprotect/madvise, grounded directly on
// the original allocator's UnixMMapSource.
type Unix struct {
	pageSize int
}

// New returns a Unix memory source.
func New() *Unix {
	return &Unix{pageSize: os.Getpagesize()}
}

func (u *Unix) PageSize() int { return u.pageSize }

// Reserve maps an anonymous, inaccessible region of size bytes (rounded
// up to a page), reserving address space without committing physical
// pages (PROT_NONE).
func (u *Unix) Reserve(size uintptr) ([]byte, error) {
	n := int(roundUpPage(size, uintptr(u.pageSize)))
	b, err := unix.Mmap(-1, 0, n, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("memsource: mmap reserve: %w", err)
	}
	return b, nil
}

// Commit makes region's pages readable and writable, backing them with
// physical memory on first touch.
func (u *Unix) Commit(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("memsource: mprotect commit: %w", err)
	}
	return nil
}

// Decommit advises the kernel the pages backing region may be discarded
// and marks them inaccessible again.
func (u *Unix) Decommit(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	if err := unix.Madvise(region, unix.MADV_DONTNEED); err != nil {
		return fmt.Errorf("memsource: madvise decommit: %w", err)
	}
	if err := unix.Mprotect(region, unix.PROT_NONE); err != nil {
		return fmt.Errorf("memsource: mprotect decommit: %w", err)
	}
	return nil
}

// Release unmaps region entirely, giving the address space back.
func (u *Unix) Release(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	if err := unix.Munmap(region); err != nil {
		return fmt.Errorf("memsource: munmap release: %w", err)
	}
	return nil
}

func roundUpPage(n, page uintptr) uintptr {
	mask := page - 1
	return (n + mask) &^ mask
}
