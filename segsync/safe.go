// Package segsync wraps a segalloc.Allocator with a mutex for concurrent
// use, the same role the teacher's SafeArena plays for its bump Arena.
package segsync

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/segalloc/segalloc"
	"github.com/timandy/routine"
)

// SafeAllocator is a mutex-protected wrapper around segalloc.Allocator.
// All operations are thread-safe but come with the overhead of mutex
// locking; single-threaded callers should use segalloc.Allocator
// directly.
type SafeAllocator struct {
	mu        sync.Mutex
	a         *segalloc.Allocator
	ownerGoid int64 // 0 when unlocked
}

// NewSafeAllocator wraps an existing Allocator. The Allocator must not
// be used directly (without going through this wrapper) once wrapped.
func NewSafeAllocator(a *segalloc.Allocator) *SafeAllocator {
	return &SafeAllocator{a: a}
}

// lock acquires the mutex and records the calling goroutine as its owner,
// so that checkReentrant can panic when the owner calls back in — most
// commonly an OomHandler calling back into the same SafeAllocator it was
// invoked to grow, which would otherwise deadlock on the plain sync.Mutex.
func (s *SafeAllocator) lock() {
	s.mu.Lock()
	s.ownerGoid = routine.Goid()
}

func (s *SafeAllocator) unlock() {
	s.ownerGoid = 0
	s.mu.Unlock()
}

func (s *SafeAllocator) checkReentrant() {
	if s.ownerGoid != 0 && s.ownerGoid == routine.Goid() {
		panic(fmt.Sprintf("segsync: reentrant call into SafeAllocator from goroutine %d", s.ownerGoid))
	}
}

// Claim thread-safely adds mem as a new arena.
func (s *SafeAllocator) Claim(mem []byte) (segalloc.Handle, error) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	return s.a.Claim(mem)
}

// Extend thread-safely grows an existing arena.
func (s *SafeAllocator) Extend(h segalloc.Handle, mem []byte) (segalloc.Handle, error) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	return s.a.Extend(h, mem)
}

// Truncate thread-safely shrinks an existing arena.
func (s *SafeAllocator) Truncate(h segalloc.Handle, mem []byte) (segalloc.Handle, error) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	return s.a.Truncate(h, mem)
}

// Allocate thread-safely reserves size bytes aligned to align.
func (s *SafeAllocator) Allocate(size, align uintptr) (unsafe.Pointer, error) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	return s.a.Allocate(size, align)
}

// Deallocate thread-safely releases a region previously returned by
// Allocate or Realloc. size and align must match the layout the
// allocation was made with.
func (s *SafeAllocator) Deallocate(p unsafe.Pointer, size, align uintptr) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	s.a.Deallocate(p, size, align)
}

// Realloc thread-safely resizes an existing allocation made with
// oldSize, align.
func (s *SafeAllocator) Realloc(p unsafe.Pointer, oldSize, align, newSize uintptr) (unsafe.Pointer, error) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	return s.a.Realloc(p, oldSize, align, newSize)
}

// GrowInPlace thread-safely attempts to extend an allocation made with
// oldSize, align without moving it.
func (s *SafeAllocator) GrowInPlace(p unsafe.Pointer, oldSize, align, newSize uintptr) error {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	return s.a.GrowInPlace(p, oldSize, align, newSize)
}

// ShrinkInPlace thread-safely reduces an allocation made with oldSize,
// align to newSize.
func (s *SafeAllocator) ShrinkInPlace(p unsafe.Pointer, oldSize, align, newSize uintptr) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	s.a.ShrinkInPlace(p, oldSize, align, newSize)
}

// Metrics thread-safely returns a structural snapshot of the allocator.
func (s *SafeAllocator) Metrics() segalloc.Metrics {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	return s.a.Metrics()
}

// SafeAlloc thread-safely reserves space for one T, zeroed.
func SafeAlloc[T any](s *SafeAllocator) (*T, error) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	return segalloc.Alloc[T](s.a)
}

// SafeAllocSlice thread-safely allocates a slice of n uninitialized
// elements of type T.
func SafeAllocSlice[T any](s *SafeAllocator, n int) ([]T, error) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	return segalloc.AllocSlice[T](s.a, n)
}

// SafeFree thread-safely releases a value returned by SafeAlloc.
func SafeFree[T any](s *SafeAllocator, t *T) {
	s.checkReentrant()
	s.lock()
	defer s.unlock()
	segalloc.Free[T](s.a, t)
}
