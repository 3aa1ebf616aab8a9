package segalloc

import (
	"runtime"
	"unsafe"
)

// Alloc reserves space for one T, zeroes it, and returns a pointer to it.
// The pointer is valid until Free[T] or Deallocate releases it.
func Alloc[T any](a *Allocator) (*T, error) {
	var zero T
	p, err := a.Allocate(unsafe.Sizeof(zero), unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	t := (*T)(p)
	*t = zero
	return t, nil
}

// AllocZeroed is identical to Alloc — provided for API consistency with
// the teacher's naming.
func AllocZeroed[T any](a *Allocator) (*T, error) { return Alloc[T](a) }

// AllocUninitialized reserves space for one T without zeroing it. Faster
// than Alloc but the contents are whatever that memory last held.
func AllocUninitialized[T any](a *Allocator) (*T, error) {
	var zero T
	p, err := a.Allocate(unsafe.Sizeof(zero), unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// AllocSlice allocates a slice of n uninitialized elements of type T.
func AllocSlice[T any](a *Allocator, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var zero T
	elemSize := unsafe.Sizeof(zero)
	p, err := a.Allocate(elemSize*uintptr(n), unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(p), n), nil
}

// AllocSliceZeroed allocates a slice of n zeroed elements of type T.
func AllocSliceZeroed[T any](a *Allocator, n int) ([]T, error) {
	s, err := AllocSlice[T](a, n)
	if err != nil || s == nil {
		return s, err
	}
	var zero T
	for i := range s {
		s[i] = zero
	}
	return s, nil
}

// FreeSlice releases a slice previously returned by AllocSlice or
// AllocSliceZeroed.
func FreeSlice[T any](a *Allocator, s []T) {
	if len(s) == 0 {
		return
	}
	var zero T
	a.Deallocate(unsafe.Pointer(&s[0]), unsafe.Sizeof(zero)*uintptr(len(s)), unsafe.Alignof(zero))
}

// Free releases a value previously returned by Alloc, AllocZeroed or
// AllocUninitialized.
func Free[T any](a *Allocator, t *T) {
	var zero T
	a.Deallocate(unsafe.Pointer(t), unsafe.Sizeof(zero), unsafe.Alignof(zero))
}

// PtrAndKeepAlive returns t and calls runtime.KeepAlive on the
// allocator, preventing it from being collected while t is still being
// used through unsafe code the compiler can't see a reference in.
func PtrAndKeepAlive[T any](a *Allocator, t *T) *T {
	runtime.KeepAlive(a)
	return t
}
