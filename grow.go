package segalloc

import "unsafe"

// GrowInPlace attempts to extend an existing allocation (made with
// oldSize, align) to newSize without moving it, by absorbing a free
// upper neighbor. It returns ErrCannotGrowInPlace (leaving the
// allocation untouched) when there isn't enough contiguous free space
// above p.
func (a *Allocator) GrowInPlace(p unsafe.Pointer, oldSize, align, newSize uintptr) error {
	if align == 0 {
		align = 1
	}
	addr := uintptr(p)
	base := a.chunkBaseForLayout(addr, oldSize, align)
	size := a.readHeaderSize(base)
	t := a.readChunkTag(base, size)
	debugAssert(t.isAllocated(), "GrowInPlace called on a freed or foreign pointer")

	needed := alignUp((addr-base)+newSize+wordSize, Unit)
	if needed <= size {
		return nil
	}
	if !t.isAboveFree() {
		return ErrCannotGrowInPlace
	}

	upperBase := base + size
	upperSize := a.readHeaderSize(upperBase)
	upperTag := a.readChunkTag(upperBase, upperSize)
	total := size + upperSize
	if needed > total {
		return ErrCannotGrowInPlace
	}

	a.removeFree(upperBase, upperSize)
	residue := total - needed
	if residue >= Unit {
		a.writeFreeChunk(base+needed, residue, upperTag.isAboveFree())
		a.insertFree(base+needed, residue)
		a.writeAllocatedChunk(base, needed, true)
	} else {
		a.writeAllocatedChunk(base, total, upperTag.isAboveFree())
	}
	return nil
}

// ShrinkInPlace reduces an allocation (made with oldSize, align) to
// newSize, releasing the freed tail back to the allocator. newSize must
// be smaller than the current usable size; callers that don't know the
// current size can find it out via UsableSize.
func (a *Allocator) ShrinkInPlace(p unsafe.Pointer, oldSize, align, newSize uintptr) {
	if align == 0 {
		align = 1
	}
	addr := uintptr(p)
	base := a.chunkBaseForLayout(addr, oldSize, align)
	size := a.readHeaderSize(base)
	t := a.readChunkTag(base, size)
	debugAssert(t.isAllocated(), "ShrinkInPlace called on a freed or foreign pointer")

	keep := alignUp((addr-base)+newSize+wordSize, Unit)
	if keep >= size {
		return
	}
	tailSize := size - keep
	if tailSize < Unit {
		return
	}

	aboveFree := t.isAboveFree()
	a.writeAllocatedChunk(base, keep, true)

	tailBase := base + keep
	if aboveFree {
		upperBase := base + size
		upperSize := a.readHeaderSize(upperBase)
		upperTag := a.readChunkTag(upperBase, upperSize)
		a.removeFree(upperBase, upperSize)
		tailSize += upperSize
		a.writeFreeChunk(tailBase, tailSize, upperTag.isAboveFree())
	} else {
		a.writeFreeChunk(tailBase, tailSize, false)
	}
	a.insertFree(tailBase, tailSize)
}

// UsableSize returns the number of bytes available in the allocation
// starting at p before the chunk boundary, which may be more than was
// originally requested. Unlike Deallocate/GrowInPlace/ShrinkInPlace,
// UsableSize has no layout to check the chunk against — finding out the
// usable size is exactly what it's for — so it uses the no-layout base
// lookup.
func (a *Allocator) UsableSize(p unsafe.Pointer) uintptr {
	addr := uintptr(p)
	base := a.chunkBaseNoLayout(addr)
	size := a.readHeaderSize(base)
	return base + size - wordSize - addr
}

// Realloc resizes an existing allocation (made with oldSize, align) to
// newSize, preferring GrowInPlace/ShrinkInPlace and falling back to
// allocate-copy-free when the chunk can't be resized where it sits.
func (a *Allocator) Realloc(p unsafe.Pointer, oldSize, align, newSize uintptr) (unsafe.Pointer, error) {
	if align == 0 {
		align = 1
	}
	if p == nil {
		return a.Allocate(newSize, align)
	}
	if newSize == 0 {
		a.Deallocate(p, oldSize, align)
		return nil, nil
	}

	addr := uintptr(p)
	if isAligned(addr, align) {
		current := a.UsableSize(p)
		if newSize <= current {
			a.ShrinkInPlace(p, oldSize, align, newSize)
			return p, nil
		}
		if a.GrowInPlace(p, oldSize, align, newSize) == nil {
			return p, nil
		}
	}

	np, err := a.Allocate(newSize, align)
	if err != nil {
		return nil, err
	}
	current := a.UsableSize(p)
	n := current
	if newSize < n {
		n = newSize
	}
	copy(unsafe.Slice((*byte)(np), n), unsafe.Slice((*byte)(p), n))
	a.Deallocate(p, oldSize, align)
	return np, nil
}
