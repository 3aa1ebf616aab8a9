package segalloc

import "unsafe"

// requiredChunkSize returns the smallest Unit multiple guaranteed to hold
// a `size`-byte, `align`-aligned payload inside a chunk (header + tag
// overhead, plus worst-case alignment padding when align exceeds the word
// size —
// spec.md §4.2's "required = size + tag_unit + align_padding" sufficiency
// bound, rounded up to ALLOC_UNIT).
func requiredChunkSize(size, align uintptr) uintptr {
	// payloadMin (base+wordSize) is already wordSize-aligned, so no
	// padding is ever needed when align <= wordSize; above that, the
	// worst case slack introduced by rounding up to align is bounded by
	// align itself.
	padding := uintptr(0)
	if align > wordSize {
		padding = align
	}
	req := saturatingAdd(saturatingAdd(size, wordSize), saturatingAdd(wordSize, padding))
	if req < Unit {
		req = Unit
	}
	return alignUp(req, Unit)
}

// Allocate reserves size bytes aligned to align (which must be a power
// of two) and returns a pointer to the reserved region. If no claimed
// arena has room, the configured OomHandler (if any) is given a chance
// to make room before Allocate gives up with ErrOOM.
func (a *Allocator) Allocate(size, align uintptr) (unsafe.Pointer, error) {
	if align == 0 {
		align = 1
	}
	if !isPowerOfTwo(align) {
		return nil, ErrInvalidAlignment
	}
	if size == 0 {
		if a.rejectZeroSize {
			return nil, ErrZeroSize
		}
		size = 1
	}

	for {
		if p, ok := a.tryAllocate(size, align); ok {
			return p, nil
		}
		h := a.oom
		if h == nil {
			return nil, ErrOOM
		}
		if err := h.HandleOOM(a, size, align); err != nil {
			return nil, ErrOOM
		}
	}
}

// tryAllocate makes a single pass over the free lists without consulting
// the OOM handler.
func (a *Allocator) tryAllocate(size, align uintptr) (unsafe.Pointer, bool) {
	required := requiredChunkSize(size, align)
	j := binOfSearch(required)
	for {
		j = a.avail.findFirstSetAtOrAbove(j)
		if j == -1 {
			return nil, false
		}
		base, chunkSize, ok := a.findFit(j, required)
		if ok {
			return a.commitAllocation(base, chunkSize, size, align), true
		}
		j++
	}
}

func (a *Allocator) findFit(j int, required uintptr) (base, size uintptr, ok bool) {
	if j < totalBins-1 {
		head := a.bins[j]
		if head == 0 {
			return 0, 0, false
		}
		return head, a.readHeaderSize(head), true
	}
	cur := a.bins[j]
	for cur != 0 {
		sz := a.readHeaderSize(cur)
		if sz >= required {
			return cur, sz, true
		}
		cur = a.readNext(cur)
	}
	return 0, 0, false
}

// commitAllocation carves the user's [p, p+size) region out of the free
// chunk [base, base+chunkSize), splitting off a low and/or high residue
// when there's enough slack left over to form a standalone chunk.
func (a *Allocator) commitAllocation(base, chunkSize, size, align uintptr) unsafe.Pointer {
	origEnd := base + chunkSize
	origTag := a.readChunkTag(base, chunkSize)
	a.removeFree(base, chunkSize)

	payloadMin := base + wordSize
	p := alignUp(payloadMin, align)

	newBase := base
	lowSplit := alignDown(p-wordSize, Unit)
	if lowSplit > base && lowSplit-base >= Unit {
		a.writeFreeChunk(base, lowSplit-base, false)
		a.insertFree(base, lowSplit-base)
		newBase = lowSplit
	} else {
		// No standalone low residue: if the chunk below `base` was
		// free, its ABOVE_FREE bit must flip now that base is
		// allocated.
		a.setLowerAboveFree(base, false)
	}

	tagPos := p + size
	allocSize := alignUp(tagPos+wordSize-newBase, Unit)
	newChunkEnd := newBase + allocSize

	highResidue := origEnd - newChunkEnd
	aboveFree := origTag.isAboveFree()
	if highResidue >= Unit {
		a.writeFreeChunk(newChunkEnd, highResidue, origTag.isAboveFree())
		a.insertFree(newChunkEnd, highResidue)
		aboveFree = true
	} else {
		allocSize = origEnd - newBase
	}

	a.writeAllocatedChunk(newBase, allocSize, aboveFree)
	return a.deref(p)
}

// Deallocate releases a region previously returned by Allocate or
// Realloc. size and align must equal the layout the allocation was made
// with (spec.md §6: "ptr must come from a prior allocate/realloc with
// equal layout"). Double-freeing, passing a pointer Allocate never
// returned, or passing a layout that doesn't match the one the chunk was
// allocated with, is a contract violation (spec.md §7): checked only in
// debug builds.
func (a *Allocator) Deallocate(p unsafe.Pointer, size, align uintptr) {
	if align == 0 {
		align = 1
	}
	addr := uintptr(p)
	base := a.chunkBaseForLayout(addr, size, align)
	actual := a.readHeaderSize(base)
	t := a.readChunkTag(base, actual)
	debugAssert(t.isAllocated(), "double free or foreign pointer passed to Deallocate")

	a.freeChunk(base, actual, t)
}

// chunkBaseNoLayout recovers the base of the chunk whose payload begins
// at addr in O(1), without a caller-supplied layout to check it
// against. commitAllocation always derives the returned pointer as
// alignUp(base+wordSize, align), then splits any whole-Unit low residue
// off as a separate free chunk, which moves the allocated chunk's base up
// to alignDown(p-wordSize, Unit) — so that identity, run in reverse,
// recovers the base directly from the pointer. GrowInPlace and
// ShrinkInPlace never relocate a chunk's base once it's allocated, so
// this identity holds for the lifetime of the allocation, not just
// immediately after Allocate returns. No scan over the arena's chunk
// list is needed.
func (a *Allocator) chunkBaseNoLayout(addr uintptr) uintptr {
	base := alignDown(addr-wordSize, Unit)
	s := a.slabFor(addr)
	if s == nil || base < s.userBase || base >= s.userEnd {
		panic("segalloc: pointer does not belong to any claimed arena")
	}
	return base
}

// chunkBaseForLayout is chunkBaseNoLayout plus a debug-only check that
// the caller-supplied size/align actually matches the layout the chunk
// was allocated with, catching the "deallocate with wrong layout"
// contract violation spec.md §7 calls out.
func (a *Allocator) chunkBaseForLayout(addr, size, align uintptr) uintptr {
	base := a.chunkBaseNoLayout(addr)
	actual := a.readHeaderSize(base)
	debugAssert(requiredChunkSize(size, align) <= actual, "deallocate/realloc layout does not match the chunk's allocated layout")
	return base
}

// freeChunk marks [base, base+size) free and coalesces with either
// neighbor that is already free.
func (a *Allocator) freeChunk(base, size uintptr, t tag) {
	aboveFree := t.isAboveFree()

	if aboveFree {
		upperBase := base + size
		upperSize := a.readHeaderSize(upperBase)
		upperTag := a.readChunkTag(upperBase, upperSize)
		a.removeFree(upperBase, upperSize)
		size += upperSize
		aboveFree = upperTag.isAboveFree()
	}

	if !t.isHeapBase() {
		lowerTagAddr := lowerNeighborTagAddr(base)
		lowerTag := a.readTag(lowerTagAddr)
		if !lowerTag.isAllocated() {
			lowerSize := lowerTag.size()
			lowerBase := base - lowerSize
			a.removeFree(lowerBase, lowerSize)
			base = lowerBase
			size += lowerSize
		}
	}

	a.writeFreeChunk(base, size, aboveFree)
	a.insertFree(base, size)
	a.setLowerAboveFree(base, true)
}
