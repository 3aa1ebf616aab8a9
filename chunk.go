package segalloc

import "unsafe"

// arenaSlab is the bookkeeping for one claimed region. The backing slice
// is retained here (rather than only as raw addresses) purely so the Go
// garbage collector keeps the memory alive for as long as the Allocator
// holds onto it; every chunk address within [base, end) is recomputed
// from this slice at the moment it's dereferenced rather than cached as a
// bare unsafe.Pointer, so nothing here depends on the slice never moving.
type arenaSlab struct {
	mem           []byte
	base, end     uintptr // Unit-aligned bounds of the managed span within mem
	userBase      uintptr // base + Unit, after the base sentinel
	userEnd       uintptr // end - Unit, before the end sentinel
	fingerprint   uint64
	formatVersion string
}

// slabFor returns the slab containing addr, or nil. Arenas are typically
// one or a handful per allocator, so a linear scan is cheap and avoids
// needing an interval tree for what is expected to be a short list.
func (a *Allocator) slabFor(addr uintptr) *arenaSlab {
	for _, s := range a.arenas {
		if addr >= s.base && addr < s.end {
			return s
		}
	}
	return nil
}

// deref turns an in-arena address into a live unsafe.Pointer, always
// re-derived from the owning slab's backing slice so it's never a stale
// uintptr round-tripped across a GC safepoint.
func (a *Allocator) deref(addr uintptr) unsafe.Pointer {
	s := a.slabFor(addr)
	if s == nil {
		panic("segalloc: internal error: address outside all claimed arenas")
	}
	p := unsafe.Pointer(&s.mem[0])
	return unsafe.Add(p, addr-uintptr(p))
}

func (a *Allocator) readWord(addr uintptr) uintptr {
	return *(*uintptr)(a.deref(addr))
}

func (a *Allocator) writeWord(addr uintptr, v uintptr) {
	*(*uintptr)(a.deref(addr)) = v
}

func (a *Allocator) readTag(addr uintptr) tag     { return tag(a.readWord(addr)) }
func (a *Allocator) writeTag(addr uintptr, t tag) { a.writeWord(addr, uintptr(t)) }

// readHeaderSize reads the size word stored at a chunk's base.
func (a *Allocator) readHeaderSize(base uintptr) uintptr { return a.readWord(base) }

func (a *Allocator) writeHeaderSize(base, size uintptr) { a.writeWord(base, size) }

// tagAddr returns the address of a chunk's tag word given its base and
// size: the top word of the chunk, immediately above the payload.
func tagAddr(base, size uintptr) uintptr { return base + size - wordSize }

func (a *Allocator) readChunkTag(base, size uintptr) tag {
	return a.readTag(tagAddr(base, size))
}

func (a *Allocator) writeChunkTag(base, size uintptr, t tag) {
	a.writeTag(tagAddr(base, size), t)
}

// Free-chunk payload layout: the first two words hold the doubly linked
// free-list pointers (absolute chunk-base addresses, 0 meaning none).
func (a *Allocator) readPrev(base uintptr) uintptr { return a.readWord(base + wordSize) }
func (a *Allocator) writePrev(base, v uintptr)     { a.writeWord(base+wordSize, v) }
func (a *Allocator) readNext(base uintptr) uintptr { return a.readWord(base + 2*wordSize) }
func (a *Allocator) writeNext(base, v uintptr)     { a.writeWord(base+2*wordSize, v) }

// writeFreeChunk (re)initializes the header, tag and free-list pointers
// for a free chunk spanning [base, base+size). heapBase/heapEnd flags are
// always recomputed from address arithmetic against the owning slab
// rather than propagated from a neighbor, so there is no separate flag
// bookkeeping to get wrong during a split or merge.
func (a *Allocator) writeFreeChunk(base, size uintptr, aboveFree bool) {
	s := a.slabFor(base)
	t := makeTag(size, 0).withAboveFree(aboveFree)
	if base == s.userBase {
		t |= flagHeapBase
	}
	if base+size == s.userEnd {
		t |= flagHeapEnd
	}
	a.writeHeaderSize(base, size)
	a.writeChunkTag(base, size, t)
	a.writePrev(base, 0)
	a.writeNext(base, 0)
}

// writeAllocatedChunk (re)initializes the header and tag for an allocated
// chunk spanning [base, base+size).
func (a *Allocator) writeAllocatedChunk(base, size uintptr, aboveFree bool) {
	s := a.slabFor(base)
	t := makeTag(size, flagAllocated).withAboveFree(aboveFree)
	if base == s.userBase {
		t |= flagHeapBase
	}
	if base+size == s.userEnd {
		t |= flagHeapEnd
	}
	a.writeHeaderSize(base, size)
	a.writeChunkTag(base, size, t)
}

// lowerNeighborTagAddr returns the address of the tag belonging to
// whatever sits directly below base (free chunk, allocated chunk, or
// the base sentinel).
func lowerNeighborTagAddr(base uintptr) uintptr { return base - wordSize }

// setLowerAboveFree updates the ABOVE_FREE bit of the chunk directly
// below base to reflect whether base's chunk is now free. It is a no-op
// when base abuts the arena's base sentinel, since the sentinel carries
// no ABOVE_FREE bit of its own (traversal simply stops there).
func (a *Allocator) setLowerAboveFree(base uintptr, free bool) {
	s := a.slabFor(base)
	if base == s.userBase {
		return
	}
	addr := lowerNeighborTagAddr(base)
	a.writeTag(addr, a.readTag(addr).withAboveFree(free))
}
