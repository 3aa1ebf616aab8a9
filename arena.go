package segalloc

import (
	"sort"
	"unsafe"
)

// Allocator is a segregated free-list allocator over one or more
// independently claimed memory regions ("arenas"). The zero value is not
// usable; construct one with New. Unlike the teacher's bump Arena, an
// Allocator supports Deallocate, Grow and Shrink because freed space is
// tracked in per-size-class free lists rather than only ever moving a
// bump pointer forward.
type Allocator struct {
	arenas []*arenaSlab
	bins   [totalBins]uintptr
	avail  availability

	oom            OomHandler
	rejectZeroSize bool
}

// AllocatorOptions configures a new Allocator. The zero value is a
// reasonable default: zero-size requests are rounded up to Unit rather
// than rejected, and there is no OOM handler (Allocate returns ErrOOM as
// soon as no claimed arena can satisfy a request).
type AllocatorOptions struct {
	// RejectZeroSize, if true, makes Allocate(0, align) return
	// ErrZeroSize instead of silently allocating Unit bytes.
	RejectZeroSize bool

	// OomHandler is consulted when no free chunk satisfies a request.
	// A nil handler is equivalent to oom.Fail{}.
	OomHandler OomHandler
}

// New constructs an Allocator with no arenas claimed yet. Callers must
// Claim at least one region before the first Allocate.
func New(opts AllocatorOptions) *Allocator {
	return &Allocator{oom: opts.OomHandler, rejectZeroSize: opts.RejectZeroSize}
}

// SetOomHandler replaces the OOM handler consulted by Allocate and
// Realloc. Passing nil restores the fail-fast default.
func (a *Allocator) SetOomHandler(h OomHandler) { a.oom = h }

// Claim adds mem as a new arena and returns a Handle naming it. mem must
// not overlap any previously claimed arena. The allocator trims at most
// Unit-1 bytes off the front to align the usable region to Unit, so a
// mem slice shorter than roughly 3*Unit after that trim is rejected with
// ErrArenaTooSmall (spec.md §4.8's minimum-viable-arena rule).
func (a *Allocator) Claim(mem []byte) (Handle, error) {
	if len(mem) == 0 {
		return Handle{}, ErrArenaTooSmall
	}
	base := uintptr(unsafe.Pointer(&mem[0]))
	rawEnd := base + uintptr(len(mem))

	alignedBase := alignUp(base, Unit)
	if alignedBase-base+2*Unit+Unit > uintptr(len(mem)) {
		return Handle{}, ErrArenaTooSmall
	}
	usable := alignDown(rawEnd-alignedBase, Unit)
	end := alignedBase + usable
	if usable < 3*Unit {
		return Handle{}, ErrArenaTooSmall
	}

	for _, s := range a.arenas {
		if alignedBase < s.end && s.base < end {
			return Handle{}, ErrArenaOverlap
		}
	}

	s := &arenaSlab{
		mem:      mem,
		base:     alignedBase,
		end:      end,
		userBase: alignedBase + Unit,
		userEnd:  end - Unit,
	}
	a.arenas = append(a.arenas, s)
	a.insertFreshArenaChunk(s)
	return a.newHandle(s), nil
}

// insertFreshArenaChunk installs the single free chunk spanning a newly
// claimed slab's entire usable span.
func (a *Allocator) insertFreshArenaChunk(s *arenaSlab) {
	size := s.userEnd - s.userBase
	a.writeFreeChunk(s.userBase, size, false)
	a.insertFree(s.userBase, size)
}

// Extend grows an existing arena to cover a larger backing region. mem
// must start at or before h.Base() and end at or after h.End(); the
// newly exposed head (or tail) becomes additional free space. Shrinking
// or moving an arena is not "extend" — use Truncate to shrink.
func (a *Allocator) Extend(h Handle, mem []byte) (Handle, error) {
	if err := a.checkHandle(h); err != nil {
		return Handle{}, err
	}
	s := a.slabFor(h.base)
	if s == nil || s.base != h.base || s.end != h.end {
		return Handle{}, ErrArenaGeometry
	}
	if len(mem) == 0 {
		return Handle{}, ErrArenaGeometry
	}

	newBase := uintptr(unsafe.Pointer(&mem[0]))
	newRawEnd := newBase + uintptr(len(mem))
	if newBase > s.base || newRawEnd < s.end {
		return Handle{}, ErrArenaGeometry
	}

	newAlignedBase := alignUp(newBase, Unit)
	if newAlignedBase > s.base {
		return Handle{}, ErrArenaGeometry
	}
	newUsableEnd := s.base + alignDown(newRawEnd-s.base, Unit)

	s.mem = mem
	if newAlignedBase < s.base {
		a.growDown(s, newAlignedBase)
	}
	if newUsableEnd > s.end {
		a.growUp(s, newUsableEnd)
	}
	return a.newHandle(s), nil
}

// growDown extends a slab's low boundary down to newBase, folding the
// new space into a free chunk (merging with the existing bottom chunk
// when it is already free).
func (a *Allocator) growDown(s *arenaSlab, newBase uintptr) {
	oldUserBase := s.userBase
	s.base = newBase
	s.userBase = newBase + Unit

	headerSize := a.readHeaderSize(oldUserBase)
	t := a.readChunkTag(oldUserBase, headerSize)
	if !t.isAllocated() {
		a.removeFree(oldUserBase, headerSize)
		newSize := (oldUserBase - s.userBase) + headerSize
		a.writeFreeChunk(s.userBase, newSize, t.isAboveFree())
		a.insertFree(s.userBase, newSize)
	} else {
		gap := oldUserBase - s.userBase
		a.writeChunkTag(oldUserBase, headerSize, t&^flagHeapBase)
		a.writeFreeChunk(s.userBase, gap, false)
		a.insertFree(s.userBase, gap)
	}
}

// growUp extends a slab's high boundary up to newEnd, folding the new
// space into a free chunk (merging with the existing top chunk when it
// is already free).
func (a *Allocator) growUp(s *arenaSlab, newEnd uintptr) {
	oldUserEnd := s.userEnd
	s.end = newEnd
	s.userEnd = newEnd - Unit

	t := a.readTag(oldUserEnd - wordSize)
	size := t.size()
	base := oldUserEnd - size
	if !t.isAllocated() {
		a.removeFree(base, size)
		newSize := s.userEnd - base
		a.writeFreeChunk(base, newSize, false)
		a.insertFree(base, newSize)
	} else {
		gap := s.userEnd - oldUserEnd
		a.writeFreeChunk(oldUserEnd, gap, false)
		a.insertFree(oldUserEnd, gap)
		a.writeTag(oldUserEnd-wordSize, (t &^ flagHeapEnd).withAboveFree(true))
	}
}

// Truncate shrinks an arena to the bounds of mem, which must lie within
// the current arena. ErrTruncateWouldOrphan is returned if an allocated
// chunk falls (even partially) outside the new bounds.
func (a *Allocator) Truncate(h Handle, mem []byte) (Handle, error) {
	if err := a.checkHandle(h); err != nil {
		return Handle{}, err
	}
	s := a.slabFor(h.base)
	if s == nil || s.base != h.base || s.end != h.end {
		return Handle{}, ErrArenaGeometry
	}

	var newBase, newEnd uintptr
	if len(mem) == 0 {
		newBase, newEnd = s.base, s.base
	} else {
		newBase = uintptr(unsafe.Pointer(&mem[0]))
		newEnd = newBase + uintptr(len(mem))
	}
	if newBase < s.base || newEnd > s.end {
		return Handle{}, ErrArenaGeometry
	}
	newBase = alignUp(newBase, Unit)
	newEnd = alignDown(newEnd, Unit)
	if newEnd < newBase {
		return Handle{}, ErrArenaGeometry
	}
	if newEnd != newBase && newEnd-newBase < 3*Unit {
		return Handle{}, ErrArenaGeometry
	}

	var newUserBase, newUserEnd uintptr
	if newEnd == newBase {
		newUserBase, newUserEnd = s.userBase, s.userBase
	} else {
		newUserBase = newBase + Unit
		newUserEnd = newEnd - Unit
	}

	if a.rangeHasAllocated(s.userBase, newUserBase) || a.rangeHasAllocated(newUserEnd, s.userEnd) {
		return Handle{}, ErrTruncateWouldOrphan
	}

	a.trimFreeSpace(s.userBase, newUserBase)
	a.trimFreeSpace(newUserEnd, s.userEnd)

	s.base, s.end = newBase, newEnd
	s.userBase, s.userEnd = newUserBase, newUserEnd
	if newEnd > newBase {
		bottomSize := a.readHeaderSize(newUserBase)
		t := a.readChunkTag(newUserBase, bottomSize)
		if !t.isAllocated() {
			a.removeFree(newUserBase, bottomSize)
			a.writeFreeChunk(newUserBase, bottomSize, t.isAboveFree())
			a.insertFree(newUserBase, bottomSize)
		}
	}
	return a.newHandle(s), nil
}

// rangeHasAllocated walks the chunk list within [from, to) — which must
// already fall on chunk boundaries — and reports whether any chunk in
// that span is allocated.
func (a *Allocator) rangeHasAllocated(from, to uintptr) bool {
	if from >= to {
		return false
	}
	addr := from
	for addr < to {
		size := a.readHeaderSize(addr)
		if a.readChunkTag(addr, size).isAllocated() {
			return true
		}
		addr += size
	}
	return false
}

// trimFreeSpace removes every free chunk wholly within [from, to) from
// its bin. Callers must first confirm (via rangeHasAllocated) that the
// span holds no allocated chunk.
func (a *Allocator) trimFreeSpace(from, to uintptr) {
	if from >= to {
		return
	}
	addr := from
	for addr < to {
		size := a.readHeaderSize(addr)
		a.removeFree(addr, size)
		addr += size
	}
}

// Arenas returns the bounds of every currently claimed arena, sorted by
// base address, for diagnostics and Metrics.
func (a *Allocator) Arenas() []Handle {
	hs := make([]Handle, len(a.arenas))
	for i, s := range a.arenas {
		hs[i] = a.newHandle(s)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i].base < hs[j].base })
	return hs
}
