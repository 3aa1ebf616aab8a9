package segalloc

import "fmt"

// Metrics is a structural snapshot of an Allocator, intended for tests
// and debug tooling rather than production observability (spec.md's
// Non-goals explicitly exclude a statistics/profiling facility; this is
// the minimal structural surface §8's testable properties need).
type Metrics struct {
	ArenaCount     int
	TotalCapacity  uintptr
	BytesAllocated uintptr
	BytesFree      uintptr
	FreeChunks     int
	AllocatedChunks int
}

// Metrics walks every claimed arena and tallies chunk-level counts. It
// is O(total chunks) and meant for tests/diagnostics, not a hot path.
func (a *Allocator) Metrics() Metrics {
	var m Metrics
	m.ArenaCount = len(a.arenas)
	for _, s := range a.arenas {
		m.TotalCapacity += s.userEnd - s.userBase
		addr := s.userBase
		for addr < s.userEnd {
			size := a.readHeaderSize(addr)
			t := a.readChunkTag(addr, size)
			if t.isAllocated() {
				m.BytesAllocated += size
				m.AllocatedChunks++
			} else {
				m.BytesFree += size
				m.FreeChunks++
			}
			addr += size
		}
	}
	return m
}

// CheckInvariants walks every arena and free list, verifying the
// structural invariants spec.md §8 calls out: the chunk list within each
// arena tiles its usable span exactly, no two adjacent chunks are both
// free (they would have been coalesced), every free chunk appears in
// exactly the bin binOfInsert(its size) names, and the availability
// bitfield has a set bit if and only if the corresponding bin is
// non-empty. It never mutates state and is meant for tests, not a hot
// path.
func (a *Allocator) CheckInvariants() error {
	binCounts := make(map[int]int)

	for _, s := range a.arenas {
		addr := s.userBase
		prevFree := false
		for addr < s.userEnd {
			size := a.readHeaderSize(addr)
			if size < Unit || !isAligned(size, Unit) {
				return fmt.Errorf("segalloc: chunk at %#x has invalid size %d", addr, size)
			}
			t := a.readChunkTag(addr, size)
			if t.size() != size {
				return fmt.Errorf("segalloc: chunk at %#x header/tag size mismatch", addr)
			}
			free := !t.isAllocated()
			if free && prevFree {
				return fmt.Errorf("segalloc: adjacent free chunks at/before %#x were not coalesced", addr)
			}
			wantAboveFree := false
			if addr+size < s.userEnd {
				upperTag := a.readChunkTag(addr+size, a.readHeaderSize(addr+size))
				wantAboveFree = !upperTag.isAllocated()
			}
			if t.isAboveFree() != wantAboveFree {
				return fmt.Errorf("segalloc: chunk at %#x has stale ABOVE_FREE bit", addr)
			}
			if free {
				binCounts[binOfInsert(size)]++
			}
			prevFree = free
			addr += size
		}
		if addr != s.userEnd {
			return fmt.Errorf("segalloc: arena [%#x,%#x) chunk list overruns its bounds", s.userBase, s.userEnd)
		}
	}

	for i := 0; i < totalBins; i++ {
		count := 0
		for cur := a.bins[i]; cur != 0; cur = a.readNext(cur) {
			size := a.readHeaderSize(cur)
			if binOfInsert(size) != i {
				return fmt.Errorf("segalloc: chunk at %#x of size %d sits in bin %d, wants %d", cur, size, i, binOfInsert(size))
			}
			count++
		}
		if count != binCounts[i] {
			return fmt.Errorf("segalloc: bin %d list has %d entries, chunk walk found %d", i, count, binCounts[i])
		}
		if (count > 0) != a.avail.isSet(i) {
			return fmt.Errorf("segalloc: availability bit %d disagrees with bin occupancy (%d entries)", i, count)
		}
	}
	return nil
}
