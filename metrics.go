package segalloc

// The convenience accessors below mirror the teacher's SizeInUse/
// NumChunks/Capacity/Utilization quartet, rebased onto Metrics (see
// invariants.go) since a segregated-fit allocator's "in use" figure
// isn't a single bump offset but a sum over every allocated chunk in
// every arena.

// SizeInUse returns the total number of bytes currently allocated
// across all claimed arenas, including header/tag overhead.
func (a *Allocator) SizeInUse() uintptr { return a.Metrics().BytesAllocated }

// Capacity returns the total usable byte span across all claimed
// arenas (excluding sentinel padding).
func (a *Allocator) Capacity() uintptr { return a.Metrics().TotalCapacity }

// NumArenas returns the number of currently claimed arenas.
func (a *Allocator) NumArenas() int { return len(a.arenas) }

// Utilization returns the ratio of bytes in use to total capacity
// (0.0 to 1.0), or 0 if no arena has been claimed.
func (a *Allocator) Utilization() float64 {
	m := a.Metrics()
	if m.TotalCapacity == 0 {
		return 0
	}
	return float64(m.BytesAllocated) / float64(m.TotalCapacity)
}
