package segalloc

import "errors"

// Sentinel errors returned by the core. Contract violations (double free,
// a layout mismatch on Deallocate) are not in this list: spec.md §7
// classifies those as undefined behavior, checked only in debug builds
// (see debug_on.go), where they panic rather than return an error. A
// handle from a foreign allocator is the one contract violation with a
// sentinel: debug builds report it as ErrForeignHandle.
var (
	// ErrOOM is returned by Allocate/Realloc when the OOM handler (or the
	// absence of one) could not produce enough additional capacity.
	ErrOOM = errors.New("segalloc: out of memory")

	// ErrZeroSize is returned when Allocate is called with size == 0 and
	// the allocator is configured to reject zero-size requests rather
	// than round them up (see AllocatorOptions.RejectZeroSize).
	ErrZeroSize = errors.New("segalloc: zero-size allocation rejected")

	// ErrInvalidAlignment is returned when align is not a power of two.
	// An align of zero is treated as 1 and is not rejected.
	ErrInvalidAlignment = errors.New("segalloc: alignment must be a nonzero power of two")

	// ErrArenaTooSmall is returned by Claim when the region is too small
	// to hold the sentinels plus one minimum-size chunk.
	ErrArenaTooSmall = errors.New("segalloc: region too small to claim")

	// ErrArenaOverlap is returned by Claim when the region overlaps an
	// already-claimed arena.
	ErrArenaOverlap = errors.New("segalloc: region overlaps an existing arena")

	// ErrArenaGeometry is returned by Extend/Truncate when the requested
	// new bounds are not a superset/subset (respectively) of the current
	// arena bounds, or are not contiguous with the supplied backing
	// memory.
	ErrArenaGeometry = errors.New("segalloc: invalid arena resize geometry")

	// ErrTruncateWouldOrphan is returned by Truncate when the requested
	// bounds would split or exclude a still-allocated chunk.
	ErrTruncateWouldOrphan = errors.New("segalloc: truncate would orphan an allocated chunk")

	// ErrForeignHandle is returned (in debug builds; see debug_on.go) when
	// a Handle produced by a different Allocator instance is presented to
	// Extend or Truncate.
	ErrForeignHandle = errors.New("segalloc: handle does not belong to this allocator")

	// ErrCannotGrowInPlace is returned by GrowInPlace when there isn't
	// enough contiguous free space above the allocation to satisfy
	// newSize without moving it; the allocation is left untouched.
	ErrCannotGrowInPlace = errors.New("segalloc: cannot grow allocation in place")

	// ErrIncompatibleFormat is returned by Extend/Truncate when a handle's
	// format version has a different major version than FormatVersion, or
	// is unset (the zero Handle), per spec.md §5's handle-versioning
	// contract.
	ErrIncompatibleFormat = errors.New("segalloc: handle format version is incompatible with this allocator")
)
