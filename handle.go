package segalloc

import "github.com/Masterminds/semver/v3"

// Handle is the opaque token Claim returns and Extend/Truncate consume,
// per spec.md §5. It names one claimed arena without exposing
// the allocator's internal slab index, so callers can hold onto it across
// calls without aliasing an internal slice.
type Handle struct {
	base, end uintptr
	version   *semver.Version

	// fingerprint and owner are populated only in debug builds
	// (segalloc_debug) by newHandle; zero otherwise, since the checks
	// that consume them are themselves compiled out.
	fingerprint uint64
	owner       *Allocator
}

func (a *Allocator) newHandle(s *arenaSlab) Handle {
	h := Handle{base: s.base, end: s.end, version: FormatVersion}
	if debugEnabled {
		h.fingerprint = fingerprintFor(a, s.base)
		h.owner = a
	}
	return h
}

// Base returns the address of the first byte of the claimed region,
// including the allocator's own sentinel bytes.
func (h Handle) Base() uintptr { return h.base }

// End returns one past the last byte of the claimed region.
func (h Handle) End() uintptr { return h.end }

// Size returns End() - Base().
func (h Handle) Size() uintptr { return h.end - h.base }

// checkHandle validates a handle against the allocator. The format-version
// check runs unconditionally — it's a real contract (spec.md §11: "Extend
// and Truncate reject a handle whose format version is incompatible with
// the live allocator"), not a debug-only UB check. The foreign-handle
// fingerprint check, by contrast, is a no-op whenever segalloc_debug isn't
// set, matching spec.md §7's "checked only in debug builds" treatment of a
// foreign or stale handle.
func (a *Allocator) checkHandle(h Handle) error {
	if h.version == nil || !formatCompatible(FormatVersion, h.version) {
		return ErrIncompatibleFormat
	}
	if !debugEnabled {
		return nil
	}
	if h.owner != nil && h.owner != a {
		return ErrForeignHandle
	}
	if h.owner == a && fingerprintFor(a, h.base) != h.fingerprint {
		return ErrForeignHandle
	}
	return nil
}
