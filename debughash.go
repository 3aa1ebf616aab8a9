package segalloc

import (
	"unsafe"

	"github.com/dolthub/maphash"
)

// fingerprintKey identifies one (allocator instance, arena) pairing.
type fingerprintKey struct {
	allocator uintptr
	arenaBase uintptr
}

// fingerprintHasher is package-global: dolthub/maphash seeds a Hasher
// once per process and reuses it, which is exactly what a debug-only
// sanity check wants (speed over a per-call random seed).
var fingerprintHasher = maphash.NewHasher[fingerprintKey]()

// fingerprintFor computes the debug fingerprint embedded in a Handle from
// the allocator's address and the arena base: enough to catch "handle
// from a different Allocator" mistakes in debug builds, per spec.md §7's
// undefined-behavior-but-worth-catching class of contract violation. A
// stale handle for an earlier arena of the same Allocator at the same base
// hashes to the same value and is not caught.
func fingerprintFor(allocator *Allocator, arenaBase uintptr) uint64 {
	return fingerprintHasher.Hash(fingerprintKey{
		allocator: uintptr(unsafe.Pointer(allocator)),
		arenaBase: arenaBase,
	})
}
