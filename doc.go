// Package segalloc implements a segregated free-list memory allocator
// core: the reusable heart of a general-purpose allocator, independent
// of where its backing memory comes from.
//
// # Overview
//
// An Allocator hands out and reclaims byte ranges from one or more
// independently claimed arenas. Unlike a bump/region allocator, freed
// space is tracked in size-class ("bin") free lists and coalesced with
// neighboring free chunks, so long-lived allocators can reuse memory
// indefinitely rather than only ever growing.
//
//	a := segalloc.New(segalloc.AllocatorOptions{})
//	mem := make([]byte, 1<<20)
//	h, err := a.Claim(mem)
//	if err != nil {
//		// handle err
//	}
//	p, err := a.Allocate(64, 8)
//	// ... use p ...
//	a.Deallocate(p, 64, 8)
//
// # Arenas
//
// A claimed region is named by a Handle, which Claim, Extend and
// Truncate accept and return. An Allocator never requests memory on its
// own; something above it — a caller, or an OomHandler — supplies byte
// slices via Claim/Extend.
//
// # Out-of-memory handling
//
// When Allocate or Realloc can't satisfy a request from existing free
// space, the Allocator consults its OomHandler, if one is configured via
// AllocatorOptions or SetOomHandler. Concrete handlers — failing fast,
// claiming one fixed fallback arena, growing page-by-page, or delegating
// to another allocator — live in the oom subpackage.
//
// # Concurrency
//
// Allocator itself assumes single-owner (single-goroutine) access, the
// same way the teacher arena.Arena is unsynchronized by default; wrap
// one in segsync.SafeAllocator for concurrent use.
//
// # Debug builds
//
// Building with -tags segalloc_debug enables contract-violation
// assertions (double free, a Deallocate layout larger than the chunk)
// that panic instead of silently corrupting state, and makes Extend and
// Truncate return ErrForeignHandle for a Handle minted by another
// Allocator; both are compiled out entirely otherwise, matching spec.md
// §7's zero-overhead-in-release posture. The Handle format-version check
// (ErrIncompatibleFormat) runs in every build.
package segalloc
