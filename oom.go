package segalloc

// OomHandler is consulted by Allocate and Realloc whenever no claimed
// arena has a chunk big enough for the current request. It should make
// more space available — typically by calling Claim or Extend on a — and
// return nil to have the allocator retry, or a non-nil error to abort
// the request with ErrOOM. Concrete handlers live in the oom
// subpackage: oom.Fail, oom.ClaimOnce, oom.Pages and oom.Delegate,
// mirroring spec.md §6's canonical set.
type OomHandler interface {
	// HandleOOM is given the size and alignment of the request that
	// failed so it can size a new arena appropriately. It must not
	// itself call Allocate (that would reenter the allocate loop); it
	// should only Claim/Extend.
	HandleOOM(a *Allocator, size, align uintptr) error
}
