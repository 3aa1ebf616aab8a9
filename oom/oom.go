// Package oom provides the canonical segalloc.OomHandler implementations
// spec.md §6 calls out: failing fast, claiming one fixed fallback arena,
// growing by committing OS pages on demand, and delegating to another
// allocation source. These mirror the original allocator's own handler
// set (oom_handler.rs's ErrOnOom/InitOnOom/WasmHandler and
// oom/allocator_backed.rs's AllocOnOom) rather than inventing a new
// taxonomy.
package oom

import (
	"fmt"

	"github.com/segalloc/segalloc"
	"github.com/segalloc/segalloc/oom/memsource"
)

// Fail never grows the allocator; every OOM is terminal. Equivalent to
// the original's ErrOnOom and the default behavior of an Allocator with
// no handler configured at all.
type Fail struct{}

func (Fail) HandleOOM(a *segalloc.Allocator, size, align uintptr) error {
	return fmt.Errorf("oom: no handler configured, cannot satisfy %d-byte request", size)
}

// ClaimOnce claims a single fixed-size buffer the first time it's
// invoked and fails every time after, matching the original's
// InitOnOom — useful when the caller knows its peak working set and
// wants a single static arena rather than open-ended growth.
type ClaimOnce struct {
	Buffer []byte
	used   bool
}

func (c *ClaimOnce) HandleOOM(a *segalloc.Allocator, size, align uintptr) error {
	if c.used {
		return fmt.Errorf("oom: ClaimOnce buffer already claimed")
	}
	if _, err := a.Claim(c.Buffer); err != nil {
		return err
	}
	c.used = true
	return nil
}

// Pages grows the allocator by committing progressively more of a
// single up-front address-space reservation, the way the original's
// WasmHandler grows a WASM module's linear memory one page-growth call
// at a time: the reservation (Max bytes of address space) is made once,
// so every Commit/Claim/Extend operates on one contiguous mapping
// instead of stitching together independently placed regions.
type Pages struct {
	Source  memsource.Source
	Initial uintptr // first commit size; defaults to one page if zero
	Max     uintptr // total address space to reserve up front

	region    []byte
	handle    segalloc.Handle
	committed uintptr
}

func (p *Pages) HandleOOM(a *segalloc.Allocator, size, align uintptr) error {
	needed := requiredGrant(size, align)

	if p.region == nil {
		cap := p.Max
		if cap < p.committed+needed {
			cap = p.committed + needed
		}
		region, err := p.Source.Reserve(cap)
		if err != nil {
			return err
		}
		p.region = region
	}

	grant := p.Initial
	if grant == 0 {
		grant = uintptr(p.Source.PageSize())
	}
	target := p.committed
	if target == 0 {
		target = grant
	}
	for target < p.committed+needed {
		target *= 2
	}
	if target > uintptr(len(p.region)) {
		target = uintptr(len(p.region))
	}
	if target <= p.committed {
		return fmt.Errorf("oom: Pages reservation of %d bytes exhausted, %d more needed", len(p.region), needed)
	}

	// Probe with exponentially shrinking batches: the full target may be
	// rejected (e.g. the backing reservation is nearly physically
	// exhausted) even though some smaller commit would still succeed.
	// Halve the requested growth, rounding down to a whole page, and
	// retry down to the already-committed floor before giving up
	// entirely — a near-full address space should still yield whatever
	// growth remains possible instead of a hard failure.
	pageSize := uintptr(p.Source.PageSize())
	newCommitted := target
	var commitErr error
	for newCommitted > p.committed {
		commitErr = p.Source.Commit(p.region[p.committed:newCommitted])
		if commitErr == nil {
			break
		}
		batch := newCommitted - p.committed
		batch = (batch / 2 / pageSize) * pageSize
		newCommitted = p.committed + batch
	}
	if commitErr != nil {
		return commitErr
	}
	if newCommitted <= p.committed {
		return fmt.Errorf("oom: Pages could not commit any additional pages toward %d more needed", needed)
	}

	if p.committed == 0 {
		h, err := a.Claim(p.region[:newCommitted])
		if err != nil {
			return err
		}
		p.handle = h
	} else {
		h, err := a.Extend(p.handle, p.region[:newCommitted])
		if err != nil {
			return err
		}
		p.handle = h
	}
	p.committed = newCommitted
	return nil
}

// requiredGrant returns a region size that, claimed as a fresh arena,
// always holds a free chunk the allocator will hand out for a size/align
// request: the chunk itself (header and tag words, alignment padding,
// rounding to Unit), the two sentinels, the slack lost aligning the
// region's ends to Unit, and headroom for the bin search, which can skip
// a chunk only slightly larger than the request.
func requiredGrant(size, align uintptr) uintptr {
	return 2*(size+align) + 6*segalloc.Unit
}

// Delegate satisfies an OOM by pulling a fresh region from another
// allocation source — typically another segalloc.Allocator, or any
// func(uintptr) ([]byte, error) adapter — and claiming it as a new
// arena, mirroring the original's AllocOnOom<G: GlobalAlloc>.
type Delegate struct {
	Acquire func(minSize uintptr) ([]byte, error)
}

func (d Delegate) HandleOOM(a *segalloc.Allocator, size, align uintptr) error {
	mem, err := d.Acquire(requiredGrant(size, align))
	if err != nil {
		return err
	}
	_, err = a.Claim(mem)
	return err
}
