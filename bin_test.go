package segalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinLowerBoundMonotonic(t *testing.T) {
	// binLowerBound is non-decreasing across every bin index. It is not
	// strictly increasing at the exact-fit/power-of-two seam: bin
	// exactFitBins-1 and bin exactFitBins both report exactFitThreshold
	// as their lower bound, since the threshold itself is a power of two.
	// binOfInsert always routes a size exactly at the threshold to the
	// exact-fit bin (the <= comparison in its branch), so bin
	// exactFitBins never actually receives that boundary size — the
	// coincidence is cosmetic, not a bin-overlap bug.
	var prev uintptr
	for i := 0; i < totalBins; i++ {
		lb := binLowerBound(i)
		if i > 0 {
			assert.GreaterOrEqualf(t, lb, prev, "binLowerBound(%d) must not be below binLowerBound(%d)", i, i-1)
		}
		prev = lb
	}
}

func TestBinOfInsertExactFitTier(t *testing.T) {
	cases := []struct {
		size uintptr
		want int
	}{
		{Unit, 0},
		{Unit + 1, 0},
		{2 * Unit, 1},
		{exactFitThreshold - Unit, exactFitBins - 2},
		{exactFitThreshold, exactFitBins - 1},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, binOfInsert(tc.size), "binOfInsert(%d)", tc.size)
	}
}

func TestBinOfInsertPowerOfTwoTier(t *testing.T) {
	// Just above the exact-fit threshold, insert must land in the first
	// power-of-two octave.
	idx := binOfInsert(exactFitThreshold + Unit)
	require.GreaterOrEqual(t, idx, exactFitBins)
	require.Less(t, idx, totalBins)

	// An absurdly large size saturates into the catch-all top bin.
	assert.Equal(t, totalBins-1, binOfInsert(^uintptr(0)>>1))
}

func TestBinOfSearchSufficiency(t *testing.T) {
	// The contract spec.md §4.2 requires: any chunk found by scanning bin
	// binOfSearch(r) or higher is guaranteed to be at least r bytes —
	// i.e. binLowerBound(binOfSearch(r)) >= r, for every bin short of the
	// saturated catch-all (which the allocator scans linearly instead).
	sizes := []uintptr{Unit, 2 * Unit, 5 * Unit, exactFitThreshold, exactFitThreshold + Unit, exactFitThreshold * 4}
	for r := Unit; r <= sizes[len(sizes)-1]; r += Unit {
		b := binOfSearch(r)
		if b == totalBins-1 {
			continue // catch-all bin: sufficiency is enforced by linear scan, not by bin index
		}
		assert.GreaterOrEqualf(t, binLowerBound(b), r, "binLowerBound(binOfSearch(%d))", r)
	}
}

func TestBinOfSearchExactBoundary(t *testing.T) {
	for i := 0; i < totalBins-1; i++ {
		if i == exactFitBins {
			// binLowerBound(exactFitBins) coincides with
			// binLowerBound(exactFitBins-1) (see TestBinLowerBoundMonotonic);
			// that exact size routes to exactFitBins-1, not here.
			continue
		}
		lb := binLowerBound(i)
		assert.Equalf(t, i, binOfSearch(lb), "binOfSearch(binLowerBound(%d))", i)
	}
}
