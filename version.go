package segalloc

import "github.com/Masterminds/semver/v3"

// FormatVersion is the current on-disk/on-arena chunk layout version. A
// Handle embeds the version that was live when its arena was claimed;
// Extend and Truncate reject a handle whose major version no longer
// matches the allocator's, the same compatibility rule
// Masterminds/semver's Constraints type expresses as "^major", written out
// by hand here since the core package has no business depending on a
// constraint parser for a single comparison.
var FormatVersion = semver.MustParse("1.0.0")

// formatCompatible reports whether a handle minted under `got` may still
// be used against an allocator currently on `want`: same major version,
// want >= got otherwise (a minor/patch bump never changes chunk layout).
func formatCompatible(want, got *semver.Version) bool {
	if want.Major() != got.Major() {
		return false
	}
	return !want.LessThan(got)
}
