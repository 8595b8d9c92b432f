//go:build arm64 && !windows

package wxprobe

// The package carries Go assembly, so the flush cannot go through cgo. See
// cacheflush_arm64.s.
func cacheflush(addr uintptr, n int) error {
	clearCache(addr, addr+uintptr(n))
	return nil
}

// clearCache cleans the data cache to the point of unification and
// invalidates the instruction cache for [start, end), the same sequence
// __builtin___clear_cache emits.
//
//go:noescape
func clearCache(start, end uintptr)
