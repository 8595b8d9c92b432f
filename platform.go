package wxprobe

// Platform is the set of OS services the probe depends on.
type Platform interface {
	// PageSize returns the size of a memory page. It must be queried from
	// the running system since it differs between platforms.
	PageSize() int

	// Protect changes the protection of every page in r.
	Protect(r Region, p Protection) error

	// InvalidateICache makes instruction fetches from [addr, addr+n) observe
	// prior data writes. It must be complete when it returns.
	InvalidateICache(addr uintptr, n int) error
}

// HostPlatform returns the Platform backed by the running OS.
func HostPlatform() Platform {
	return hostPlatform{}
}

type hostPlatform struct{}

func (hostPlatform) PageSize() int {
	return pageSize()
}

func (hostPlatform) Protect(r Region, p Protection) error {
	return mprotect(r, p)
}

func (hostPlatform) InvalidateICache(addr uintptr, n int) error {
	if n <= 0 {
		return nil
	}
	return cacheflush(addr, n)
}
