package wxprobe

import (
	"fmt"
	"unsafe"
)

// Region is a page-aligned span of memory, the unit protection is changed in.
type Region struct {
	Start uintptr
	Len   int
}

// NewRegion returns the smallest page-aligned region covering size bytes
// starting at addr. A size less than one is treated as one byte, so the
// result is always at least the page containing addr.
func NewRegion(addr uintptr, size, pageSize int) (Region, error) {
	if pageSize <= 0 || pageSize&(pageSize-1) != 0 {
		return Region{}, fmt.Errorf("invalid page size %d", pageSize)
	}
	if size < 1 {
		size = 1
	}

	// Round address down to page boundary.
	// Example: addr=4196 with pageSize=4096 becomes 4096.
	start := addr &^ (uintptr(pageSize) - 1)

	// Cover the offset into the first page plus the requested length, then
	// round up to complete pages.
	total := int(addr-start) + size
	length := (total + pageSize - 1) &^ (pageSize - 1)

	return Region{Start: start, Len: length}, nil
}

// End returns the first address past the region.
func (r Region) End() uintptr {
	return r.Start + uintptr(r.Len)
}

// Contains reports whether addr falls inside the region.
func (r Region) Contains(addr uintptr) bool {
	return addr >= r.Start && addr < r.End()
}

// Pages returns the number of pages of pageSize in the region.
func (r Region) Pages(pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return r.Len / pageSize
}

func (r Region) String() string {
	return fmt.Sprintf("%#x-%#x", r.Start, r.End())
}

// bytes returns the region as a slice over live memory.
func (r Region) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(r.Start)), r.Len)
}
