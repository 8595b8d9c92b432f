//go:build windows

package wxprobe

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

const (
	mprotectRX  = windows.PAGE_EXECUTE_READ
	mprotectRWX = windows.PAGE_EXECUTE_READWRITE
)

func pageSize() int {
	return os.Getpagesize()
}

func mprotect(r Region, p Protection) error {
	var flags uint32
	switch p {
	case ProtRX:
		flags = mprotectRX
	case ProtRWX:
		flags = mprotectRWX
	case ProtNone:
		flags = windows.PAGE_NOACCESS
	default:
		return fmt.Errorf("unsupported protection %v", p)
	}

	var oldFlags uint32
	err := windows.VirtualProtect(r.Start, uintptr(r.Len), flags, &oldFlags)
	if err != nil {
		return fmt.Errorf("VirtualProtect %v %v: %w", r, p, err)
	}
	return nil
}
