//go:build unix

package wxprobe

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const (
	mprotectRX  = unix.PROT_READ | unix.PROT_EXEC
	mprotectRWX = unix.PROT_READ | unix.PROT_WRITE | unix.PROT_EXEC
)

func pageSize() int {
	return unix.Getpagesize()
}

func mprotect(r Region, p Protection) error {
	var flags int
	switch p {
	case ProtRX:
		flags = mprotectRX
	case ProtRWX:
		flags = mprotectRWX
	case ProtNone:
		flags = unix.PROT_NONE
	default:
		return fmt.Errorf("unsupported protection %v", p)
	}

	err := unix.Mprotect(r.bytes(), flags)
	if err != nil {
		return fmt.Errorf("mprotect %v %v: %w", r, p, err)
	}
	return nil
}
