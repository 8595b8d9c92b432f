//go:build windows

package wxprobe

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var procFlushInstructionCache = windows.NewLazySystemDLL("kernel32.dll").NewProc("FlushInstructionCache")

func cacheflush(addr uintptr, n int) error {
	if err := procFlushInstructionCache.Find(); err != nil {
		return err
	}
	r1, _, err := procFlushInstructionCache.Call(uintptr(windows.CurrentProcess()), addr, uintptr(n))
	if r1 == 0 {
		return fmt.Errorf("FlushInstructionCache: %w", err)
	}
	return nil
}
