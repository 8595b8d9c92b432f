//go:build !linux

package wxprobe

import (
	"errors"
	"fmt"
)

// HostInspector returns an Inspector for the running process. Only Linux
// exposes a memory map; elsewhere the inspector reports nothing.
func HostInspector() Inspector {
	return noInspector{}
}

type noInspector struct{}

func (noInspector) DescribePage(uintptr) []string {
	return nil
}

func (noInspector) Protection(addr uintptr) (Protection, error) {
	return ProtNone, fmt.Errorf("read protection of %#x: %w", addr, errors.ErrUnsupported)
}
