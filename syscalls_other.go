//go:build !unix && !windows

package wxprobe

import (
	"errors"
	"fmt"
	"os"
)

func pageSize() int {
	return os.Getpagesize()
}

func mprotect(r Region, p Protection) error {
	return fmt.Errorf("change protection of %v: %w", r, errors.ErrUnsupported)
}
