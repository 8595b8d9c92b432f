//go:build !amd64 && !arm64

package wxprobe

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// No known encoding. The probe reports PatternNotFound.
var hostEncoding = Encoding{
	WindowSize:  windowUnits,
	BeforeValue: constantA,
	AfterValue:  constantB,
}

// Disassemble has no decoder for this architecture and renders raw bytes.
func Disassemble(code []byte, base uintptr) (string, error) {
	var buf strings.Builder
	for i := 0; i < len(code); i += 4 {
		end := min(i+4, len(code))
		fmt.Fprintf(&buf, "0x%08x\t%s\n", base+uintptr(i), hex.EncodeToString(code[i:end]))
	}
	return buf.String(), nil
}
