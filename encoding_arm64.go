package wxprobe

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/arch/arm64/arm64asm"
)

// AArch64 (A64) encodings, little-endian. The target routine loads its result
// into W0 before storing it to the ABI0 result slot.
const (
	// mov w0, wzr (orr w0, wzr, wzr)
	opMovW0Zero = uint32(0x2a1f03e0)

	// mov w0, #1 (movz w0, #0x1)
	opMovW0One = uint32(0x52800020)
)

var hostEncoding = Encoding{
	Arch:        "arm64",
	Before:      binary.LittleEndian.AppendUint32(nil, opMovW0Zero),
	After:       binary.LittleEndian.AppendUint32(nil, opMovW0One),
	Stride:      4,
	WindowSize:  windowUnits * 4,
	BeforeValue: constantA,
	AfterValue:  constantB,
}

// Disassemble renders code as one instruction per line. base is the address
// the code executes from and is only used for display.
func Disassemble(code []byte, base uintptr) (string, error) {
	var buf bytes.Buffer

	for i := 0; i < len(code)&^3; i += 4 {
		var asm string
		instruction, err := arm64asm.Decode(code[i:])
		if err == nil {
			asm = instruction.String()
		} else {
			asm = "?"
		}
		fmt.Fprintf(&buf, "0x%08x\t%-20s\t%s\n", base+uintptr(i), hex.EncodeToString(code[i:i+4]), asm)
	}

	return buf.String(), nil
}
