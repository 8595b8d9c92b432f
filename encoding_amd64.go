package wxprobe

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// x86-64 encodings. The target routine loads its result into EAX before
// storing it to the ABI0 result slot. Writing EAX zero-extends into RAX.
const (
	opcodeMOV_imm_r32 = 0xb8 // MOV EAX, imm32
	opcodeINT3        = 0xcc
)

var hostEncoding = Encoding{
	Arch:        "amd64",
	Before:      []byte{opcodeMOV_imm_r32, constantA, 0, 0, 0},
	After:       []byte{opcodeMOV_imm_r32, constantB, 0, 0, 0},
	Stride:      1,
	WindowSize:  windowUnits,
	BeforeValue: constantA,
	AfterValue:  constantB,
}

// Disassemble renders code as one instruction per line. base is the address
// the code executes from and is only used for display. INT3 padding is
// collapsed into a single line.
func Disassemble(code []byte, base uintptr) (string, error) {
	var buf bytes.Buffer

	for i := 0; i < len(code); {
		if code[i] == opcodeINT3 {
			n := 1
			for i+n < len(code) && code[i+n] == opcodeINT3 {
				n++
			}
			fmt.Fprintf(&buf, "0x%08x\t%-20s\tINT3 x%d\n", base+uintptr(i), "cc", n)
			i += n
			continue
		}

		instruction, err := x86asm.Decode(code[i:], 64)
		if err != nil {
			return "", fmt.Errorf("decode error at offset %d: %w", i, err)
		}
		fmt.Fprintf(&buf, "0x%08x\t%-20s\t%s\n", base+uintptr(i), hex.EncodeToString(code[i:i+instruction.Len]), instruction.String())

		i += instruction.Len
	}

	return buf.String(), nil
}
