package wxprobe

import "bytes"

// Target routine return values before and after patching.
const (
	constantA = 0
	constantB = 1
)

// windowUnits is how many instruction units are scanned for the pattern.
const windowUnits = 64

// Encoding describes the instruction the probe looks for and what it
// replaces it with.
type Encoding struct {
	Arch string

	// Before is the "return constant A" instruction, After the "return
	// constant B" instruction. Both must be the same length.
	Before []byte
	After  []byte

	// Stride is the alignment of instructions, in bytes.
	Stride int

	// WindowSize bounds the scan, in bytes from the routine's entry.
	WindowSize int

	BeforeValue int
	AfterValue  int
}

// HostEncoding returns the encoding for the architecture the program was
// built for. On architectures without a known encoding Supported reports
// false.
func HostEncoding() Encoding {
	return hostEncoding
}

// Supported reports whether the encoding has a pattern to look for.
func (e Encoding) Supported() bool {
	return len(e.Before) > 0 && len(e.Before) == len(e.After) && e.Stride > 0
}

// Find returns the offset of the first occurrence of Before in window,
// checking only offsets that are multiples of Stride. Matches that would run
// past the end of window are ignored.
func (e Encoding) Find(window []byte) (int, bool) {
	if !e.Supported() {
		return 0, false
	}

	for off := 0; off+len(e.Before) <= len(window); off += e.Stride {
		if bytes.Equal(window[off:off+len(e.Before)], e.Before) {
			return off, true
		}
	}
	return 0, false
}
