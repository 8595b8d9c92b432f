//go:build amd64 || arm64

package wxprobe

// targetRoutine returns 0 until patched. It is written in assembly so its
// encoding is fixed and it can never be inlined.
func targetRoutine() int

// targetRoutineAddr returns the entry address of targetRoutine's body. The
// func value of targetRoutine points at an ABI wrapper instead.
func targetRoutineAddr() uintptr
