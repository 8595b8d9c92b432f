package wxprobe

import (
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"unsafe"
)

// Target is a routine the probe can call, read and patch.
//
// Offsets passed to ReadAt and WriteAt are relative to Entry. Lock and Unlock
// guard the mutation window: while the lock is held Call must not run.
type Target interface {
	Entry() uintptr
	Call() int

	io.ReaderAt
	io.WriterAt
	sync.Locker
}

// Routine is the built-in target, a function in this package's text that
// returns 0 until the probe patches it.
var Routine Target = &routine{}

// TargetRoutine calls the built-in target routine.
func TargetRoutine() int {
	return Routine.Call()
}

type routine struct {
	// Guards the instruction bytes of targetRoutine. Calls share it, the
	// probe holds it exclusively from elevation until protection is
	// restored.
	mu sync.RWMutex
}

func (r *routine) Entry() uintptr {
	return targetRoutineAddr()
}

func (r *routine) Call() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return targetRoutine()
}

func (r *routine) Lock()   { r.mu.Lock() }
func (r *routine) Unlock() { r.mu.Unlock() }

// ReadAt copies code bytes into p. Reads never go past the routine's scan
// window.
func (r *routine) ReadAt(p []byte, off int64) (int, error) {
	code, err := r.span(len(p), off)
	if err != nil {
		return 0, err
	}
	n := copy(p, code)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt overwrites code bytes. A write to a page the platform still
// refuses to write returns an error instead of crashing the process.
func (r *routine) WriteAt(p []byte, off int64) (n int, err error) {
	code, err := r.span(len(p), off)
	if err != nil {
		return 0, err
	}
	if len(code) < len(p) {
		return 0, fmt.Errorf("write of %d bytes at offset %d: %w", len(p), off, io.ErrShortWrite)
	}

	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if v := recover(); v != nil {
			n = 0
			err = fmt.Errorf("write to code at %#x faulted: %v", r.Entry()+uintptr(off), v)
		}
	}()

	return copy(code, p), nil
}

// span returns up to n bytes of code starting at off, clipped to the scan
// window.
func (r *routine) span(n int, off int64) ([]byte, error) {
	window := int64(hostEncoding.WindowSize)
	if off < 0 || off >= window {
		return nil, fmt.Errorf("offset %d outside the %d byte window", off, window)
	}
	n = int(min(int64(n), window-off))

	start := unsafe.Pointer(r.Entry() + uintptr(off))
	return unsafe.Slice((*byte)(start), n), nil
}
