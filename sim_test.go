package wxprobe

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// simMachine models a code page with separate data and instruction caches.
// Writes land in code, calls execute from icache, and only an invalidation
// (or an eviction) brings the two back in sync.
type simMachine struct {
	enc      Encoding
	base     uintptr
	pageSize int

	code   []byte
	icache []byte
	prot   Protection

	// Platform behavior.
	denyElevate bool
	denyRestore bool
	skipFlush   bool
	flushErr    error
	evict       bool

	// onProtect runs before each protection change.
	onProtect func(Protection)

	// Target behavior.
	faultWrites bool

	mu         sync.RWMutex
	eventsMu   sync.Mutex
	events     []string
	maxRead    int
	writes     int
	describe   int
	protection int
}

func newSimMachine(enc Encoding, codeSize int) *simMachine {
	m := &simMachine{
		enc:      enc,
		base:     0x401000 + 0x40,
		pageSize: 4096,
		code:     make([]byte, codeSize),
		prot:     ProtRX,
	}
	copy(m.code, enc.Before)
	m.icache = append([]byte{}, m.code...)
	return m
}

func (m *simMachine) record(format string, args ...any) {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()
	m.events = append(m.events, fmt.Sprintf(format, args...))
}

func (m *simMachine) recorded() []string {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()
	return append([]string{}, m.events...)
}

// Platform

type simPlatform struct{ m *simMachine }

func (p simPlatform) PageSize() int { return p.m.pageSize }

func (p simPlatform) Protect(r Region, prot Protection) error {
	m := p.m
	m.record("protect %v", prot)
	if m.onProtect != nil {
		m.onProtect(prot)
	}
	if !r.Contains(m.base) || !r.Contains(m.base+uintptr(m.enc.WindowSize)-1) {
		return fmt.Errorf("region %v does not cover the code", r)
	}
	if prot == ProtRWX && m.denyElevate {
		return errors.New("permission denied")
	}
	if prot == ProtRX && m.denyRestore {
		return errors.New("permission denied")
	}
	m.prot = prot
	return nil
}

func (p simPlatform) InvalidateICache(addr uintptr, n int) error {
	m := p.m
	m.record("invalidate")
	if m.flushErr != nil {
		return m.flushErr
	}
	if m.skipFlush {
		return nil
	}
	off := int(addr - m.base)
	copy(m.icache[off:off+n], m.code[off:off+n])
	return nil
}

// Target

type simTarget struct{ m *simMachine }

func (t simTarget) Entry() uintptr { return t.m.base }

func (t simTarget) Call() int {
	m := t.m
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.record("call")
	if m.evict {
		copy(m.icache, m.code)
	}
	if _, ok := m.enc.Find(m.icache); ok {
		return m.enc.BeforeValue
	}
	patched := m.enc
	patched.Before = m.enc.After
	if _, ok := patched.Find(m.icache); ok {
		return m.enc.AfterValue
	}
	return -1
}

func (t simTarget) ReadAt(p []byte, off int64) (int, error) {
	m := t.m
	if off < 0 || off >= int64(len(m.code)) {
		return 0, io.EOF
	}
	n := copy(p, m.code[off:])
	m.maxRead = max(m.maxRead, int(off)+n)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (t simTarget) WriteAt(p []byte, off int64) (int, error) {
	m := t.m
	m.record("write %d", off)
	if !m.prot.Writable() || m.faultWrites {
		return 0, fmt.Errorf("write to code at %#x faulted", m.base+uintptr(off))
	}
	m.writes++
	return copy(m.code[off:], p), nil
}

func (t simTarget) Lock() {
	t.m.mu.Lock()
	t.m.record("lock")
}

func (t simTarget) Unlock() {
	t.m.record("unlock")
	t.m.mu.Unlock()
}

// Inspector

type simInspector struct{ m *simMachine }

func (i simInspector) DescribePage(addr uintptr) []string {
	m := i.m
	m.describe++
	start := addr &^ uintptr(m.pageSize-1)
	return []string{
		fmt.Sprintf("%x-%x %sp 00000000 00:00 0", start, start+uintptr(m.pageSize), m.prot),
		"Rss:                   4 kB",
	}
}

func (i simInspector) Protection(uintptr) (Protection, error) {
	i.m.protection++
	return i.m.prot, nil
}

func (m *simMachine) probe(opts ...Option) *Probe {
	opts = append([]Option{
		WithPlatform(simPlatform{m}),
		WithTarget(simTarget{m}),
		WithInspector(simInspector{m}),
		WithEncoding(m.enc),
	}, opts...)
	return New(opts...)
}
