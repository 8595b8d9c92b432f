package wxprobe

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Probe patches a target routine in place to find out whether the platform
// lets code pages be writable and executable at once.
type Probe struct {
	platform  Platform
	target    Target
	inspector Inspector
	encoding  Encoding
	log       *zap.Logger
}

// Option configures a Probe.
type Option func(*Probe)

// WithPlatform sets the OS services used to change protection and flush the
// instruction cache.
func WithPlatform(p Platform) Option {
	return func(pr *Probe) { pr.platform = p }
}

// WithTarget sets the routine to patch. The default is Routine.
func WithTarget(t Target) Option {
	return func(pr *Probe) { pr.target = t }
}

// WithEncoding sets the instruction to look for and its replacement. The
// default is HostEncoding.
func WithEncoding(e Encoding) Option {
	return func(pr *Probe) { pr.encoding = e }
}

// WithInspector collects memory map evidence before and after the patch.
// Without one no evidence is collected.
func WithInspector(i Inspector) Option {
	return func(pr *Probe) { pr.inspector = i }
}

// WithLogger sets the logger each step reports to.
func WithLogger(l *zap.Logger) Option {
	return func(pr *Probe) { pr.log = l }
}

// New returns a Probe for the built-in routine on the host platform.
func New(opts ...Option) *Probe {
	p := &Probe{
		platform: HostPlatform(),
		target:   Routine,
		encoding: HostEncoding(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one probe. It never retries a step and never panics on an
// expected failure; the outcome is in the returned report.
func (p *Probe) Run() *Report {
	enc := p.encoding
	rep := &Report{
		Arch:     enc.Arch,
		Entry:    p.target.Entry(),
		PageSize: p.platform.PageSize(),
		Offset:   -1,
	}
	log := p.log.With(zap.String("arch", enc.Arch), zap.Uintptr("entry", rep.Entry))

	log.Info("starting probe")

	rep.Baseline = p.target.Call()
	log.Info("baseline call", zap.Int("result", rep.Baseline))
	if rep.Baseline != enc.BeforeValue {
		log.Warn("unexpected baseline, routine may already be patched",
			zap.Int("expected", enc.BeforeValue))
	}

	region, err := NewRegion(rep.Entry, enc.WindowSize, rep.PageSize)
	if err != nil {
		rep.Verdict = ProtectionDenied
		rep.cause = fmt.Errorf("%w: %w", ErrProtectionDenied, err)
		log.Error("cannot compute page region", zap.Error(err))
		return rep
	}
	rep.Region = region
	log.Info("page region",
		zap.Stringer("region", region),
		zap.Int("page_size", rep.PageSize),
		zap.Int("pages", region.Pages(rep.PageSize)))

	rep.Before = p.describe(log, "before", region.Start)

	ok := p.mutate(rep, log)
	if rep.Elevated {
		rep.After = p.describe(log, "after", region.Start)
		p.finalProtection(rep, log)
	}
	if !ok {
		return rep
	}

	rep.Result = p.target.Call()
	log.Info("patched call", zap.Int("result", rep.Result))

	if rep.Result != enc.AfterValue {
		rep.Verdict = PatchIneffective
		rep.cause = fmt.Errorf("%w: routine returned %d, expected %d", ErrPatchIneffective, rep.Result, enc.AfterValue)
		log.Error("patch ineffective, value did not change",
			zap.Int("expected", enc.AfterValue))
		return rep
	}

	rep.Verdict = Success
	log.Info("code page modified in place, W^X is not enforced")
	return rep
}

// mutate runs the exclusive part of the probe: elevate, scan, patch,
// invalidate and restore. It returns false when the run ended early; the
// verdict is already set in that case.
func (p *Probe) mutate(rep *Report, log *zap.Logger) bool {
	enc := p.encoding

	p.target.Lock()
	defer p.target.Unlock()

	log.Info("requesting read-write-execute", zap.Stringer("region", rep.Region))
	err := p.platform.Protect(rep.Region, ProtRWX)
	if err != nil {
		rep.Verdict = ProtectionDenied
		rep.cause = fmt.Errorf("%w: %w", ErrProtectionDenied, err)
		log.Error("protection denied, platform enforces W^X", zap.Error(err))
		return false
	}
	rep.Elevated = true
	log.Info("read-write-execute granted")

	// Protection goes back to read-execute however the rest of this
	// function ends. This runs after the cache invalidation below.
	defer p.restore(rep, log)

	var window []byte
	if enc.Supported() {
		window = make([]byte, enc.WindowSize)
		n, err := p.target.ReadAt(window, 0)
		window = window[:n]
		if err != nil && n == 0 {
			log.Warn("unable to read instruction window", zap.Error(err))
		}
	}

	off, found := enc.Find(window)
	if !found {
		rep.Verdict = PatternNotFound
		rep.cause = fmt.Errorf("%w: no %x within %d bytes of %#x", ErrPatternNotFound, enc.Before, len(window), rep.Entry)
		log.Error("could not find instruction pattern", zap.Int("window", len(window)))
		return false
	}
	rep.Offset = off
	log.Info("found opcode, patching", zap.Int("offset", off))

	p.logDisassembly(log, "before patch", window[off:off+len(enc.Before)], rep.Entry+uintptr(off))

	_, err = p.target.WriteAt(enc.After, int64(off))

	// Invalidate even when the write failed part way, some bytes may have
	// landed.
	if ierr := p.platform.InvalidateICache(rep.Entry, len(window)); ierr != nil {
		rep.InvalidateErr = ierr
		log.Error("instruction cache invalidation failed", zap.Int("bytes", len(window)), zap.Error(ierr))
	} else {
		log.Info("instruction cache invalidated", zap.Int("bytes", len(window)))
	}

	if err != nil {
		rep.Verdict = ProtectionDenied
		rep.cause = fmt.Errorf("%w: %w", ErrProtectionDenied, err)
		log.Error("write to code page refused", zap.Error(err))
		return false
	}

	if log.Core().Enabled(zap.DebugLevel) {
		patched := make([]byte, len(enc.After))
		if _, err := p.target.ReadAt(patched, int64(off)); err == nil {
			p.logDisassembly(log, "after patch", patched, rep.Entry+uintptr(off))
		}
	}

	return true
}

func (p *Probe) restore(rep *Report, log *zap.Logger) {
	err := p.platform.Protect(rep.Region, ProtRX)
	if err != nil {
		rep.RestoreErr = fmt.Errorf("%w: %w", ErrRestoreFailed, err)
		log.DPanic("code page may be left writable", zap.Stringer("region", rep.Region), zap.Error(err))
		return
	}
	rep.Restored = true
	log.Info("permissions restored to read-execute")
}

func (p *Probe) describe(log *zap.Logger, when string, addr uintptr) []string {
	if p.inspector == nil {
		return nil
	}

	lines := p.inspector.DescribePage(addr)
	for _, line := range lines {
		log.Info("memory page details", zap.String("when", when), zap.String("line", line))
	}
	return lines
}

func (p *Probe) finalProtection(rep *Report, log *zap.Logger) {
	if p.inspector == nil {
		return
	}

	prot, err := p.inspector.Protection(rep.Region.Start)
	if err != nil {
		rep.FinalProtectionErr = err
		log.Debug("unable to read page protection", zap.Error(err))
		return
	}
	rep.FinalProtection = prot
	if prot.Writable() {
		log.Error("code page is still writable", zap.Stringer("protection", prot))
		return
	}
	log.Info("page protection", zap.Stringer("protection", prot))
}

func (p *Probe) logDisassembly(log *zap.Logger, msg string, code []byte, addr uintptr) {
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}
	asm, err := Disassemble(code, addr)
	if err != nil {
		log.Debug(msg, zap.Binary("code", code), zap.Error(err))
		return
	}
	log.Debug(msg, zap.String("asm", asm))
}

var (
	runOnce   sync.Once
	runReport *Report
)

// Run probes the built-in routine on the host platform. The routine is
// patched at most once per process, so only the first call does any work and
// later calls return the same report. Options only apply to the first call.
func Run(opts ...Option) *Report {
	runOnce.Do(func() {
		opts = append([]Option{WithInspector(HostInspector())}, opts...)
		runReport = New(opts...).Run()
	})
	return runReport
}

// RunProbe returns the verdict of Run.
func RunProbe() Verdict {
	return Run().Verdict
}
