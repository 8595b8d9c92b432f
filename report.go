package wxprobe

import "errors"

// Report holds the verdict of a probe run along with the evidence behind it.
type Report struct {
	Verdict Verdict

	Arch     string
	Entry    uintptr
	PageSize int
	Region   Region

	// Offset of the patched instruction from Entry, -1 if none was found.
	Offset int

	// Baseline is what the routine returned before the probe touched it.
	// Result is what it returned after patching and is only set for
	// Success and PatchIneffective.
	Baseline int
	Result   int

	// Memory map lines for the page before elevation and after
	// restoration. Empty when the platform has no memory map to read.
	Before []string
	After  []string

	// FinalProtection is the page protection observed after the run, if
	// an inspector could read it.
	FinalProtection    Protection
	FinalProtectionErr error

	// InvalidateErr is set when the instruction cache could not be
	// invalidated after the write. The patched call may then still run
	// the old instruction.
	InvalidateErr error

	// Elevated is set once the page was made read-write-execute, Restored
	// once it was set back to read-execute.
	Elevated   bool
	Restored   bool
	RestoreErr error

	cause error
}

// Err returns nil for a clean Success. Otherwise it returns the error for
// the verdict, joined with the restore failure if there was one.
func (r *Report) Err() error {
	return errors.Join(r.cause, r.RestoreErr)
}

// Secure reports whether the code page is known not to be left writable.
func (r *Report) Secure() bool {
	return !r.Elevated || r.Restored
}
