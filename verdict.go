package wxprobe

import (
	"errors"
	"fmt"
)

// Verdict is the classified outcome of a probe run.
type Verdict int

const (
	// Success means the code page was made writable, patched and the new
	// instruction executed. The platform does not enforce W^X.
	Success Verdict = iota

	// ProtectionDenied means the platform refused to make the code page
	// writable and executable. W^X is enforced.
	ProtectionDenied

	// PatternNotFound means the target routine does not contain the
	// expected instruction within the scan window.
	PatternNotFound

	// PatchIneffective means the patch was written but the routine still
	// behaved the same.
	PatchIneffective
)

var verdictNames = map[Verdict]string{
	Success:          "success",
	ProtectionDenied: "protection denied",
	PatternNotFound:  "pattern not found",
	PatchIneffective: "patch ineffective",
}

func (v Verdict) String() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

func (v Verdict) MarshalText() ([]byte, error) {
	if _, ok := verdictNames[v]; !ok {
		return nil, fmt.Errorf("unknown verdict %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	for verdict, name := range verdictNames {
		if name == string(text) {
			*v = verdict
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", text)
}

// WXEnforced reports whether the verdict shows the platform kept the code
// page from being both writable and executable.
func (v Verdict) WXEnforced() bool {
	return v == ProtectionDenied
}

var (
	ErrProtectionDenied = errors.New("protection denied")
	ErrPatternNotFound  = errors.New("pattern not found")
	ErrPatchIneffective = errors.New("patch ineffective")

	// ErrRestoreFailed means the code page may have been left writable.
	ErrRestoreFailed = errors.New("restore of code page protection failed")
)
