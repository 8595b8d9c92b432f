package wxprobe

// Protection is the access a page grants.
type Protection int

const (
	ProtNone Protection = iota
	ProtRX
	ProtRWX

	// ProtRW is never requested by the probe but shows up when inspecting
	// data pages.
	ProtRW
	ProtR
)

func (p Protection) String() string {
	switch p {
	case ProtNone:
		return "---"
	case ProtRX:
		return "r-x"
	case ProtRWX:
		return "rwx"
	case ProtRW:
		return "rw-"
	case ProtR:
		return "r--"
	}
	return "invalid"
}

// Writable reports whether the protection grants write access.
func (p Protection) Writable() bool {
	return p == ProtRWX || p == ProtRW
}

// protectionFromPerms maps individual permission bits onto a Protection.
// Combinations the probe has no name for, such as execute-only, report
// ProtNone.
func protectionFromPerms(read, write, exec bool) Protection {
	switch {
	case read && write && exec:
		return ProtRWX
	case read && exec && !write:
		return ProtRX
	case read && write:
		return ProtRW
	case read:
		return ProtR
	}
	return ProtNone
}
