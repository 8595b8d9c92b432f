package wxprobe

import (
	"fmt"
	"os"

	"github.com/prometheus/procfs"
)

const smapsPath = "/proc/self/smaps"

// HostInspector returns an Inspector for the running process.
func HostInspector() Inspector {
	return &procInspector{
		smapsPath:  smapsPath,
		mountPoint: procfs.DefaultMountPoint,
	}
}

type procInspector struct {
	smapsPath  string
	mountPoint string
}

func (i *procInspector) DescribePage(addr uintptr) []string {
	f, err := os.Open(i.smapsPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	lines, err := describeSmaps(f, addr)
	if err != nil {
		return nil
	}
	return lines
}

func (i *procInspector) Protection(addr uintptr) (Protection, error) {
	fs, err := procfs.NewFS(i.mountPoint)
	if err != nil {
		return ProtNone, err
	}
	proc, err := fs.Self()
	if err != nil {
		return ProtNone, err
	}
	maps, err := proc.ProcMaps()
	if err != nil {
		return ProtNone, fmt.Errorf("read memory map: %w", err)
	}

	for _, m := range maps {
		if addr < m.StartAddr || addr >= m.EndAddr {
			continue
		}
		if m.Perms == nil {
			return ProtNone, nil
		}
		return protectionFromPerms(m.Perms.Read, m.Perms.Write, m.Perms.Execute), nil
	}
	return ProtNone, fmt.Errorf("%w %#x", ErrNoMapping, addr)
}
