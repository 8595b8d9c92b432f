package wxprobe

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Inspector reads the process memory map. It is only used for evidence and
// never changes what the probe does.
type Inspector interface {
	// DescribePage returns the memory map entry containing addr and its
	// sharing and residency lines. It returns nil when there is no such
	// entry or the map cannot be read.
	DescribePage(addr uintptr) []string

	// Protection returns the current protection of the mapping containing
	// addr.
	Protection(addr uintptr) (Protection, error)
}

var ErrNoMapping = errors.New("no mapping contains address")

// smapsFields are the attribute lines kept from an smaps entry.
var smapsFields = []string{
	"Rss:",
	"Shared_Clean:",
	"Shared_Dirty:",
	"Private_Clean:",
	"Private_Dirty:",
}

// describeSmaps scans an smaps style listing for the entry containing addr.
// The entry's header line is returned first followed by its smapsFields
// lines, in file order.
func describeSmaps(r io.Reader, addr uintptr) ([]string, error) {
	var lines []string
	inEntry := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")

		if start, end, ok := parseMapRange(line); ok {
			if inEntry {
				// Entries are sorted, the one we want is done.
				break
			}
			inEntry = addr >= start && addr < end
			if inEntry {
				lines = append(lines, line)
			}
			continue
		}

		if !inEntry {
			continue
		}
		for _, field := range smapsFields {
			if strings.HasPrefix(line, field) {
				lines = append(lines, line)
				break
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// parseMapRange parses the "start-end" column that begins each mapping
// header, e.g. "7bc1768000-7bc1769000 r-xp 00000000 fd:00 1234 /bin/x".
func parseMapRange(line string) (uintptr, uintptr, bool) {
	field, _, _ := strings.Cut(line, " ")
	startStr, endStr, ok := strings.Cut(field, "-")
	if !ok {
		return 0, 0, false
	}

	start, err := strconv.ParseUint(startStr, 16, 64)
	if err != nil {
		return 0, 0, false
	}
	end, err := strconv.ParseUint(endStr, 16, 64)
	if err != nil {
		return 0, 0, false
	}
	return uintptr(start), uintptr(end), true
}
