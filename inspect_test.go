package wxprobe

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSmaps = `55d0c8a00000-55d0c8a02000 r--p 00000000 fd:01 1311 /usr/bin/probe
Size:                  8 kB
Rss:                   8 kB
Pss:                   8 kB
Shared_Clean:          0 kB
Shared_Dirty:          0 kB
Private_Clean:         8 kB
Private_Dirty:         0 kB
VmFlags: rd mr mw me dw sd
55d0c8a02000-55d0c8a05000 r-xp 00002000 fd:01 1311 /usr/bin/probe
Size:                 12 kB
KernelPageSize:        4 kB
Rss:                  12 kB
Pss:                  12 kB
Shared_Clean:          0 kB
Shared_Dirty:          0 kB
Private_Clean:         8 kB
Private_Dirty:         4 kB
Referenced:           12 kB
VmFlags: rd ex mr mw me dw sd
55d0c8a05000-55d0c8a06000 rw-p 00005000 fd:01 1311 /usr/bin/probe
Size:                  4 kB
Rss:                   4 kB
VmFlags: rd wr mr mw me dw ac sd
`

func TestDescribeSmaps(t *testing.T) {
	lines, err := describeSmaps(strings.NewReader(testSmaps), 0x55d0c8a03abc)
	require.NoError(t, err)

	want := []string{
		"55d0c8a02000-55d0c8a05000 r-xp 00002000 fd:01 1311 /usr/bin/probe",
		"Rss:                  12 kB",
		"Shared_Clean:          0 kB",
		"Shared_Dirty:          0 kB",
		"Private_Clean:         8 kB",
		"Private_Dirty:         4 kB",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("describeSmaps mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribeSmaps_Boundaries(t *testing.T) {
	tests := []struct {
		addr uintptr
		want string
	}{
		{0x55d0c8a00000, "55d0c8a00000-55d0c8a02000"},
		{0x55d0c8a01fff, "55d0c8a00000-55d0c8a02000"},
		{0x55d0c8a02000, "55d0c8a02000-55d0c8a05000"},
		{0x55d0c8a05fff, "55d0c8a05000-55d0c8a06000"},
	}

	for _, tt := range tests {
		lines, err := describeSmaps(strings.NewReader(testSmaps), tt.addr)
		require.NoError(t, err)
		if assert.NotEmpty(t, lines, "%#x", tt.addr) {
			assert.True(t, strings.HasPrefix(lines[0], tt.want), "%#x: %s", tt.addr, lines[0])
		}
	}
}

func TestDescribeSmaps_NotMapped(t *testing.T) {
	for _, addr := range []uintptr{0, 0x55d0c8a06000, 0x55d0c89fffff} {
		lines, err := describeSmaps(strings.NewReader(testSmaps), addr)
		assert.NoError(t, err)
		assert.Empty(t, lines, "%#x", addr)
	}

	lines, err := describeSmaps(strings.NewReader(""), 0x1000)
	assert.NoError(t, err)
	assert.Empty(t, lines)
}

func TestParseMapRange(t *testing.T) {
	assert := assert.New(t)

	start, end, ok := parseMapRange("7bc1768000-7bc1769000 r-xp 00000000 00:00 0")
	assert.True(ok)
	assert.Equal(uintptr(0x7bc1768000), start)
	assert.Equal(uintptr(0x7bc1769000), end)

	for _, line := range []string{
		"Rss:                  12 kB",
		"VmFlags: rd ex mr mw me dw sd",
		"zz-7bc1769000 r-xp",
		"7bc1768000-zz r-xp",
		"",
	} {
		_, _, ok := parseMapRange(line)
		assert.False(ok, line)
	}
}

func TestProtectionFromPerms(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(ProtRWX, protectionFromPerms(true, true, true))
	assert.Equal(ProtRX, protectionFromPerms(true, false, true))
	assert.Equal(ProtRW, protectionFromPerms(true, true, false))
	assert.Equal(ProtR, protectionFromPerms(true, false, false))
	assert.Equal(ProtNone, protectionFromPerms(false, false, false))
	assert.Equal(ProtNone, protectionFromPerms(false, false, true))

	assert.True(ProtRWX.Writable())
	assert.True(ProtRW.Writable())
	assert.False(ProtRX.Writable())
	assert.Equal("r-x", ProtRX.String())
	assert.Equal("rwx", ProtRWX.String())
	assert.Equal("invalid", Protection(42).String())
}
