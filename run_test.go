package wxprobe

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestRun patches the real routine. Which verdict comes back depends on the
// platform, but it has to be consistent with what the routine does now.
func TestRun(t *testing.T) {
	assert := assert.New(t)

	rep := Run(WithLogger(zaptest.NewLogger(t)))
	require.NotNil(t, rep)
	t.Logf("verdict: %v, err: %v", rep.Verdict, rep.Err())

	assert.Equal(constantA, rep.Baseline)
	assert.True(rep.Secure(), "%v", rep.RestoreErr)

	switch rep.Verdict {
	case Success:
		assert.NoError(rep.Err())
		assert.Equal(constantB, rep.Result)
		assert.Equal(constantB, TargetRoutine())
		assert.True(rep.Region.Contains(rep.Entry))
		if runtime.GOOS == "linux" {
			assert.Equal(ProtRX, rep.FinalProtection)
			assert.NotEmpty(rep.Before)
			assert.NotEmpty(rep.After)
		}
	case ProtectionDenied:
		assert.ErrorIs(rep.Err(), ErrProtectionDenied)
		assert.Equal(constantA, TargetRoutine())
	case PatternNotFound:
		assert.False(HostEncoding().Supported(), "pattern missing on a supported architecture")
		assert.Equal(constantA, TargetRoutine())
	default:
		t.Fatalf("unexpected verdict %v: %v", rep.Verdict, rep.Err())
	}

	// The routine is only patched once per process.
	assert.Same(rep, Run())
	assert.Equal(rep.Verdict, RunProbe())
}
