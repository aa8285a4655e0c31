package device

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dumpsysOutput = `Display Devices: size=1
  DisplayDeviceInfo{"Built-in Screen": uniqueId="local:0", 1080 x 2340, modeId 1}
    mDisplayInfos=
      PhysicalDisplayInfo{1080 x 2340, 60.000004 fps, density 2.75, 403.411 x 409.903 dpi}
`

func TestParseResolution(t *testing.T) {
	got, err := ParseResolution(dumpsysOutput)
	require.NoError(t, err)
	assert.Equal(t, "1080 x 2340", got)
}

func TestParseResolution_Missing(t *testing.T) {
	_, err := ParseResolution("Display Devices: size=0")
	assert.ErrorIs(t, err, ErrNoDisplayInfo)

	_, err = ParseResolution("PhysicalDisplayInfo")
	assert.ErrorIs(t, err, ErrNoDisplayInfo)
}

func TestStatic(t *testing.T) {
	got, err := Static{Value: "720x1280"}.Resolution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "720x1280", got)

	_, err = Static{}.Resolution(context.Background())
	assert.Error(t, err)
}

// writeFakeADB installs a shell script that records its arguments and prints body.
func writeFakeADB(t *testing.T, body string) (path, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake adb")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	path = filepath.Join(dir, "adb")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\n" + body
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path, argsFile
}

func TestADB_Resolution(t *testing.T) {
	path, argsFile := writeFakeADB(t, "cat <<'EOF'\n"+dumpsysOutput+"EOF\n")
	a := &ADB{Path: path, Serial: "emulator-5554"}

	got, err := a.Resolution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1080 x 2340", got)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "-s emulator-5554 shell dumpsys display\n", string(args))
}

func TestADB_DumpHierarchy(t *testing.T) {
	path, argsFile := writeFakeADB(t, "echo '<hierarchy rotation=\"0\"></hierarchy>'\necho 'UI hierchary dumped to: /dev/tty'\n")
	a := &ADB{Path: path}

	out, err := a.DumpHierarchy(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<hierarchy")

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "exec-out uiautomator dump /dev/tty\n", string(args))
}

func TestADB_FailureIsRetryable(t *testing.T) {
	path, _ := writeFakeADB(t, "echo 'error: no devices/emulators found' >&2\nexit 1\n")
	a := &ADB{Path: path}

	_, err := a.Resolution(context.Background())
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "no devices")
}

type scriptedProvider struct {
	results []error
	calls   int
}

func (p *scriptedProvider) Resolution(context.Context) (string, error) {
	i := p.calls
	p.calls++
	if i < len(p.results) && p.results[i] != nil {
		return "", p.results[i]
	}
	return "1080x1920", nil
}

func TestRetrying_RetriesTransientErrors(t *testing.T) {
	transient := &RetryableError{Op: "dumpsys display", Err: errors.New("offline")}
	p := &scriptedProvider{results: []error{transient, transient}}
	stats := NewStats(time.Hour)
	r := &Retrying{Provider: p, Attempts: 3, Base: time.Millisecond, Stats: stats}

	got, err := r.Resolution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1080x1920", got)
	assert.Equal(t, 3, p.calls)

	snap := stats.Snapshot()
	assert.Equal(t, 3, snap.Calls)
	assert.Equal(t, 2, snap.Failures)
}

func TestRetrying_GivesUp(t *testing.T) {
	transient := &RetryableError{Op: "dumpsys display", Err: errors.New("offline")}
	p := &scriptedProvider{results: []error{transient, transient, transient}}
	r := &Retrying{Provider: p, Attempts: 2, Base: time.Millisecond}

	_, err := r.Resolution(context.Background())
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 2, p.calls)
}

func TestRetrying_PermanentErrorNotRetried(t *testing.T) {
	p := &scriptedProvider{results: []error{ErrNoDisplayInfo}}
	r := &Retrying{Provider: p, Attempts: 5, Base: time.Millisecond}

	_, err := r.Resolution(context.Background())
	assert.ErrorIs(t, err, ErrNoDisplayInfo)
	assert.Equal(t, 1, p.calls)
}

func TestRetrying_ContextCancelled(t *testing.T) {
	transient := &RetryableError{Op: "dumpsys display", Err: errors.New("offline")}
	p := &scriptedProvider{results: []error{transient, transient}}
	r := &Retrying{Provider: p, Attempts: 3, Base: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.Resolution(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, p.calls)
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := range 10 {
		d := Backoff(attempt, 100*time.Millisecond)
		assert.GreaterOrEqual(t, d, min(100*time.Millisecond<<attempt, 30*time.Second))
		assert.LessOrEqual(t, d, 45*time.Second)
	}
}

func TestStats_Snapshot(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, false)
	}
	stats.Record(-time.Second, true)

	snap := stats.Snapshot()
	assert.Equal(t, 6, snap.Calls)
	assert.Equal(t, 1, snap.Failures)
	assert.Equal(t, int64(0), snap.MinMs)
	assert.Equal(t, int64(500), snap.MaxMs)
	assert.InDelta(t, 250.0, snap.AvgMs, 0.001)
	assert.InDelta(t, 250.0, snap.P50Ms, 0.001)
}

func TestStats_Expires(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record(time.Millisecond, false)
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 0, stats.Snapshot().Calls)
}
