package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// displayMarker precedes the resolution in `dumpsys display` output, e.g.
// "PhysicalDisplayInfo{1080 x 1920, 60.0 fps, ...}".
const displayMarker = "PhysicalDisplayInfo"

var ErrNoDisplayInfo = errors.New("no " + displayMarker + " in output")

// ParseResolution extracts "<width> x <height>" from `dumpsys display`
// output: the text after the first PhysicalDisplayInfo marker, up to the
// first comma, minus one leading character, trimmed.
func ParseResolution(output string) (string, error) {
	parts := strings.Split(output, displayMarker)
	if len(parts) < 2 {
		return "", ErrNoDisplayInfo
	}
	field := strings.Split(parts[1], ",")[0]
	if len(field) < 2 {
		return "", fmt.Errorf("empty %s field: %w", displayMarker, ErrNoDisplayInfo)
	}
	return strings.TrimSpace(field[1:]), nil
}

// RetryableError indicates a transient device failure that can be retried.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (%s): %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// ADB talks to a device through the adb binary.
type ADB struct {
	Path   string // defaults to "adb"
	Serial string // passed as -s when set
}

// Resolution runs `adb shell dumpsys display` and returns the physical
// display size as "<width> x <height>".
func (a *ADB) Resolution(ctx context.Context) (string, error) {
	out, err := a.run(ctx, "dumpsys display", "shell", "dumpsys", "display")
	if err != nil {
		return "", err
	}
	return ParseResolution(string(out))
}

// DumpHierarchy captures the current UI hierarchy as XML.
func (a *ADB) DumpHierarchy(ctx context.Context) ([]byte, error) {
	out, err := a.run(ctx, "uiautomator dump", "exec-out", "uiautomator", "dump", "/dev/tty")
	if err != nil {
		return nil, err
	}
	if !bytes.Contains(out, []byte("<hierarchy")) {
		return nil, fmt.Errorf("uiautomator dump: unexpected output: %s", truncate(string(out), 200))
	}
	return out, nil
}

func (a *ADB) run(ctx context.Context, op string, args ...string) ([]byte, error) {
	path := a.Path
	if path == "" {
		path = "adb"
	}
	if a.Serial != "" {
		args = append([]string{"-s", a.Serial}, args...)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, truncate(msg, 200))
		}
		return nil, &RetryableError{Op: op, Err: err}
	}
	return out, nil
}

// Static reports a fixed resolution, e.g. from configuration.
type Static struct {
	Value string
}

func (s Static) Resolution(context.Context) (string, error) {
	if s.Value == "" {
		return "", errors.New("no static resolution configured")
	}
	return s.Value, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
