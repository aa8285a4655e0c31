package uinode

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBounds         = errors.New("invalid bounds")
	ErrMissingAttribute      = errors.New("missing attribute")
	ErrResolutionUnavailable = errors.New("screen resolution unavailable")
)

// InvalidBoundsError reports a bounds string that does not match [x1,y1][x2,y2].
type InvalidBoundsError struct {
	Bounds string
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("invalid bounds: %q", e.Bounds)
}

func (e *InvalidBoundsError) Is(target error) bool { return target == ErrInvalidBounds }

// MissingAttributeError reports a derivation that needs an attribute the node
// does not carry.
type MissingAttributeError struct {
	Name string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("missing attribute %q", e.Name)
}

func (e *MissingAttributeError) Is(target error) bool { return target == ErrMissingAttribute }

// ResolutionUnavailableError wraps a failure to obtain or parse the device
// screen resolution.
type ResolutionUnavailableError struct {
	Value string
	Err   error
}

func (e *ResolutionUnavailableError) Error() string {
	switch {
	case e.Err != nil && e.Value != "":
		return fmt.Sprintf("screen resolution unavailable (%q): %v", e.Value, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("screen resolution unavailable: %v", e.Err)
	default:
		return fmt.Sprintf("screen resolution unavailable: unparsable %q", e.Value)
	}
}

func (e *ResolutionUnavailableError) Unwrap() error { return e.Err }

func (e *ResolutionUnavailableError) Is(target error) bool {
	return target == ErrResolutionUnavailable
}
