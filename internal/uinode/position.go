package uinode

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ResolutionProvider reports the device screen resolution as "<width>x<height>".
// Surrounding whitespace around either number is allowed.
type ResolutionProvider interface {
	Resolution(ctx context.Context) (string, error)
}

// Position is a node's center point and that point as a fraction of the
// screen size.
type Position struct {
	X    int     `json:"x"`
	Y    int     `json:"y"`
	XPct float64 `json:"x_pct"`
	YPct float64 `json:"y_pct"`
}

// String formats the position as "(X,Y) (xPct,yPct)" with two decimals.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d) (%s,%s)", p.X, p.Y, formatPct(p.XPct), formatPct(p.YPct))
}

// Center returns the midpoint of the node's bounds attribute. The string is
// re-read rather than taken from Rect.
func (n *Node) Center() (int, int, error) {
	bounds, err := n.require(AttrBounds)
	if err != nil {
		return 0, 0, err
	}
	x, y, x2, y2, err := splitBounds(bounds)
	if err != nil {
		return 0, 0, err
	}
	return x + (x2-x)/2, y + (y2-y)/2, nil
}

// Position computes the node's center and its share of the screen resolution
// reported by rp. rp is called once; retries and timeouts belong to rp.
func (n *Node) Position(ctx context.Context, rp ResolutionProvider) (Position, error) {
	cx, cy, err := n.Center()
	if err != nil {
		return Position{}, err
	}
	if rp == nil {
		return Position{}, &ResolutionUnavailableError{Err: errors.New("no resolution provider")}
	}
	res, err := rp.Resolution(ctx)
	if err != nil {
		return Position{}, &ResolutionUnavailableError{Err: err}
	}
	w, h, err := ParseScreenSize(res)
	if err != nil {
		return Position{}, err
	}
	return Position{
		X:    cx,
		Y:    cy,
		XPct: shareHalfUp(cx, w),
		YPct: shareHalfUp(cy, h),
	}, nil
}

// PositionSummary returns Position formatted as "(X,Y) (xPct,yPct)".
func (n *Node) PositionSummary(ctx context.Context, rp ResolutionProvider) (string, error) {
	p, err := n.Position(ctx, rp)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

// ParseScreenSize parses "<width>x<height>".
func ParseScreenSize(s string) (int, int, error) {
	parts := strings.Split(s, "x")
	if len(parts) < 2 {
		return 0, 0, &ResolutionUnavailableError{Value: s}
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, &ResolutionUnavailableError{Value: s, Err: err}
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, &ResolutionUnavailableError{Value: s, Err: err}
	}
	if w <= 0 || h <= 0 {
		return 0, 0, &ResolutionUnavailableError{Value: s}
	}
	return w, h, nil
}

// splitBounds recovers x1,y1,x2,y2 by splitting on "]" and then ",".
func splitBounds(bounds string) (x, y, x2, y2 int, err error) {
	invalid := &InvalidBoundsError{Bounds: bounds}
	halves := strings.Split(bounds, "]")
	if len(halves) < 2 {
		return 0, 0, 0, 0, invalid
	}
	first := strings.Split(halves[0], ",")
	second := strings.Split(halves[1], ",")
	if len(first) < 2 || len(second) < 2 || first[0] == "" || second[0] == "" {
		return 0, 0, 0, 0, invalid
	}
	vals := [4]string{first[0][1:], first[1], second[0][1:], second[1]}
	var out [4]int
	for i, v := range vals {
		if out[i], err = strconv.Atoi(v); err != nil {
			return 0, 0, 0, 0, invalid
		}
	}
	return out[0], out[1], out[2], out[3], nil
}

// shareHalfUp returns num/den rounded half-up to two decimals. The rounding
// is done on integers so that ties such as 57/200 are exact.
func shareHalfUp(num, den int) float64 {
	n, d := int64(num)*200+int64(den), int64(den)*2
	q := n / d
	if n%d != 0 && (n < 0) != (d < 0) {
		q--
	}
	return float64(q) / 100
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
