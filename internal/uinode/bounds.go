package uinode

import (
	"regexp"
	"strconv"
)

var boundsPattern = regexp.MustCompile(`^\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]$`)

// ParseBounds parses "[x1,y1][x2,y2]" into a rectangle anchored at (x1,y1).
// The second corner must not lie left of or above the first.
func ParseBounds(s string) (Rect, error) {
	m := boundsPattern.FindStringSubmatch(s)
	if m == nil {
		return Rect{}, &InvalidBoundsError{Bounds: s}
	}
	var v [4]int
	for i := range v {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			// Out of int range.
			return Rect{}, &InvalidBoundsError{Bounds: s}
		}
		v[i] = n
	}
	if v[2] < v[0] || v[3] < v[1] {
		return Rect{}, &InvalidBoundsError{Bounds: s}
	}
	return Rect{
		X:      v[0],
		Y:      v[1],
		Width:  v[2] - v[0],
		Height: v[3] - v[1],
	}, nil
}
