// Package segment holds the interval math shared by seat exclusivity,
// standing capacity and availability. A passenger occupies the half-open
// range [Dep, Arr) of stop positions: from the boarding stop up to, but not
// including, the alighting stop.
package segment

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrInvalid is returned for same-stop or reversed segments.
var ErrInvalid = errors.New("invalid segment")

// Interval is a half-open range of stop positions on one train run.
type Interval struct {
	Dep int
	Arr int
}

// New builds an Interval, rejecting dep >= arr and negative positions.
func New(dep, arr int) (Interval, error) {
	if dep < 0 || arr < 0 {
		return Interval{}, fmt.Errorf("%w: negative position [%d, %d)", ErrInvalid, dep, arr)
	}
	if dep >= arr {
		return Interval{}, fmt.Errorf("%w: departure position %d is not before arrival position %d", ErrInvalid, dep, arr)
	}
	return Interval{Dep: dep, Arr: arr}, nil
}

// Overlaps reports whether the two intervals share at least one position.
// Touching intervals (one's Arr equals the other's Dep) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Dep < o.Arr && i.Arr > o.Dep
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d,%d)", i.Dep, i.Arr)
}

type boundary struct {
	pos   int
	delta int
}

// PeakOverlap returns the largest number of occupied intervals active at
// the same time anywhere inside window. Intervals outside window are
// ignored and the rest are clipped to it, so a stretch where earlier
// passengers already got off does not count towards the peak.
func PeakOverlap(window Interval, occupied []Interval) int {
	events := make([]boundary, 0, 2*len(occupied))
	for _, o := range occupied {
		if !window.Overlaps(o) {
			continue
		}
		events = append(events,
			boundary{pos: max(o.Dep, window.Dep), delta: 1},
			boundary{pos: min(o.Arr, window.Arr), delta: -1},
		)
	}

	// at equal positions leave before board: half-open ranges
	slices.SortFunc(events, func(a, b boundary) int {
		if c := cmp.Compare(a.pos, b.pos); c != 0 {
			return c
		}
		return cmp.Compare(a.delta, b.delta)
	})

	current, peak := 0, 0
	for _, e := range events {
		current += e.delta
		peak = max(peak, current)
	}
	return peak
}
