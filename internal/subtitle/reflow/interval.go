package reflow

import "fmt"

// Interval is the (start, end) timestamp pair of one original cue.
// Timestamps are kept as text; only endpoints are ever substituted.
type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// String renders the interval as a timeline line
func (iv Interval) String() string {
	return iv.Start + " --> " + iv.End
}

// Reduce fuses the first two intervals into one spanning interval until
// exactly target remain. The earliest pair is always merged first, so later
// intervals are untouched until the earlier ones have collapsed.
func Reduce(intervals []Interval, target int) ([]Interval, error) {
	if target < 1 || target > len(intervals) {
		return nil, fmt.Errorf("%w: target %d for %d intervals", ErrInvalidTarget, target, len(intervals))
	}

	out := make([]Interval, len(intervals))
	copy(out, intervals)
	for len(out) > target {
		merged := Interval{Start: out[0].Start, End: out[1].End}
		out = append([]Interval{merged}, out[2:]...)
	}
	return out, nil
}
