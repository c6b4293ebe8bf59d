// Package srcrange provides half-open byte ranges over a source document.
//
// A Range [Start, End) contains a position p iff Start <= p < End. Ranges
// are used for token extents, definition spans and symbol visibility.
package srcrange

import "fmt"

// Range is a half-open interval of byte offsets.
type Range struct {
	Start int
	End   int
}

// New constructs a range. Callers are responsible for lo <= hi.
func New(lo, hi int) Range {
	return Range{Start: lo, End: hi}
}

// Of returns the range visible from inner's site to the end of the
// enclosing block: [inner.Start, outer.End).
func Of(inner, outer Range) Range {
	return Range{Start: inner.Start, End: outer.End}
}

// Contains reports whether pos lies inside the range.
func (r Range) Contains(pos int) bool {
	return r.Start <= pos && pos < r.End
}

// ContainsRange reports whether o lies entirely inside r.
func (r Range) ContainsRange(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Intersects reports whether the two ranges share at least one position.
func (r Range) Intersects(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Empty reports whether the range covers no positions.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Len returns the number of positions covered.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
