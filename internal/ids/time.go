// Package ids defines the time, color, and entity-identifier primitives
// shared by every tile-generation component: nanosecond timestamps,
// half-open intervals, 24-bit colors, and the opaque handles used to
// name processors, memories, channels, instances, and rendered entries.
package ids

import "fmt"

// Timestamp is a signed count of nanoseconds from profile zero.
type Timestamp int64

// FromNs builds a Timestamp from a raw nanosecond count.
func FromNs(ns int64) Timestamp { return Timestamp(ns) }

// FromUs builds a Timestamp from a raw microsecond count.
func FromUs(us int64) Timestamp { return Timestamp(us * 1000) }

// ToNs returns the timestamp as a raw nanosecond count.
func (t Timestamp) ToNs() int64 { return int64(t) }

func (t Timestamp) String() string {
	return fmt.Sprintf("%.3fus", float64(t)/1000.0)
}

// Interval is a half-open span [Start, Stop). Start <= Stop always holds
// for a well-formed interval; it may be empty (Start == Stop).
type Interval struct {
	Start Timestamp
	Stop  Timestamp
}

// NewInterval builds an Interval as given, without clamping. An inverted
// interval (Stop < Start) is a domain condition (clock skew), not a
// programming error — see spec.md §7 — so this does not panic or correct
// it; callers that need to flag it visually do so via color selection.
func NewInterval(start, stop Timestamp) Interval {
	return Interval{Start: start, Stop: stop}
}

// DurationNs returns the interval's width in nanoseconds. Negative for an
// inverted interval.
func (i Interval) DurationNs() int64 {
	return int64(i.Stop - i.Start)
}

// IsEmpty reports whether the interval has zero width.
func (i Interval) IsEmpty() bool { return i.Start == i.Stop }

// Overlaps reports whether the two half-open intervals intersect.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.Stop && o.Start < i.Stop
}

// Intersection returns the overlapping portion of the two intervals. The
// caller is expected to have already checked Overlaps; if the intervals
// don't overlap the result is degenerate (Start > Stop) rather than
// clamped, matching the original's unchecked intersection.
func (i Interval) Intersection(o Interval) Interval {
	start := i.Start
	if o.Start > start {
		start = o.Start
	}
	stop := i.Stop
	if o.Stop < stop {
		stop = o.Stop
	}
	return Interval{Start: start, Stop: stop}
}

// Midpoint returns the integer midpoint of the interval.
func (i Interval) Midpoint() Timestamp {
	return Timestamp((int64(i.Start) + int64(i.Stop)) / 2)
}
