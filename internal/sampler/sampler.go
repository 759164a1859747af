// Package sampler windows a step-utilization function down to N
// sample points over a queried interval (spec.md §4.3).
package sampler

import (
	"fmt"
	"sort"

	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/step"
)

// UtilPoint is one emitted sample: a midpoint time and the average
// utilization over its sub-interval.
type UtilPoint struct {
	Time ids.Timestamp
	Util float64
}

// ComputeSampleUtilization partitions [interval.Start, interval.Stop)
// into n contiguous sub-intervals, integrates the step function fn over
// each, and emits a midpoint-timed average utilization per sub-interval
// (spec.md §4.3). Zero-length sub-intervals (possible when n exceeds the
// interval's width in nanoseconds) are skipped.
func ComputeSampleUtilization(fn step.Function, interval ids.Interval, n int) []UtilPoint {
	if n <= 0 || interval.Stop <= interval.Start || len(fn) == 0 {
		return nil
	}

	a := interval.Start
	width := int64(interval.Stop - interval.Start)

	// first = partition_point(t < a) - 1, clamped to 0; last extends one
	// past the window when another point exists, so the step in effect
	// at every sample boundary is visible.
	first := partitionPoint(fn, interval.Start) - 1
	if first < 0 {
		first = 0
	}
	last := first + partitionPoint(fn[first:], interval.Stop)
	if last < len(fn) {
		last++
	}
	window := fn[first:last]

	var out []UtilPoint
	idx := 0
	tLast := ids.Timestamp(0)
	uLast := 0.0
	for k := 0; k < n; k++ {
		subStart := a + ids.Timestamp(width*int64(k)/int64(n))
		subStop := a + ids.Timestamp(width*int64(k+1)/int64(n))
		if subStop <= subStart {
			continue
		}

		area := 0.0
		for idx < len(window) && window[idx].Time < subStop {
			p := window[idx]
			idx++
			if p.Time < subStart {
				tLast, uLast = p.Time, p.Util
				continue
			}
			// A step value begins exactly at p.Time, so the previous
			// value's span ends at p.Time-1.
			lo := tLast
			if subStart > lo {
				lo = subStart
			}
			if d := int64(p.Time-1) - int64(lo); d > 0 {
				area += float64(d) * uLast
			}
			tLast, uLast = p.Time, p.Util
		}
		if tLast < subStop {
			lo := tLast
			if subStart > lo {
				lo = subStart
			}
			area += float64(subStop-lo) * uLast
		}

		util := area / float64(subStop-subStart)
		assert(util <= 1.0+1e-9, "sampled utilization %.6f exceeds 1.0", util)

		out = append(out, UtilPoint{
			Time: ids.Timestamp((int64(subStart) + int64(subStop)) / 2),
			Util: util,
		})
	}
	return out
}

// partitionPoint returns the number of leading points in fn whose Time
// is strictly less than t (the smallest index where the predicate
// p.Time < t first becomes false), mirroring the original's
// partition_point usage for window selection.
func partitionPoint(fn step.Function, t ids.Timestamp) int {
	return sort.Search(len(fn), func(i int) bool { return !(fn[i].Time < t) })
}

// assert panics unconditionally (unlike internal/state's debug-gated
// guard): an out-of-range utilization means the step function itself is
// malformed (spec.md §7, "util > 1.0" is a named invariant breach),
// worth catching on every run, not just debug ones.
func assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(fmt.Sprintf("assertion failed: "+format, args...))
}
