// Package step computes per-panel step-function utilization: a
// non-decreasing-time sequence (t, u) giving the fraction of owner
// devices busy immediately after t (spec.md §4.2).
package step

import (
	"sort"

	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/state"
)

// Point is one step in a utilization function: at Time, utilization
// becomes Util and holds until the next Point.
type Point struct {
	Time ids.Timestamp
	Util float64
}

// Function is a non-decreasing-time sequence of utilization steps.
type Function []Point

// delta is an intermediate (time, +/-weight) event before the sweep.
type delta struct {
	time   ids.Timestamp
	weight float64
	// tiebreak keeps starts ordered before stops at the same instant
	// stable and deterministic when two events share a timestamp;
	// larger sorts later.
	tiebreak int
}

// Compute builds the step function for a set of owner containers: it
// flattens every owner's non-empty first-occurrence intervals into
// weighted start/stop events, merge-sorts them by (time, tiebreak), and
// sweeps to a cumulative utilization curve (spec.md §4.2).
//
// Processor and channel/dependent-partition panels weight every
// interval by 1/len(owners) (occupancy count over owner count); memory
// panels instead weight each interval by the caller-supplied byte
// fraction via weightFn, since memory utilization is byte-normalized,
// not occupancy-normalized.
func Compute(st *state.State, owners []state.Container, filter state.DeviceFilter, weightFn func(*state.ContainerEntry) float64) Function {
	if len(owners) == 0 {
		return nil
	}

	var events []delta
	tiebreak := 0
	for _, owner := range owners {
		levels := owner.TimePointsStacked(filter)
		for _, lvl := range levels {
			for _, ref := range lvl {
				if !ref.First {
					continue
				}
				entry, ok := owner.Entry(ref.ProfUID)
				if !ok || !entry.TimeRange.HasStop {
					continue
				}
				w := 1.0 / float64(len(owners))
				if weightFn != nil {
					w = weightFn(entry)
				}
				events = append(events, delta{time: entry.TimeRange.Start, weight: w, tiebreak: tiebreak})
				tiebreak++
				events = append(events, delta{time: entry.TimeRange.Stop, weight: -w, tiebreak: tiebreak})
				tiebreak++
			}
		}
	}
	if len(events) == 0 {
		return nil
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].time != events[j].time {
			return events[i].time < events[j].time
		}
		return events[i].tiebreak < events[j].tiebreak
	})

	var fn Function
	cum := 0.0
	i := 0
	for i < len(events) {
		t := events[i].time
		for i < len(events) && events[i].time == t {
			cum += events[i].weight
			i++
		}
		// Clamp to absorb floating-point drift around the [0, 1] bound;
		// the true value is always in range given well-formed input.
		if cum < 0 {
			cum = 0
		}
		if cum > 1 {
			cum = 1
		}
		fn = append(fn, Point{Time: t, Util: cum})
	}
	return fn
}

// ComputeProc/ComputeMem/ComputeChan are thin dispatch wrappers matching
// spec.md §4.2's "computation by panel kind" breakdown; memory panels
// pass a byte-normalized weight function while every other kind uses the
// default 1/owner-count occupancy weight.
func ComputeProc(st *state.State, owners []state.Container, filter state.DeviceFilter) Function {
	return Compute(st, owners, filter, nil)
}

func ComputeChan(st *state.State, owners []state.Container, filter state.DeviceFilter) Function {
	return Compute(st, owners, filter, nil)
}

// MemWeightFn reads each entry's precomputed byte-normalized occupancy
// fraction (state.ContainerEntry.UtilWeight, filled in by
// MemState.Finalize from SizeBytes/CapacityBytes), so that concurrently
// live instances sum to the memory's true fractional occupancy rather
// than a plain count-based fraction (spec.md §4.2 "Memory panel").
// Entries whose owning memory never had a capacity set (UtilWeight left
// at zero) simply contribute nothing, matching an unknown-capacity
// memory reporting no utilization rather than a fabricated one.
func MemWeightFn() func(*state.ContainerEntry) float64 {
	return func(e *state.ContainerEntry) float64 { return e.UtilWeight }
}

// ComputeMem dispatches a memory panel's step utilization using
// MemWeightFn's byte normalization (spec.md §4.2 "Memory panel").
func ComputeMem(st *state.State, owners []state.Container, filter state.DeviceFilter) Function {
	return Compute(st, owners, filter, MemWeightFn())
}
