package sampler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/sampler"
	"github.com/legion-prof/profviewer/internal/step"
)

func TestComputeSampleUtilizationCoversWholeInterval(t *testing.T) {
	fn := step.Function{
		{Time: ids.FromNs(0), Util: 0},
		{Time: ids.FromNs(1000), Util: 1.0},
		{Time: ids.FromNs(3000), Util: 0.5},
		{Time: ids.FromNs(4000), Util: 0},
	}

	points := sampler.ComputeSampleUtilization(fn, ids.NewInterval(0, ids.FromNs(4000)), 4)
	assert.Len(t, points, 4)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Util, 0.0)
		assert.LessOrEqual(t, p.Util, 1.0+1e-9)
	}
}

func TestComputeSampleUtilizationEmptyInputs(t *testing.T) {
	assert.Nil(t, sampler.ComputeSampleUtilization(nil, ids.NewInterval(0, 100), 10))
	assert.Nil(t, sampler.ComputeSampleUtilization(step.Function{{Time: 0, Util: 1}}, ids.NewInterval(0, 100), 0))
	assert.Nil(t, sampler.ComputeSampleUtilization(step.Function{{Time: 0, Util: 1}}, ids.NewInterval(100, 0), 10))
}

func TestComputeSampleUtilizationConservesArea(t *testing.T) {
	// Property 1: the summed sample areas equal the step function's area
	// over the queried interval, within the per-sample rounding the
	// step-boundary convention introduces.
	fn := step.Function{
		{Time: ids.FromNs(0), Util: 0},
		{Time: ids.FromNs(100_000), Util: 1.0},
		{Time: ids.FromNs(200_000), Util: 0.5},
		{Time: ids.FromNs(300_000), Util: 0},
	}
	interval := ids.NewInterval(0, ids.FromNs(300_000))
	n := 30

	points := sampler.ComputeSampleUtilization(fn, interval, n)
	var sampled float64
	for _, p := range points {
		sampled += p.Util * float64(interval.DurationNs()) / float64(n)
	}
	// Exact step area: 100us at 1.0 plus 100us at 0.5.
	assert.InDelta(t, 150_000.0, sampled, float64(n))
}

func TestComputeSampleUtilizationAllBusyIsOne(t *testing.T) {
	fn := step.Function{
		{Time: ids.FromNs(0), Util: 1.0},
	}
	points := sampler.ComputeSampleUtilization(fn, ids.NewInterval(0, ids.FromNs(1000)), 1)
	assert.Len(t, points, 1)
	assert.InDelta(t, 1.0, points[0].Util, 1e-9)
}
