package step_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/step"
)

func TestCacheGetOrComputeCachesResult(t *testing.T) {
	c := step.NewCache()
	calls := 0
	compute := func() step.Function {
		calls++
		return step.Function{{Time: 0, Util: 1}}
	}

	id := ids.RootEntryID.Child(0)
	first := c.GetOrCompute(id, compute)
	second := c.GetOrCompute(id, compute)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCacheInvalidateForcesRecompute(t *testing.T) {
	c := step.NewCache()
	calls := 0
	compute := func() step.Function {
		calls++
		return step.Function{{Time: 0, Util: 1}}
	}

	id := ids.RootEntryID.Child(0)
	c.GetOrCompute(id, compute)
	c.Invalidate(id)
	c.GetOrCompute(id, compute)

	assert.Equal(t, 2, calls)
}
