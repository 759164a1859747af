package ids_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legion-prof/profviewer/internal/ids"
)

func TestChildAndParentRoundTrip(t *testing.T) {
	child := ids.RootEntryID.Child(3).Child(1)
	assert.Equal(t, "root/3/1", child.String())

	parent, ok := child.Parent()
	require.True(t, ok)
	assert.Equal(t, "root/3", parent.String())
}

func TestRootHasNoParent(t *testing.T) {
	_, ok := ids.RootEntryID.Parent()
	assert.False(t, ok)
}

func TestSummaryMarksAggregateAndHasSameParent(t *testing.T) {
	node := ids.RootEntryID.Child(0)
	summary := node.Summary()
	assert.True(t, summary.IsSummary())
	assert.Equal(t, "root/0#summary", summary.String())

	parent, ok := summary.Parent()
	require.True(t, ok)
	assert.Equal(t, node, parent)
}

func TestDepthCountsHops(t *testing.T) {
	assert.Equal(t, 0, ids.RootEntryID.Depth())
	assert.Equal(t, 2, ids.RootEntryID.Child(0).Child(1).Depth())
}

func TestEntryIDIsComparable(t *testing.T) {
	a := ids.RootEntryID.Child(1).Child(2)
	b := ids.RootEntryID.Child(1).Child(2)
	assert.Equal(t, a, b)

	m := map[ids.EntryID]int{a: 42}
	assert.Equal(t, 42, m[b])
}

func TestParseEntryIDRoundTrips(t *testing.T) {
	id := ids.RootEntryID.Child(2).Child(5)
	parsed, err := ids.ParseEntryID(id.String(), false)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	summary := id.Summary()
	parsedSummary, err := ids.ParseEntryID(summary.String(), false)
	require.NoError(t, err)
	assert.Equal(t, summary, parsedSummary)
}

func TestParseEntryIDRejectsGarbage(t *testing.T) {
	_, err := ids.ParseEntryID("not-an-entry-id", false)
	assert.Error(t, err)
}
