package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/resolver"
	"github.com/legion-prof/profviewer/internal/state"
	"github.com/legion-prof/profviewer/internal/tile"
)

func buildTestState() *state.State {
	st := state.New()
	proc := state.NewProcState(ids.ProcID{Node: 0, Local: 0}, state.ProcCPU)
	proc.AddEntry(&state.ContainerEntry{
		ProfUID: 1,
		TimeRange: state.TimeRange{
			Start: ids.FromNs(1000), Stop: ids.FromNs(2000), HasStop: true,
			Ready: ids.FromNs(1000),
		},
		NameFn: func(*state.State) string { return "task_foo" },
	})
	st.AddProc(proc)

	mem := state.NewMemState(ids.MemID{Node: 0, Local: 0}, state.MemSystem)
	mem.AddEntry(&state.ContainerEntry{
		ProfUID: 201,
		TimeRange: state.TimeRange{
			Ready: ids.FromNs(500), Start: ids.FromNs(500), Stop: ids.FromNs(3000), HasStop: true,
		},
		NameFn: func(*state.State) string { return "inst_a" },
	})
	st.AddMem(mem)
	st.BindInstance(7, mem.ID, 201)

	st.AddOp(ids.OpID(42), &state.OpInfo{Name: "sum_task", TaskUID: 1, HasTask: true})

	st.Finalize()
	return st
}

func TestResolveProfUIDFindsProcessorEntry(t *testing.T) {
	st := buildTestState()
	r := resolver.New(st, nil)

	link, miss := r.ResolveProfUID(1)
	assert.Empty(t, miss)
	assert.Equal(t, ids.ProfUID(1), link.ItemUID)
	assert.Equal(t, "task_foo", link.Title)
}

func TestResolveProfUIDUnknownIsDescriptive(t *testing.T) {
	st := buildTestState()
	r := resolver.New(st, nil)

	link, miss := r.ResolveProfUID(999)
	assert.NotEmpty(t, miss)
	assert.Equal(t, ids.ProfUID(0), link.ItemUID)
}

func TestOpLinkResolvesTask(t *testing.T) {
	st := buildTestState()
	r := resolver.New(st, nil)

	v := r.OpLink(ids.OpID(42))
	require.Equal(t, tile.FieldLink, v.Kind)
	assert.Equal(t, "sum_task", v.Link.Title)
	assert.Equal(t, ids.ProfUID(1), v.Link.ItemUID)
}

func TestOpLinkUnknownFallsBackToID(t *testing.T) {
	st := buildTestState()
	r := resolver.New(st, nil)

	v := r.OpLink(ids.OpID(99))
	assert.Equal(t, tile.FieldU64, v.Kind)
	assert.Equal(t, uint64(99), v.U64)
}

func TestInstLinkResolvesThroughMemory(t *testing.T) {
	st := buildTestState()
	r := resolver.New(st, nil)

	v, ok := r.InstLink(7, "Source: ")
	require.True(t, ok)
	require.Equal(t, tile.FieldLink, v.Kind)
	assert.Equal(t, "Source: inst_a", v.Link.Title)

	_, ok = r.InstLink(8, "")
	assert.False(t, ok)
}

func TestCriticalLinkUnknownEventIsDescriptive(t *testing.T) {
	st := buildTestState()
	r := resolver.New(st, nil)

	ev := &state.EventEntry{Kind: state.EventUnknown, Node: 2}
	v := r.CriticalLink(ids.EventID{Raw: 0xab, Node: 2}, ev)
	require.Equal(t, tile.FieldString, v.Kind)
	assert.Contains(t, v.Str, "Unknown critical path event")
	assert.Contains(t, v.Str, "node 2")

	c, has := resolver.SelectCriticalColor(ev)
	assert.True(t, has)
	assert.Equal(t, ids.ColorBlue, c)
}

func TestCriticalLinkTaskLinksToCompletion(t *testing.T) {
	st := buildTestState()
	r := resolver.New(st, nil)

	ev := &state.EventEntry{
		Kind: state.EventTask, Creator: 1, HasCreator: true,
		TriggerTime: ids.FromNs(2000), Node: 0,
	}
	v := r.CriticalLink(ids.EventID{Raw: 0x1}, ev)
	require.Equal(t, tile.FieldLink, v.Kind)
	assert.Equal(t, ids.ProfUID(1), v.Link.ItemUID)
	assert.Contains(t, v.Link.Title, "Completion of task_foo")

	_, has := resolver.SelectCriticalColor(ev)
	assert.False(t, has)
}

func TestCriticalLinkTriggerResolvesExecutingEntry(t *testing.T) {
	st := buildTestState()
	r := resolver.New(st, nil)

	// Trigger at 1500 lands inside task_foo's [1000, 2000) execution.
	ev := &state.EventEntry{
		Kind: state.EventTrigger, Creator: 1, HasCreator: true,
		TriggerTime: ids.FromNs(1500), Node: 0,
	}
	v := r.CriticalLink(ids.EventID{Raw: 0x2}, ev)
	require.Equal(t, tile.FieldLink, v.Kind)
	assert.Contains(t, v.Link.Title, "User Event Trigger by task_foo")
	assert.Equal(t, ids.FromNs(1500), v.Link.Interval.Stop)

	c, has := resolver.SelectCriticalColor(ev)
	assert.True(t, has)
	assert.Equal(t, ids.ColorRed, c)
}

func TestCriticalLinkCrossNodeDegradesToString(t *testing.T) {
	st := buildTestState()
	r := resolver.New(st, nil)

	ev := &state.EventEntry{
		Kind: state.EventArriveBarrier, Creator: 555, HasCreator: true,
		TriggerTime: ids.FromNs(1500), Node: 3,
	}
	v := r.CriticalLink(ids.EventID{Raw: 0x3, Node: 3}, ev)
	require.Equal(t, tile.FieldString, v.Kind)
	assert.Contains(t, v.Str, "barrier arrival")
	assert.Contains(t, v.Str, "node 3")
}

func TestSelectIntervalColorThresholds(t *testing.T) {
	_, has := resolver.SelectIntervalColor(0, ids.FromNs(50_000))
	assert.False(t, has)

	c, has := resolver.SelectIntervalColor(0, ids.FromNs(500_000))
	assert.True(t, has)
	assert.Equal(t, ids.ColorGold, c)

	c, has = resolver.SelectIntervalColor(0, ids.FromNs(2_000_000))
	assert.True(t, has)
	assert.Equal(t, ids.ColorRed, c)
}

func TestSelectIntervalColorNegativeIsBlue(t *testing.T) {
	// A stop before its start is rendered blue as "unclear", never
	// rejected.
	c, has := resolver.SelectIntervalColor(ids.FromNs(1000), ids.FromNs(500))
	assert.True(t, has)
	assert.Equal(t, ids.ColorBlue, c)
}

func TestSelectDeferredColorIsInversePolarity(t *testing.T) {
	c, has := resolver.SelectDeferredColor(0, ids.FromNs(50_000))
	assert.True(t, has)
	assert.Equal(t, ids.ColorRed, c)

	_, has = resolver.SelectDeferredColor(0, ids.FromNs(2_000_000))
	assert.False(t, has)
}

func TestParseProvenanceArray(t *testing.T) {
	v := resolver.ParseProvenance(`["alice", {"host": "node03", "pid": 42}]`)
	require.Equal(t, tile.FieldVec, v.Kind)
	var lines []string
	for _, f := range v.Vec {
		lines = append(lines, f.Str)
	}
	assert.Contains(t, lines, "host: node03")
	assert.Contains(t, lines, "pid: 42")
}

func TestParseProvenanceFallsBackToRawString(t *testing.T) {
	v := resolver.ParseProvenance("not json at all")
	require.Equal(t, tile.FieldString, v.Kind)
	assert.Equal(t, "not json at all", v.Str)
}
