package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/state"
)

func TestLookupProfUIDPriorityProcBeforeChanBeforeMem(t *testing.T) {
	st := state.New()

	proc := state.NewProcState(ids.ProcID{Node: 0, Local: 0}, state.ProcCPU)
	proc.AddEntry(&state.ContainerEntry{ProfUID: 1, TimeRange: state.TimeRange{Stop: 10, HasStop: true}})
	st.AddProc(proc)

	ch := state.NewChanState(ids.ChanID{Kind: ids.ChanKindCopy})
	ch.AddEntry(&state.ContainerEntry{ProfUID: 2, TimeRange: state.TimeRange{Stop: 10, HasStop: true}})
	st.AddChan(ch)

	mem := state.NewMemState(ids.MemID{Node: 0, Local: 0}, state.MemSystem)
	mem.AddEntry(&state.ContainerEntry{ProfUID: 3, TimeRange: state.TimeRange{Stop: 10, HasStop: true}})
	st.AddMem(mem)

	st.Finalize()

	_, inProc, _, inChan, _, inMem := st.LookupProfUID(1)
	assert.True(t, inProc)
	assert.False(t, inChan)
	assert.False(t, inMem)

	_, inProc, _, inChan, _, _ = st.LookupProfUID(2)
	assert.False(t, inProc)
	assert.True(t, inChan)

	_, _, _, _, _, inMem = st.LookupProfUID(3)
	assert.True(t, inMem)
}

func TestGlobalIntervalPadsByLastTimeOver200(t *testing.T) {
	st := state.New()
	proc := state.NewProcState(ids.ProcID{Node: 0, Local: 0}, state.ProcCPU)
	proc.AddEntry(&state.ContainerEntry{ProfUID: 1, TimeRange: state.TimeRange{
		Start: 0, Stop: ids.FromNs(2000), HasStop: true,
	}})
	st.AddProc(proc)
	st.Finalize()

	interval := st.GlobalInterval()
	assert.Equal(t, ids.Timestamp(0), interval.Start)
	assert.Equal(t, ids.FromNs(2000)+ids.FromNs(2000)/200, interval.Stop)
}

func TestNodeHasNonEmptyProcDetectsEmptyNode(t *testing.T) {
	st := state.New()
	empty := state.NewProcState(ids.ProcID{Node: 1, Local: 0}, state.ProcCPU)
	st.AddProc(empty)
	busy := state.NewProcState(ids.ProcID{Node: 0, Local: 0}, state.ProcCPU)
	busy.AddEntry(&state.ContainerEntry{ProfUID: 1, TimeRange: state.TimeRange{Stop: 10, HasStop: true}})
	st.AddProc(busy)
	st.Finalize()

	assert.True(t, st.NodeHasNonEmptyProc(0))
	assert.False(t, st.NodeHasNonEmptyProc(1))
}

func TestGroupProcsBucketsByNodeAndKind(t *testing.T) {
	st := state.New()
	cpu := state.NewProcState(ids.ProcID{Node: 0, Local: 0}, state.ProcCPU)
	gpu := state.NewProcState(ids.ProcID{Node: 0, Local: 1}, state.ProcGPU)
	st.AddProc(cpu)
	st.AddProc(gpu)

	groups := st.GroupProcs()
	require.Len(t, groups, 2)
	assert.Len(t, groups[state.ProcGroupKey{Node: 0, Kind: state.ProcCPU}], 1)
	assert.Len(t, groups[state.ProcGroupKey{Node: 0, Kind: state.ProcGPU}], 1)
}

func TestFindPreviousExecutingEntryOnProc(t *testing.T) {
	p := state.NewProcState(ids.ProcID{Node: 0, Local: 0}, state.ProcCPU)
	p.AddEntry(&state.ContainerEntry{ProfUID: 1, TimeRange: state.TimeRange{
		Start: ids.FromNs(0), Stop: ids.FromNs(1000), HasStop: true,
	}})
	p.Finalize()

	uid, _, stop, ok := p.FindPreviousExecutingEntry(ids.FromNs(2000), ids.FromNs(1500), state.AnyDevice)
	require.True(t, ok)
	assert.Equal(t, ids.ProfUID(1), uid)
	assert.Equal(t, ids.FromNs(1000), stop)
}

func TestMemFindPreviousExecutingEntryAlwaysFalse(t *testing.T) {
	m := state.NewMemState(ids.MemID{Node: 0, Local: 0}, state.MemSystem)
	m.Finalize()
	_, _, _, ok := m.FindPreviousExecutingEntry(0, 0, state.AnyDevice)
	assert.False(t, ok)
}

func TestFindExecutingEntryLocatesRunningTask(t *testing.T) {
	p := state.NewProcState(ids.ProcID{Node: 0, Local: 0}, state.ProcCPU)
	p.AddEntry(&state.ContainerEntry{ProfUID: 1, TimeRange: state.TimeRange{
		Start: ids.FromNs(100), Stop: ids.FromNs(1000), HasStop: true,
	}})
	p.Finalize()

	e, ok := p.FindExecutingEntry(ids.FromNs(500))
	require.True(t, ok)
	assert.Equal(t, ids.ProfUID(1), e.ProfUID)

	_, ok = p.FindExecutingEntry(ids.FromNs(1000))
	assert.False(t, ok)
}

func TestFindOpZeroNeverResolves(t *testing.T) {
	st := state.New()
	st.AddOp(ids.OpID(1), &state.OpInfo{Name: "op"})

	_, ok := st.FindOp(ids.OpIDZero)
	assert.False(t, ok)
	info, ok := st.FindOp(ids.OpID(1))
	require.True(t, ok)
	assert.Equal(t, "op", info.Name)
}

func TestEventTableAndCriticalPathData(t *testing.T) {
	st := state.New()
	assert.False(t, st.HasCriticalPathData())

	ev := ids.EventID{Raw: 0x7, Node: 1}
	st.AddEvent(ev, &state.EventEntry{Kind: state.EventTrigger, TriggerTime: ids.FromNs(10), Node: 1})
	assert.True(t, st.HasCriticalPathData())

	entry, ok := st.FindCriticalEntry(ev)
	require.True(t, ok)
	assert.Equal(t, state.EventTrigger, entry.Kind)

	_, ok = st.FindCriticalEntry(ids.EventID{Raw: 0x8})
	assert.False(t, ok)
}

func TestBindInstanceRecordsMemAndProfUID(t *testing.T) {
	st := state.New()
	mem := state.NewMemState(ids.MemID{Node: 0, Local: 3}, state.MemSystem)
	st.AddMem(mem)
	st.BindInstance(9, mem.ID, 42)

	m, uid, ok := st.MemForInstance(9)
	require.True(t, ok)
	assert.Equal(t, mem.ID, m)
	assert.Equal(t, ids.ProfUID(42), uid)

	_, _, ok = st.MemForInstance(10)
	assert.False(t, ok)
}

func TestMemStateFinalizeFillsUtilWeightFromCapacity(t *testing.T) {
	m := state.NewMemState(ids.MemID{Node: 0, Local: 0}, state.MemSystem)
	m.SetCapacityBytes(1000)
	e := &state.ContainerEntry{ProfUID: 1, SizeBytes: 250, TimeRange: state.TimeRange{Stop: 10, HasStop: true}}
	m.AddEntry(e)
	m.Finalize()

	assert.InDelta(t, 0.25, e.UtilWeight, 1e-9)
}

func TestMemStateFinalizeLeavesUtilWeightZeroWithoutCapacity(t *testing.T) {
	m := state.NewMemState(ids.MemID{Node: 0, Local: 0}, state.MemSystem)
	e := &state.ContainerEntry{ProfUID: 1, SizeBytes: 250, TimeRange: state.TimeRange{Stop: 10, HasStop: true}}
	m.AddEntry(e)
	m.Finalize()

	assert.Equal(t, 0.0, e.UtilWeight)
}
