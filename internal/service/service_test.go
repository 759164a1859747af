package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legion-prof/profviewer/internal/config"
	"github.com/legion-prof/profviewer/internal/entrytree"
	"github.com/legion-prof/profviewer/internal/fieldschema"
	"github.com/legion-prof/profviewer/internal/fixture"
	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/service"
	"github.com/legion-prof/profviewer/internal/state"
	"github.com/legion-prof/profviewer/internal/tile"
)

func buildTestState() *state.State {
	st := state.New()
	st.SourceLocators = []string{"node0.prof", "node1.prof"}

	proc := state.NewProcState(ids.ProcID{Node: 0, Local: 0}, state.ProcCPU)
	proc.AddEntry(&state.ContainerEntry{
		ProfUID: 1,
		TimeRange: state.TimeRange{
			Start: ids.FromNs(1000), Stop: ids.FromNs(2000), HasStop: true,
			Ready: ids.FromNs(1000),
		},
		NameFn:  func(*state.State) string { return "task_foo" },
		ColorFn: func(*state.State) ids.Color { return ids.ColorSteelBlue },
	})
	st.AddProc(proc)
	st.Finalize()
	return st
}

func findProcSlot(t *testing.T, svc *service.Service) ids.EntryID {
	t.Helper()
	// root -> node 0 -> CPU panel -> slot 0
	require.NotEmpty(t, svc.Tree.Children)
	node0 := svc.Tree.Children[0]
	require.NotEmpty(t, node0.Children)
	cpuPanel := node0.Children[0]
	require.NotEmpty(t, cpuPanel.Children)
	return cpuPanel.Children[0].ID
}

// findSlot walks the tree for the first slot whose container satisfies
// pred, for fixture-based tests where the tree has an "all nodes"
// aggregate in front.
func findSlot(root *entrytree.Node, pred func(*entrytree.Node) bool) (*entrytree.Node, bool) {
	if root.Container != nil && pred(root) {
		return root, true
	}
	for _, c := range root.Children {
		if n, ok := findSlot(c, pred); ok {
			return n, ok
		}
	}
	return nil, false
}

func fieldsByID(meta tile.ItemMeta, id fieldschema.FieldID) []tile.MetaField {
	var out []tile.MetaField
	for _, f := range meta.Fields {
		if f.ID == id {
			out = append(out, f)
		}
	}
	return out
}

func TestFetchDescriptionReturnsSourceLocators(t *testing.T) {
	st := buildTestState()
	svc := service.New(st, config.Default())

	desc := svc.FetchDescription()
	assert.Equal(t, []string{"node0.prof", "node1.prof"}, desc.SourceLocators)
}

func TestFetchInfoCarriesTreeIntervalAndSchema(t *testing.T) {
	st := buildTestState()
	svc := service.New(st, config.Default())

	info := svc.FetchInfo()
	assert.Same(t, svc.Tree, info.EntryInfo)
	assert.NotEmpty(t, info.FieldSchema)
	assert.False(t, info.HasWarning)
	assert.Equal(t, ids.Timestamp(0), info.Interval.Start)
}

func TestFetchSummaryTileUnknownEntryErrors(t *testing.T) {
	st := buildTestState()
	svc := service.New(st, config.Default())

	_, err := svc.FetchSummaryTile(ids.RootEntryID.Child(99), tile.TileID{Interval: ids.NewInterval(0, 1)}, false)
	assert.Error(t, err)
}

func TestFetchSummaryTileReflectsTaskUtilization(t *testing.T) {
	st := buildTestState()
	svc := service.New(st, config.Default())
	require.NotEmpty(t, svc.Tree.Children)
	node0 := svc.Tree.Children[0]
	require.NotEmpty(t, node0.Children)
	cpuPanel := node0.Children[0]

	full := ids.NewInterval(ids.FromNs(0), ids.FromNs(4000))
	summary, err := svc.FetchSummaryTile(cpuPanel.ID, tile.TileID{Interval: full}, false)
	require.NoError(t, err)
	require.NotEmpty(t, summary.Util)

	var sawBusy bool
	for _, p := range summary.Util {
		if p.Util > 0 {
			sawBusy = true
		}
		assert.LessOrEqual(t, p.Util, 1.0)
		assert.GreaterOrEqual(t, p.Util, 0.0)
	}
	assert.True(t, sawBusy)
}

func TestFetchSummaryTileResolvesSummaryEntryID(t *testing.T) {
	// The viewer addresses a panel's utilization curve through the
	// "#summary" id variant; it must resolve to the same owner set as
	// the panel itself, including when parsed back from the wire form.
	st := buildTestState()
	svc := service.New(st, config.Default())
	cpuPanel := svc.Tree.Children[0].Children[0]

	window := ids.NewInterval(ids.FromNs(0), ids.FromNs(4000))
	summary, err := svc.FetchSummaryTile(cpuPanel.ID.Summary(), tile.TileID{Interval: window}, false)
	require.NoError(t, err)
	require.NotEmpty(t, summary.Util)

	parsed, err := ids.ParseEntryID(cpuPanel.ID.String()+"#summary", false)
	require.NoError(t, err)
	fromWire, err := svc.FetchSummaryTile(parsed, tile.TileID{Interval: window}, false)
	require.NoError(t, err)
	assert.Equal(t, summary.Util, fromWire.Util)
}

func TestFetchSummaryTileOnSyntheticAllNodesSummary(t *testing.T) {
	// Multi-node profiles expose the "all nodes" aggregate only through
	// panel summary ids; the aggregate curve spans every node's owners.
	st := fixture.BuildState()
	svc := service.New(st, config.Default())

	allNodes := svc.Tree.Children[0]
	require.Equal(t, "All Nodes", allNodes.ShortName)
	require.NotEmpty(t, allNodes.Children)
	panel := allNodes.Children[0]
	require.NotNil(t, panel.Summary)
	require.Empty(t, panel.Children)

	window := ids.NewInterval(ids.FromNs(0), ids.FromNs(5000))
	summary, err := svc.FetchSummaryTile(panel.Summary.ID, tile.TileID{Interval: window}, false)
	require.NoError(t, err)
	require.NotEmpty(t, summary.Util)
}

func TestFetchSlotTileReturnsTheTaskItem(t *testing.T) {
	st := buildTestState()
	svc := service.New(st, config.Default())
	slotID := findProcSlot(t, svc)

	full := ids.NewInterval(ids.FromNs(0), ids.FromNs(4000))
	slot, err := svc.FetchSlotTile(slotID, tile.TileID{Interval: full}, true)
	require.NoError(t, err)
	require.Len(t, slot.Items, 1)
	require.Len(t, slot.Items[0], 1)
	assert.Equal(t, ids.ProfUID(1), slot.Items[0][0].ItemUID)
}

func TestFetchSlotMetaTileItemsMatchMetasPerLevel(t *testing.T) {
	st := fixture.BuildState()
	svc := service.New(st, config.Default())

	slot, ok := findSlot(svc.Tree, func(n *entrytree.Node) bool { return n.Kind == state.ContainerProc })
	require.True(t, ok)

	window := ids.NewInterval(ids.FromNs(0), ids.FromNs(5000))
	res, err := svc.FetchSlotMetaTile(slot.ID, tile.TileID{Interval: window}, true)
	require.NoError(t, err)
	require.Equal(t, len(res.Items), len(res.Metas))
	for lvl := range res.Items {
		assert.Len(t, res.Metas[lvl], len(res.Items[lvl]), "level %d", lvl)
	}
}

func TestFetchSlotMetaTileCreatorAndCriticalSeparate(t *testing.T) {
	// Property 7, first half: dependent_task was created at 3000 and its
	// critical event triggered at 3000 (creation <= trigger), so both a
	// creator field and a critical link are present, plus the
	// trigger-propagation interval.
	st := fixture.BuildState()
	svc := service.New(st, config.Default())

	slot, ok := findSlot(svc.Tree, func(n *entrytree.Node) bool {
		p, isProc := n.Container.(*state.ProcState)
		return isProc && p.Node == 0 && p.DeviceKind == state.ProcCPU
	})
	require.True(t, ok)

	window := ids.NewInterval(ids.FromNs(0), ids.FromNs(5000))
	res, err := svc.FetchSlotMetaTile(slot.ID, tile.TileID{Interval: window}, true)
	require.NoError(t, err)

	var meta *tile.ItemMeta
	for _, lvl := range res.Metas {
		for i := range lvl {
			if lvl[i].ItemUID == 2 {
				meta = &lvl[i]
			}
		}
	}
	require.NotNil(t, meta, "dependent_task meta not found")

	creators := fieldsByID(*meta, fieldschema.FieldCreator)
	criticals := fieldsByID(*meta, fieldschema.FieldCritical)
	require.Len(t, creators, 1)
	require.NotEmpty(t, criticals)
	assert.Equal(t, tile.FieldLink, criticals[0].Value.Kind)
	assert.Contains(t, criticals[0].Value.Link.Title, "Completion of top_level_task")
	assert.False(t, criticals[0].HasColor)
	assert.NotEmpty(t, fieldsByID(*meta, fieldschema.FieldTriggerTime))
}

func TestFetchSlotMetaTileCreatorAsCriticalIsRed(t *testing.T) {
	// Property 7, second half (S5): the critical event triggered at 500,
	// before the entry was created at 1000, so the creator IS the
	// critical path — one red critical field, no separate creator.
	st := state.New()
	proc := state.NewProcState(ids.ProcID{Node: 0, Local: 0}, state.ProcCPU)
	proc.AddEntry(&state.ContainerEntry{
		ProfUID:   1,
		TimeRange: state.TimeRange{Ready: ids.FromNs(0), Start: ids.FromNs(0), Stop: ids.FromNs(900), HasStop: true},
		NameFn:    func(*state.State) string { return "creator_task" },
	})
	ev := ids.EventID{Raw: 0x99, Node: 0}
	proc.AddEntry(&state.ContainerEntry{
		ProfUID:      2,
		TimeRange:    state.TimeRange{Create: ids.FromNs(1000), HasCreate: true, Ready: ids.FromNs(2000), Start: ids.FromNs(2000), Stop: ids.FromNs(3000), HasStop: true},
		NameFn:       func(*state.State) string { return "late_task" },
		Creator:      1,
		HasCreator:   true,
		CreationTime: ids.FromNs(1000),
		Critical:     ev,
		HasCritical:  true,
	})
	st.AddProc(proc)
	st.AddEvent(ev, &state.EventEntry{Kind: state.EventTask, Creator: 1, HasCreator: true, TriggerTime: ids.FromNs(500), Node: 0})
	st.Finalize()

	svc := service.New(st, config.Default())
	slotID := findProcSlot(t, svc)

	window := ids.NewInterval(ids.FromNs(0), ids.FromNs(4000))
	res, err := svc.FetchSlotMetaTile(slotID, tile.TileID{Interval: window}, true)
	require.NoError(t, err)

	var meta *tile.ItemMeta
	for _, lvl := range res.Metas {
		for i := range lvl {
			if lvl[i].ItemUID == 2 {
				meta = &lvl[i]
			}
		}
	}
	require.NotNil(t, meta)

	assert.Empty(t, fieldsByID(*meta, fieldschema.FieldCreator))
	criticals := fieldsByID(*meta, fieldschema.FieldCritical)
	require.Len(t, criticals, 1)
	assert.True(t, criticals[0].HasColor)
	assert.Equal(t, ids.ColorRed, criticals[0].Color)
	assert.Equal(t, tile.FieldLink, criticals[0].Value.Kind)
	assert.Contains(t, criticals[0].Value.Link.Title, "Created by creator_task")
}

func TestFetchSlotMetaTileInstanceWaitingForDeallocation(t *testing.T) {
	// Fixture instance 202 was not allocated immediately: with no
	// critical event recorded for it, its critical field is the gold
	// "waiting for deallocation" banner plus a deferred interval.
	st := fixture.BuildState()
	svc := service.New(st, config.Default())

	slot, ok := findSlot(svc.Tree, func(n *entrytree.Node) bool { return n.Kind == state.ContainerMem })
	require.True(t, ok)

	window := ids.NewInterval(ids.FromNs(0), ids.FromNs(5000))
	res, err := svc.FetchSlotMetaTile(slot.ID, tile.TileID{Interval: window}, true)
	require.NoError(t, err)

	var meta *tile.ItemMeta
	for _, lvl := range res.Metas {
		for i := range lvl {
			if lvl[i].ItemUID == 202 {
				meta = &lvl[i]
			}
		}
	}
	require.NotNil(t, meta)

	criticals := fieldsByID(*meta, fieldschema.FieldCritical)
	require.Len(t, criticals, 1)
	assert.Equal(t, tile.FieldString, criticals[0].Value.Kind)
	assert.Contains(t, criticals[0].Value.Str, "Waiting for deallocation")
	assert.Equal(t, ids.ColorGold, criticals[0].Color)
	assert.NotEmpty(t, fieldsByID(*meta, fieldschema.FieldDeferredTime))
	assert.NotEmpty(t, fieldsByID(*meta, fieldschema.FieldSize))
}

func TestFetchSlotMetaTileChannelCarriesRequirements(t *testing.T) {
	st := fixture.BuildState()
	svc := service.New(st, config.Default())

	slot, ok := findSlot(svc.Tree, func(n *entrytree.Node) bool { return n.Kind == state.ContainerChan })
	require.True(t, ok)

	window := ids.NewInterval(ids.FromNs(0), ids.FromNs(5000))
	res, err := svc.FetchSlotMetaTile(slot.ID, tile.TileID{Interval: window}, true)
	require.NoError(t, err)
	require.NotEmpty(t, res.Metas)
	require.NotEmpty(t, res.Metas[0])

	meta := res.Metas[0][0]
	reqs := fieldsByID(meta, fieldschema.FieldChanReqs)
	require.Len(t, reqs, 1)
	assert.Equal(t, tile.FieldVec, reqs[0].Value.Kind)
	assert.NotEmpty(t, reqs[0].Value.Vec)
	assert.NotEmpty(t, fieldsByID(meta, fieldschema.FieldOperation))
}

func TestFetchSlotTileRejectsNonSlotEntry(t *testing.T) {
	st := buildTestState()
	svc := service.New(st, config.Default())

	full := ids.NewInterval(ids.FromNs(0), ids.FromNs(4000))
	_, err := svc.FetchSlotTile(svc.Tree.ID, tile.TileID{Interval: full}, false)
	assert.Error(t, err)
}
