package state

import "github.com/legion-prof/profviewer/internal/ids"

// MemState is the concrete Container backing a single memory: the
// instances allocated within it, stacked into levels by the same
// overlap-free-per-level rule as processors. Unlike processors, a
// memory's instances commonly overlap in time (several instances live
// concurrently), hence genuinely multi-level stacking.
type MemState struct {
	ID         ids.MemID
	DeviceKind MemKind
	Node       ids.NodeID
	// CapacityBytes is the memory's total byte capacity, used at
	// Finalize to derive each instance entry's byte-normalized
	// UtilWeight (spec.md §4.2). Zero means capacity is unknown, in
	// which case UtilWeight is left at zero and the memory's instances
	// contribute nothing to its step utilization.
	CapacityBytes uint64
	entries       map[ids.ProfUID]*ContainerEntry
	levels        [][]EntryRef
}

func NewMemState(id ids.MemID, kind MemKind) *MemState {
	return &MemState{ID: id, DeviceKind: kind, Node: id.NodeID(), entries: make(map[ids.ProfUID]*ContainerEntry)}
}

// SetCapacityBytes records this memory's total byte capacity for later
// byte-normalized utilization weighting.
func (m *MemState) SetCapacityBytes(b uint64) {
	m.CapacityBytes = b
}

func (m *MemState) AddEntry(e *ContainerEntry) {
	m.entries[e.ProfUID] = e
}

func (m *MemState) Finalize() {
	if m.CapacityBytes > 0 {
		for _, e := range m.entries {
			e.UtilWeight = float64(e.SizeBytes) / float64(m.CapacityBytes)
		}
	}
	byLevel := make(map[int][]*ContainerEntry)
	maxLevel := -1
	for _, e := range m.entries {
		byLevel[e.Level] = append(byLevel[e.Level], e)
		if e.Level > maxLevel {
			maxLevel = e.Level
		}
	}
	m.levels = make([][]EntryRef, maxLevel+1)
	for lvl := 0; lvl <= maxLevel; lvl++ {
		es := byLevel[lvl]
		sortEntriesByStart(es)
		refs := make([]EntryRef, len(es))
		for i, e := range es {
			refs[i] = EntryRef{ProfUID: e.ProfUID, Level: lvl, First: true}
		}
		m.levels[lvl] = refs
	}
}

func (m *MemState) Kind() ContainerKind { return ContainerMem }

func (m *MemState) MaxLevels(filter DeviceFilter) int {
	if filter.Any {
		return len(m.levels)
	}
	return 0
}

func (m *MemState) TimePointsStacked(filter DeviceFilter) [][]EntryRef {
	return m.levels
}

func (m *MemState) Entry(uid ids.ProfUID) (*ContainerEntry, bool) {
	e, ok := m.entries[uid]
	return e, ok
}

// FindPreviousExecutingEntry has no meaning for a memory (instances don't
// "execute"); memories never answer a scheduling-overhead query.
func (m *MemState) FindPreviousExecutingEntry(ready, start ids.Timestamp, filter DeviceFilter) (ids.ProfUID, ids.Timestamp, ids.Timestamp, bool) {
	return 0, 0, 0, false
}

var _ Container = (*MemState)(nil)
