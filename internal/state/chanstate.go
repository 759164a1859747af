package state

import "github.com/legion-prof/profviewer/internal/ids"

// ChanState is the concrete Container backing a single channel (copy,
// fill, gather, scatter, or dependent-partition). Channels, like
// processors, execute one operation per level at a time per in-flight
// slot, but may run several in-flight operations concurrently, hence
// multi-level stacking like memories.
type ChanState struct {
	ID      ids.ChanID
	Node    ids.NodeID
	entries map[ids.ProfUID]*ContainerEntry
	levels  [][]EntryRef
}

func NewChanState(id ids.ChanID) *ChanState {
	return &ChanState{ID: id, Node: id.Node, entries: make(map[ids.ProfUID]*ContainerEntry)}
}

func (c *ChanState) AddEntry(e *ContainerEntry) {
	c.entries[e.ProfUID] = e
}

func (c *ChanState) Finalize() {
	byLevel := make(map[int][]*ContainerEntry)
	maxLevel := -1
	for _, e := range c.entries {
		byLevel[e.Level] = append(byLevel[e.Level], e)
		if e.Level > maxLevel {
			maxLevel = e.Level
		}
	}
	c.levels = make([][]EntryRef, maxLevel+1)
	for lvl := 0; lvl <= maxLevel; lvl++ {
		es := byLevel[lvl]
		sortEntriesByStart(es)
		refs := make([]EntryRef, len(es))
		for i, e := range es {
			refs[i] = EntryRef{ProfUID: e.ProfUID, Level: lvl, First: true}
		}
		c.levels[lvl] = refs
	}
}

func (c *ChanState) Kind() ContainerKind { return ContainerChan }

func (c *ChanState) MaxLevels(filter DeviceFilter) int {
	return len(c.levels)
}

func (c *ChanState) TimePointsStacked(filter DeviceFilter) [][]EntryRef {
	return c.levels
}

func (c *ChanState) Entry(uid ids.ProfUID) (*ContainerEntry, bool) {
	e, ok := c.entries[uid]
	return e, ok
}

// FindPreviousExecutingEntry scans level 0: the operation that was last
// occupying this channel's first in-flight slot before start.
func (c *ChanState) FindPreviousExecutingEntry(ready, start ids.Timestamp, filter DeviceFilter) (ids.ProfUID, ids.Timestamp, ids.Timestamp, bool) {
	if len(c.levels) == 0 {
		return 0, 0, 0, false
	}
	var best *ContainerEntry
	for _, ref := range c.levels[0] {
		e := c.entries[ref.ProfUID]
		if e == nil || !e.TimeRange.HasStop || e.TimeRange.Stop > start {
			continue
		}
		if best == nil || e.TimeRange.Stop > best.TimeRange.Stop {
			best = e
		}
	}
	if best == nil {
		return 0, 0, 0, false
	}
	return best.ProfUID, best.TimeRange.Start, best.TimeRange.Stop, true
}

var _ Container = (*ChanState)(nil)
