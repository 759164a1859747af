package state

import "github.com/legion-prof/profviewer/internal/ids"

// ProcState is the concrete Container backing a single processor: its
// entries (tasks, meta-tasks) keyed by ProfUID, and their stacked time
// points, one level per distinct ContainerEntry.Level.
type ProcState struct {
	ID         ids.ProcID
	DeviceKind ProcKind
	Node       ids.NodeID
	entries    map[ids.ProfUID]*ContainerEntry
	levels     [][]EntryRef
}

// NewProcState constructs an empty processor container ready to accept
// entries via AddEntry, then Finalize.
func NewProcState(id ids.ProcID, kind ProcKind) *ProcState {
	return &ProcState{ID: id, DeviceKind: kind, Node: id.NodeID(), entries: make(map[ids.ProfUID]*ContainerEntry)}
}

// AddEntry inserts an entry, assigning it to e.Level (the caller is
// responsible for level assignment — stacking overlapping entries into
// distinct rows is an ingestion-time concern, out of scope here per
// spec.md §1).
func (p *ProcState) AddEntry(e *ContainerEntry) {
	p.entries[e.ProfUID] = e
}

// Finalize builds the stacked time-point levels from the entries added
// so far, sorted by start within each level and marked First on their
// sole occurrence (processors have no duplicate-entry concept, so every
// ref is First).
func (p *ProcState) Finalize() {
	byLevel := make(map[int][]*ContainerEntry)
	maxLevel := -1
	for _, e := range p.entries {
		byLevel[e.Level] = append(byLevel[e.Level], e)
		if e.Level > maxLevel {
			maxLevel = e.Level
		}
	}
	p.levels = make([][]EntryRef, maxLevel+1)
	for lvl := 0; lvl <= maxLevel; lvl++ {
		es := byLevel[lvl]
		sortEntriesByStart(es)
		refs := make([]EntryRef, len(es))
		for i, e := range es {
			refs[i] = EntryRef{ProfUID: e.ProfUID, Level: lvl, First: true}
		}
		p.levels[lvl] = refs
	}
}

func sortEntriesByStart(es []*ContainerEntry) {
	for i := 1; i < len(es); i++ {
		for j := i; j > 0 && es[j].TimeRange.Start < es[j-1].TimeRange.Start; j-- {
			es[j], es[j-1] = es[j-1], es[j]
		}
	}
	for i := 1; i < len(es); i++ {
		prev, cur := es[i-1], es[i]
		if !prev.TimeRange.HasStop {
			continue
		}
		assert(prev.TimeRange.Stop <= cur.TimeRange.Start,
			"entries %d and %d overlap on the same level", prev.ProfUID, cur.ProfUID)
	}
}

func (p *ProcState) Kind() ContainerKind { return ContainerProc }

func (p *ProcState) MaxLevels(filter DeviceFilter) int {
	if filter.Any || filter.Kind == p.DeviceKind {
		return len(p.levels)
	}
	return 0
}

func (p *ProcState) TimePointsStacked(filter DeviceFilter) [][]EntryRef {
	if !filter.Any && filter.Kind != p.DeviceKind {
		return nil
	}
	return p.levels
}

func (p *ProcState) Entry(uid ids.ProfUID) (*ContainerEntry, bool) {
	e, ok := p.entries[uid]
	return e, ok
}

// FindExecutingEntry returns the entry that was executing on this
// processor at the given instant, scanning the lowest levels first. Used
// to turn an fevent creator reference plus a timestamp into the concrete
// entry that performed the creation or trigger.
func (p *ProcState) FindExecutingEntry(at ids.Timestamp) (*ContainerEntry, bool) {
	for _, lvl := range p.levels {
		for _, ref := range lvl {
			e := p.entries[ref.ProfUID]
			if e == nil || !e.TimeRange.HasStop {
				continue
			}
			if e.TimeRange.Start <= at && at < e.TimeRange.Stop {
				return e, true
			}
		}
	}
	return nil, false
}

// FindPreviousExecutingEntry scans level 0 (the only level a single-issue
// processor occupies at any instant) for the entry whose [start, stop)
// ends at or before start and is the latest such entry — the task that
// was running immediately before the querying entry began (spec.md §4.5).
func (p *ProcState) FindPreviousExecutingEntry(ready, start ids.Timestamp, filter DeviceFilter) (ids.ProfUID, ids.Timestamp, ids.Timestamp, bool) {
	if !filter.Any && filter.Kind != p.DeviceKind {
		return 0, 0, 0, false
	}
	if len(p.levels) == 0 {
		return 0, 0, 0, false
	}
	var best *ContainerEntry
	for _, ref := range p.levels[0] {
		e := p.entries[ref.ProfUID]
		if e == nil || !e.TimeRange.HasStop {
			continue
		}
		if e.TimeRange.Stop > start {
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

var _ Container = (*ProcState)(nil)
