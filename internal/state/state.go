package state

import "github.com/legion-prof/profviewer/internal/ids"

// RuntimeConfig is the subset of the profiled run's launch configuration
// that the warning aggregator (spec.md §4.6) surfaces to the viewer. Any
// non-default field triggers a performance-degradation banner.
type RuntimeConfig struct {
	// DetailedTimingEnabled, when true, indicates the run was profiled
	// with extra instrumentation (e.g. backtraces on every wait) that
	// materially slows execution.
	DetailedTimingEnabled bool
	// Extra holds any other named flags the state wants surfaced,
	// already formatted as "name=value".
	Extra []string
}

// HasNonDefault reports whether any configuration flag deviates from the
// zero-overhead default.
func (c RuntimeConfig) HasNonDefault() bool {
	return c.DetailedTimingEnabled || len(c.Extra) > 0
}

// OpInfo describes one operation: its display name, the task entry that
// executed it (when that entry's log was loaded), and the instances the
// operation touched, in the order they should be listed.
type OpInfo struct {
	Name     string
	TaskUID  ids.ProfUID
	HasTask  bool
	InstUIDs []ids.InstUID
}

// instBinding is the reverse inst_uid record: which memory hosts the
// instance and the ProfUID of its lifecycle entry there.
type instBinding struct {
	Mem ids.MemID
	UID ids.ProfUID
}

// State is the finalized, read-only profile snapshot every engine
// operates over. It owns every container and the reverse-lookup tables
// that let the resolver classify a bare ProfUID/InstUID (spec.md §3).
type State struct {
	Procs map[ids.ProcID]*ProcState
	Mems  map[ids.MemID]*MemState
	Chans map[ids.ChanID]*ChanState

	// Ops indexes operations by id for operation links and per-task
	// instance listings.
	Ops map[ids.OpID]*OpInfo

	// Events holds the critical-path event entries, keyed by the event
	// id that container entries and waiters reference.
	Events map[ids.EventID]*EventEntry

	// SourceLocators are the log paths this state was assembled from,
	// echoed back verbatim by fetch_description (spec.md §4.7).
	SourceLocators []string

	Config RuntimeConfig

	// profToProc/profToChan/profToMem/instToMem are the reverse maps
	// spec.md §3 requires: "the state provides reverse maps
	// prof_uid -> proc_id | chan_id | mem_id and inst_uid -> mem_id".
	profToProc map[ids.ProfUID]ids.ProcID
	profToChan map[ids.ProfUID]ids.ChanID
	profToMem  map[ids.ProfUID]ids.MemID
	instToMem  map[ids.InstUID]instBinding

	lastTime ids.Timestamp
}

// New constructs an empty State. Callers populate it via AddProc/AddMem/
// AddChan and then call Finalize once before serving tile queries.
func New() *State {
	return &State{
		Procs:      make(map[ids.ProcID]*ProcState),
		Mems:       make(map[ids.MemID]*MemState),
		Chans:      make(map[ids.ChanID]*ChanState),
		Ops:        make(map[ids.OpID]*OpInfo),
		Events:     make(map[ids.EventID]*EventEntry),
		profToProc: make(map[ids.ProfUID]ids.ProcID),
		profToChan: make(map[ids.ProfUID]ids.ChanID),
		profToMem:  make(map[ids.ProfUID]ids.MemID),
		instToMem:  make(map[ids.InstUID]instBinding),
	}
}

func (s *State) AddProc(p *ProcState) {
	s.Procs[p.ID] = p
	for uid := range p.entries {
		s.profToProc[uid] = p.ID
	}
}

func (s *State) AddMem(m *MemState) {
	s.Mems[m.ID] = m
	for uid := range m.entries {
		s.profToMem[uid] = m.ID
	}
}

func (s *State) AddChan(c *ChanState) {
	s.Chans[c.ID] = c
	for uid := range c.entries {
		s.profToChan[uid] = c.ID
	}
}

// BindInstance records the reverse inst_uid -> mem_id mapping for an
// instance entry already added via AddMem, along with the ProfUID of the
// instance's lifecycle entry in that memory.
func (s *State) BindInstance(inst ids.InstUID, mem ids.MemID, uid ids.ProfUID) {
	s.instToMem[inst] = instBinding{Mem: mem, UID: uid}
}

// AddOp registers an operation for op-link resolution.
func (s *State) AddOp(op ids.OpID, info *OpInfo) {
	s.Ops[op] = info
}

// FindOp resolves an operation id; the zero OpID never resolves.
func (s *State) FindOp(op ids.OpID) (*OpInfo, bool) {
	if op.IsZero() {
		return nil, false
	}
	info, ok := s.Ops[op]
	return info, ok
}

// AddEvent registers a critical-path event entry.
func (s *State) AddEvent(ev ids.EventID, entry *EventEntry) {
	s.Events[ev] = entry
}

// FindCriticalEntry resolves an event id to its critical-path entry.
func (s *State) FindCriticalEntry(ev ids.EventID) (*EventEntry, bool) {
	entry, ok := s.Events[ev]
	return entry, ok
}

// HasCriticalPathData reports whether this profile recorded any
// critical-path events at all. When it did, entries that never matched
// one still report their creation as the critical path, so the user
// sees a complete chain rather than silent gaps.
func (s *State) HasCriticalPathData() bool {
	return len(s.Events) > 0
}

// LookupProfUID classifies a ProfUID against the reverse maps, in the
// processor/channel/memory priority order spec.md §4.5 specifies for the
// resolver.
func (s *State) LookupProfUID(uid ids.ProfUID) (proc ids.ProcID, inProc bool, ch ids.ChanID, inChan bool, mem ids.MemID, inMem bool) {
	if p, ok := s.profToProc[uid]; ok {
		return p, true, ids.ChanID{}, false, ids.MemID{}, false
	}
	if c, ok := s.profToChan[uid]; ok {
		return ids.ProcID{}, false, c, true, ids.MemID{}, false
	}
	if m, ok := s.profToMem[uid]; ok {
		return ids.ProcID{}, false, ids.ChanID{}, false, m, true
	}
	return ids.ProcID{}, false, ids.ChanID{}, false, ids.MemID{}, false
}

// MemForInstance resolves the reverse inst_uid -> mem_id map, returning
// the hosting memory and the ProfUID of the instance's entry there.
func (s *State) MemForInstance(inst ids.InstUID) (ids.MemID, ids.ProfUID, bool) {
	b, ok := s.instToMem[inst]
	return b.Mem, b.UID, ok
}

// Finalize sorts and stacks every container's time points and computes
// the global last-event time used for the padded viewer interval
// (spec.md §6: "global interval padding last_time/200").
func (s *State) Finalize() {
	s.lastTime = 0
	for _, p := range s.Procs {
		p.Finalize()
		s.updateLastTime(p.levels)
	}
	for _, m := range s.Mems {
		m.Finalize()
		s.updateLastTime(m.levels)
	}
	for _, c := range s.Chans {
		c.Finalize()
		s.updateLastTime(c.levels)
	}
}

func (s *State) updateLastTime(levels [][]EntryRef) {
	for _, lvl := range levels {
		for _, ref := range lvl {
			var e *ContainerEntry
			if pe, ok := s.profToProc[ref.ProfUID]; ok {
				e, _ = s.Procs[pe].Entry(ref.ProfUID)
			} else if ce, ok := s.profToChan[ref.ProfUID]; ok {
				e, _ = s.Chans[ce].Entry(ref.ProfUID)
			} else if me, ok := s.profToMem[ref.ProfUID]; ok {
				e, _ = s.Mems[me].Entry(ref.ProfUID)
			}
			if e != nil && e.TimeRange.HasStop && e.TimeRange.Stop > s.lastTime {
				s.lastTime = e.TimeRange.Stop
			}
		}
	}
}

// LastTime returns the latest stop timestamp observed across every
// container, the basis of the global viewer interval.
func (s *State) LastTime() ids.Timestamp { return s.lastTime }

// GlobalInterval returns [0, last_time + last_time/200), the padded
// interval fetch_info reports (spec.md §4.7, §6).
func (s *State) GlobalInterval() ids.Interval {
	pad := s.lastTime / 200
	return ids.NewInterval(0, s.lastTime+pad)
}

// ProcGroupKey groups processors the way the entry tree builder needs:
// by node, kind, with a device index already baked into ProcID.Local.
type ProcGroupKey struct {
	Node ids.NodeID
	Kind ProcKind
}

// GroupProcs buckets every processor by (node, kind). The map has no
// order; callers that need a deterministic layout sort its keys.
func (s *State) GroupProcs() map[ProcGroupKey][]ids.ProcID {
	out := make(map[ProcGroupKey][]ids.ProcID)
	for id, p := range s.Procs {
		key := ProcGroupKey{Node: p.Node, Kind: p.DeviceKind}
		out[key] = append(out[key], id)
	}
	return out
}

// MemGroupKey groups memories by node and kind.
type MemGroupKey struct {
	Node ids.NodeID
	Kind MemKind
}

func (s *State) GroupMems() map[MemGroupKey][]ids.MemID {
	out := make(map[MemGroupKey][]ids.MemID)
	for id, m := range s.Mems {
		key := MemGroupKey{Node: m.Node, Kind: m.DeviceKind}
		out[key] = append(out[key], id)
	}
	return out
}

// GroupChans buckets ordinary (non-DepPart) channels by node.
func (s *State) GroupChans() map[ids.NodeID][]ids.ChanID {
	out := make(map[ids.NodeID][]ids.ChanID)
	for id, c := range s.Chans {
		if id.Kind == ids.ChanKindDepPart {
			continue
		}
		out[c.Node] = append(out[c.Node], id)
	}
	return out
}

// GroupDepParts buckets dependent-partition channels by node.
func (s *State) GroupDepParts() map[ids.NodeID][]ids.ChanID {
	out := make(map[ids.NodeID][]ids.ChanID)
	for id, c := range s.Chans {
		if id.Kind != ids.ChanKindDepPart {
			continue
		}
		out[c.Node] = append(out[c.Node], id)
	}
	return out
}

// NodeSet returns every distinct node with at least one processor.
func (s *State) NodeSet() []ids.NodeID {
	seen := make(map[ids.NodeID]bool)
	var out []ids.NodeID
	for _, p := range s.Procs {
		if !seen[p.Node] {
			seen[p.Node] = true
			out = append(out, p.Node)
		}
	}
	return out
}

// NodeHasNonEmptyProc reports whether any processor on the given node has
// at least one non-empty level — the "skip entirely empty nodes" rule
// spec.md §3 requires the entry tree builder to enforce.
func (s *State) NodeHasNonEmptyProc(node ids.NodeID) bool {
	for _, p := range s.Procs {
		if p.Node != node {
			continue
		}
		for _, lvl := range p.levels {
			if len(lvl) > 0 {
				return true
			}
		}
	}
	return false
}
