package state

import "github.com/legion-prof/profviewer/internal/ids"

// TimeRange holds the lifecycle timestamps of one container entry. Ready
// and Start are always defined for waiter analysis (spec.md §3); Create,
// Stop, and Spawn are optional — Spawn applies only to message-originated
// tasks.
type TimeRange struct {
	Create    ids.Timestamp
	HasCreate bool
	Ready     ids.Timestamp
	Start     ids.Timestamp
	Stop      ids.Timestamp
	HasStop   bool
	Spawn     ids.Timestamp
	HasSpawn  bool
}

// Interval returns the entry's rendered [Start, Stop) span. Callers must
// not call this before HasStop is confirmed true.
func (t TimeRange) Interval() ids.Interval {
	return ids.NewInterval(t.Start, t.Stop)
}

// Waiter is a sub-interval during which an entry was suspended on an
// event: [Start, Ready) waiting, with an optional callee/backtrace/event
// describing what it waited on. End is when the wait's effect on the
// entry's running/waiting/ready shading ends (spec.md §4.4 status
// shading, §6 Waiter glossary entry).
type Waiter struct {
	Start ids.Timestamp
	Ready ids.Timestamp
	End   ids.Timestamp

	Callee    ids.ProfUID
	HasCallee bool
	Backtrace string
	Event     ids.EventID
	HasEvent  bool
}

// EntryCategory classifies what kind of record a container entry is. The
// category decides which metadata the facade attaches: calls report a
// caller rather than a creator/critical pair, and meta-tasks flip the
// deferred-time color polarity (runtime work should not sit deferred the
// way deliberately-ahead application work does).
type EntryCategory int

const (
	CategoryTask EntryCategory = iota
	CategoryMetaTask
	CategoryMapperCall
	CategoryRuntimeCall
	CategoryApplicationCall
	CategoryGPUKernel
	CategoryProfTask
	CategoryCopy
	CategoryFill
	CategoryDepPart
	CategoryInstance
)

// IsCall reports whether this entry is a call hosted inside another
// entry, in which case its creator reference names the caller.
func (c EntryCategory) IsCall() bool {
	switch c {
	case CategoryMapperCall, CategoryRuntimeCall, CategoryApplicationCall, CategoryGPUKernel:
		return true
	default:
		return false
	}
}

// IsMeta reports whether this entry is runtime (meta) work rather than
// application work.
func (c EntryCategory) IsMeta() bool {
	return c == CategoryMetaTask || c == CategoryProfTask
}

// IsTaskLike reports whether this entry participates in critical-path
// reporting even without a recorded creator.
func (c EntryCategory) IsTaskLike() bool {
	return c == CategoryTask || c == CategoryMetaTask || c == CategoryProfTask
}

// ContainerEntry is the polymorphic record the tile builder, sampler, and
// resolver all work against: one task, copy, fill, dependent-partition
// op, or instance lifecycle, wherever it is hosted (spec.md §3).
type ContainerEntry struct {
	ProfUID  ids.ProfUID
	Level    int
	Category EntryCategory

	TimeRange TimeRange
	Waiters   []Waiter

	// ColorFn/NameFn/ProvenanceFn are deferred to the caller's State
	// because rendering needs cross-references (e.g. an op's variant
	// name) that only the full state, not the entry alone, can resolve
	// — mirrors the original's `color(state)`/`name(state)` methods
	// taking the data source as an argument.
	ColorFn      func(*State) ids.Color
	NameFn       func(*State) string
	ProvenanceFn func(*State) string

	// Initiation is the operation that initiated this entry; the zero
	// OpID means "unset" (an exporter-compatibility sentinel, checked
	// explicitly at every consumer).
	Initiation ids.OpID

	// OpID is the operation this entry executes, when it is a task; its
	// instance usage is looked up through State.FindOp.
	OpID    ids.OpID
	HasOpID bool

	Creator    ids.ProfUID
	HasCreator bool

	// Critical names the event whose triggering unblocked this entry;
	// the EventEntry describing it lives in State.Events.
	Critical    ids.EventID
	HasCritical bool

	CreationTime ids.Timestamp

	// MapperName/MapperProc describe the mapper a mapper-call entry ran
	// under.
	MapperName string
	MapperProc ids.ProcID
	HasMapper  bool

	// ChanReqs holds the pre-formatted requirement descriptions of a
	// channel-hosted entry (source/destination instances, fields, hop
	// counts), in display order.
	ChanReqs []string

	// AllocatedImmediately applies only to memory-hosted instance
	// entries: false means the instance had to wait on a prior
	// deallocation before it could be placed (spec.md §3).
	AllocatedImmediately bool

	// SizeBytes is the moved/allocated byte count: an instance's
	// footprint for memory-hosted entries (it also derives UtilWeight),
	// or the transfer size for copy/fill channel entries. Zero on
	// entries where size is meaningless.
	SizeBytes uint64

	// UtilWeight is the precomputed byte-normalized occupancy fraction
	// (SizeBytes / owning memory's capacity) a memory panel's step
	// utilization sums instead of the processor/channel panels' plain
	// 1/owner-count occupancy weight (spec.md §4.2 "Memory panel").
	// MemState.Finalize fills this in; zero on non-memory entries.
	UtilWeight float64
}

// Color resolves this entry's rendered color, defaulting to gray if no
// ColorFn was set (entries built directly in tests commonly skip it).
func (e *ContainerEntry) Color(st *State) ids.Color {
	if e.ColorFn == nil {
		return ids.ColorGray
	}
	return e.ColorFn(st)
}

// Name resolves this entry's display name.
func (e *ContainerEntry) Name(st *State) string {
	if e.NameFn == nil {
		return ""
	}
	return e.NameFn(st)
}

// Provenance resolves this entry's provenance string, if any.
func (e *ContainerEntry) Provenance(st *State) string {
	if e.ProvenanceFn == nil {
		return ""
	}
	return e.ProvenanceFn(st)
}
