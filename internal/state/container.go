// Package state holds the constructible, read-only snapshot the tile
// engine operates over: entities, containers, and the cross-reference
// tables that let the resolver walk from a ProfUID back to the container
// that hosts it. Nothing in this package parses logs — callers (tests,
// the demo CLI, or a future ingestion component) build a State directly
// and call Finalize.
package state

import "github.com/legion-prof/profviewer/internal/ids"

// DeviceFilter narrows a container query to a processor/memory kind, or
// "no filter" when Any is true. Most callers pass AnyDevice; the zero
// DeviceFilter selects only the zero ProcKind.
type DeviceFilter struct {
	Kind ProcKind
	Any  bool
}

// AnyDevice is the filter that selects every owner regardless of kind.
var AnyDevice = DeviceFilter{Any: true}

// EntryRef identifies one occurrence of an entry within a container's
// per-level stacked time points. First marks whether this is the first
// (non-duplicate) appearance of ProfUID on this level — spec.md §3
// requires downstream windowing to only consider First occurrences for
// the non-overlap guarantee.
type EntryRef struct {
	ProfUID ids.ProfUID
	Level   int
	First   bool
}

// Container is the capability set shared by processors, memories, and
// channels (spec.md §9: "polymorphism over containers"). The tile item
// builder, the step-utilization engine, and the resolver all operate
// against this interface rather than against concrete proc/mem/chan
// types, so a single code path handles every container kind.
type Container interface {
	// Kind identifies which concrete container this is, for dispatch at
	// the facade boundary (e.g. choosing a slot-tile builder).
	Kind() ContainerKind

	// MaxLevels returns the row count a tile response needs to
	// reserve for this container under the given device filter.
	MaxLevels(filter DeviceFilter) int

	// TimePointsStacked returns, per level, the ordered sequence of
	// entry references for this container under the given filter. Refs
	// marked First have pairwise non-overlapping intervals sorted by
	// start (spec.md §3 invariant).
	TimePointsStacked(filter DeviceFilter) [][]EntryRef

	// Entry resolves a ProfUID to its full container entry.
	Entry(uid ids.ProfUID) (*ContainerEntry, bool)

	// FindPreviousExecutingEntry locates the entry that was running on
	// this container's owning device immediately before start, given
	// the querying entry became ready at ready (spec.md §4.5 scheduling
	// overhead / previous-executing link).
	FindPreviousExecutingEntry(ready, start ids.Timestamp, filter DeviceFilter) (ids.ProfUID, ids.Timestamp, ids.Timestamp, bool)
}

// ContainerKind distinguishes which concrete Container implementation is
// behind the interface, used by the facade to pick a slot-tile builder.
type ContainerKind int

const (
	ContainerProc ContainerKind = iota
	ContainerMem
	ContainerChan
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerProc:
		return "proc"
	case ContainerMem:
		return "mem"
	case ContainerChan:
		return "chan"
	default:
		return "unknown"
	}
}

// ProcKind enumerates processor/memory device kinds used both for entry
// tree grouping (spec.md §4.1) and for the fixed kind-color table
// (spec.md §6).
type ProcKind int

const (
	ProcGPU ProcKind = iota
	ProcGPUHost
	ProcCPU
	ProcUtility
	ProcIO
	ProcOpenMP
	ProcProcGroup
	ProcProcSet
	ProcPython
)

func (k ProcKind) String() string {
	switch k {
	case ProcGPU:
		return "GPU"
	case ProcGPUHost:
		return "GPU Host"
	case ProcCPU:
		return "CPU"
	case ProcUtility:
		return "Utility"
	case ProcIO:
		return "I/O"
	case ProcOpenMP:
		return "OpenMP"
	case ProcProcGroup:
		return "Proc Group"
	case ProcProcSet:
		return "Proc Set"
	case ProcPython:
		return "Python"
	default:
		return "Processor"
	}
}

// MemKind enumerates memory device kinds for the same purposes.
type MemKind int

const (
	MemGlobal MemKind = iota
	MemZeroCopy
	MemL3
	MemSystem
	MemHDF5
	MemL1
	MemRegistered
	MemL2
	MemGPUManaged
	MemSocket
	MemFile
	MemGPUDynamic
	MemFramebuffer
	MemDisk
)

func (k MemKind) String() string {
	switch k {
	case MemGlobal:
		return "Global"
	case MemZeroCopy:
		return "Zero-Copy"
	case MemL3:
		return "L3 Cache"
	case MemSystem:
		return "System"
	case MemHDF5:
		return "HDF5"
	case MemL1:
		return "L1 Cache"
	case MemRegistered:
		return "Registered"
	case MemL2:
		return "L2 Cache"
	case MemGPUManaged:
		return "GPU Managed"
	case MemSocket:
		return "Socket"
	case MemFile:
		return "File"
	case MemGPUDynamic:
		return "GPU Dynamic"
	case MemFramebuffer:
		return "Framebuffer"
	case MemDisk:
		return "Disk"
	default:
		return "Memory"
	}
}
