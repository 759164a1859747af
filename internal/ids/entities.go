package ids

import "fmt"

// NodeID identifies one node (shard) of the profiled run.
type NodeID uint64

func (n NodeID) String() string { return fmt.Sprintf("node%d", uint64(n)) }

// OpID identifies a Legion operation. OpIDZero is the sentinel the
// original treats as "unset" — some fields carry it for operations that
// predate a tracked id scheme, and callers must check for it explicitly
// rather than assume every OpID names a real operation.
type OpID uint64

// OpIDZero is the unset sentinel. The zero value of OpID already equals
// this, but the name documents the intent at call sites.
const OpIDZero OpID = 0

// IsZero reports whether this is the unset sentinel.
func (o OpID) IsZero() bool { return o == OpIDZero }

// InstUID identifies a physical instance allocation, stable across its
// lifetime even if the instance is later renamed or merged in logs.
type InstUID uint64

// ProfUID identifies a single recorded entry (task, copy, fill, ...)
// uniquely across the whole profile, independent of which container it
// renders under.
type ProfUID uint64

// ProcID identifies a processor: its owning node plus a node-local index.
type ProcID struct {
	Node  NodeID
	Local uint64
}

func (p ProcID) NodeID() NodeID     { return p.Node }
func (p ProcID) ProcInNode() uint64 { return p.Local }
func (p ProcID) String() string     { return fmt.Sprintf("proc(%d,%d)", p.Node, p.Local) }

// MemID identifies a memory: its owning node plus a node-local index.
type MemID struct {
	Node  NodeID
	Local uint64
}

func (m MemID) NodeID() NodeID    { return m.Node }
func (m MemID) MemInNode() uint64 { return m.Local }
func (m MemID) String() string    { return fmt.Sprintf("mem(%d,%d)", m.Node, m.Local) }

// ChanKind distinguishes the flavor of data-movement channel.
type ChanKind int

const (
	ChanKindCopy ChanKind = iota
	ChanKindFill
	ChanKindGather
	ChanKindScatter
	ChanKindDepPart
)

func (k ChanKind) String() string {
	switch k {
	case ChanKindCopy:
		return "copy"
	case ChanKindFill:
		return "fill"
	case ChanKindGather:
		return "gather"
	case ChanKindScatter:
		return "scatter"
	case ChanKindDepPart:
		return "deppart"
	default:
		return "unknown"
	}
}

// ChanID identifies a channel. A DepPart channel has no source/destination
// memory (it moves index-space partitions, not instance bytes), so Src
// and Dst are the zero MemID in that case; every other kind carries both.
type ChanID struct {
	Kind ChanKind
	Src  MemID
	Dst  MemID
	Node NodeID
}

func (c ChanID) String() string {
	if c.Kind == ChanKindDepPart {
		return fmt.Sprintf("chan(%s,node=%d)", c.Kind, c.Node)
	}
	return fmt.Sprintf("chan(%s,%s->%s)", c.Kind, c.Src, c.Dst)
}

// EventID names a Realm event, distinguishing ordinary events from
// barriers (which reuse the same generation slot across arrivals).
type EventID struct {
	Raw     uint64
	Barrier bool
	Node    NodeID
}

// IsBarrier reports whether this event id names a barrier generation
// rather than a plain event.
func (e EventID) IsBarrier() bool { return e.Barrier }

func (e EventID) String() string {
	if e.Barrier {
		return fmt.Sprintf("barrier(%d)", e.Raw)
	}
	return fmt.Sprintf("event(%d)", e.Raw)
}
