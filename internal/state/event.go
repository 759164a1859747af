package state

import "github.com/legion-prof/profviewer/internal/ids"

// EventEntryKind classifies what triggered a critical-path event, driving
// the resolver's link-construction table (spec.md §4.5).
type EventEntryKind int

const (
	EventUnknown EventEntryKind = iota
	EventTask
	EventFill
	EventCopy
	EventDepPart
	EventInstanceReady
	EventInstanceDeletion
	EventExternalHandshake
	EventMerge
	EventTrigger
	EventPoison
	EventArriveBarrier
	EventReservationAcquire
	EventCompletionQueue
)

func (k EventEntryKind) String() string {
	switch k {
	case EventUnknown:
		return "Unknown"
	case EventTask:
		return "Task"
	case EventFill:
		return "Fill"
	case EventCopy:
		return "Copy"
	case EventDepPart:
		return "DepPart"
	case EventInstanceReady:
		return "InstanceReady"
	case EventInstanceDeletion:
		return "InstanceDeletion"
	case EventExternalHandshake:
		return "ExternalHandshake"
	case EventMerge:
		return "Merge"
	case EventTrigger:
		return "Trigger"
	case EventPoison:
		return "Poison"
	case EventArriveBarrier:
		return "ArriveBarrier"
	case EventReservationAcquire:
		return "ReservationAcquire"
	case EventCompletionQueue:
		return "CompletionQueue"
	default:
		return "Unknown"
	}
}

// EventEntry describes the critical-path predecessor of a container
// entry: what kind of thing triggered it, who (if anyone) created it, the
// event itself, and when it fired.
type EventEntry struct {
	Kind EventEntryKind

	// Event identifies the Realm event this entry describes, when
	// applicable.
	Event ids.EventID

	// Creator is the ProfUID that created the referenced entry, present
	// for Task/Fill/Copy/DepPart/InstanceReady/InstanceDeletion. For
	// Merge/Trigger/Poison/ArriveBarrier/ReservationAcquire/
	// CompletionQueue it names an entry whose processor is searched for
	// the entry executing at TriggerTime.
	Creator    ids.ProfUID
	HasCreator bool

	// TriggerTime is when this event fired, used both for the
	// creator-vs-critical disambiguation and for trigger-propagation
	// interval construction (spec.md §4.5).
	TriggerTime ids.Timestamp

	// Node is the node this event belongs to, used to detect
	// cross-node references for ExternalHandshake and the
	// executing-entry lookups.
	Node ids.NodeID
}
