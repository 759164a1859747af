// Package resolver turns bare identifiers (ProfUID, InstUID, OpID,
// EventID) into viewer-navigable links and severity-colored field values
// (spec.md §4.5). Every lookup degrades to a descriptive string rather
// than an error when the referenced log was not loaded — missing data is
// first-class, never fatal (spec.md §7).
package resolver

import (
	"fmt"

	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/state"
	"github.com/legion-prof/profviewer/internal/tile"
)

// Severity thresholds, spec.md §6.
const (
	thresholdNone = 100 * 1000  // 100us in ns
	thresholdGold = 1000 * 1000 // 1ms in ns
)

// Resolver classifies identifiers against a fixed State and builds
// links carrying the EntryID of the hosting container's tree slot.
type Resolver struct {
	St *state.State
	// EntryIDFor resolves a container (by kind+value) to the EntryID of
	// its slot in the built entry tree, so links can carry a navigable
	// EntryID. Supplied by the service facade, which owns the tree.
	EntryIDFor func(kind state.ContainerKind, container state.Container) (ids.EntryID, bool)
}

// New constructs a Resolver bound to st, using entryIDFor to translate a
// container back to its tree-assigned EntryID.
func New(st *state.State, entryIDFor func(state.ContainerKind, state.Container) (ids.EntryID, bool)) *Resolver {
	return &Resolver{St: st, EntryIDFor: entryIDFor}
}

// ResolveProfUID classifies uid as a processor entry, a channel entry,
// or an instance in a memory, in that priority order, and builds a link
// into the corresponding container's EntryID. If uid is unclassifiable
// it returns a descriptive string asking the user to load the
// responsible node's log (spec.md §4.5).
func (r *Resolver) ResolveProfUID(uid ids.ProfUID) (tile.ItemLink, string) {
	proc, inProc, ch, inChan, mem, inMem := r.St.LookupProfUID(uid)

	switch {
	case inProc:
		container := r.St.Procs[proc]
		entry, _ := container.Entry(uid)
		return r.linkFor(state.ContainerProc, container, entry), ""
	case inChan:
		container := r.St.Chans[ch]
		entry, _ := container.Entry(uid)
		return r.linkFor(state.ContainerChan, container, entry), ""
	case inMem:
		container := r.St.Mems[mem]
		entry, _ := container.Entry(uid)
		return r.linkFor(state.ContainerMem, container, entry), ""
	default:
		return tile.ItemLink{}, "Unable to locate this entry; load the log for the responsible node to resolve it."
	}
}

func (r *Resolver) linkFor(kind state.ContainerKind, container state.Container, entry *state.ContainerEntry) tile.ItemLink {
	link := tile.ItemLink{ItemUID: entry.ProfUID, Title: entry.Name(r.St)}
	if entry.TimeRange.HasStop {
		link.Interval = entry.TimeRange.Interval()
	}
	if r.EntryIDFor != nil {
		if id, ok := r.EntryIDFor(kind, container); ok {
			link.EntryID = id
		}
	}
	return link
}

// OpLink builds the operation field for an initiation op: a link to the
// task that executed the operation when its log was loaded, the
// operation's name otherwise, or the bare id as a last resort.
func (r *Resolver) OpLink(op ids.OpID) tile.FieldValue {
	if info, ok := r.St.FindOp(op); ok {
		if info.HasTask {
			if link, miss := r.ResolveProfUID(info.TaskUID); miss == "" {
				if info.Name != "" {
					link.Title = info.Name
				}
				return tile.LinkValue(link)
			}
		}
		if info.Name != "" {
			return tile.StringValue(fmt.Sprintf("%s Operation<%d>", info.Name, uint64(op)))
		}
	}
	return tile.U64Value(uint64(op))
}

// InstLink builds a link to an instance's lifecycle entry in its hosting
// memory. The second return is false when the instance is unknown (its
// memory's log was not loaded).
func (r *Resolver) InstLink(inst ids.InstUID, prefix string) (tile.FieldValue, bool) {
	memID, uid, ok := r.St.MemForInstance(inst)
	if !ok {
		return tile.FieldValue{}, false
	}
	mem, ok := r.St.Mems[memID]
	if !ok {
		return tile.FieldValue{}, false
	}
	entry, ok := mem.Entry(uid)
	if !ok {
		return tile.FieldValue{}, false
	}
	link := r.linkFor(state.ContainerMem, mem, entry)
	link.Title = prefix + link.Title
	return tile.LinkValue(link), true
}

// ProcLink builds a link to a processor-hosted entry, used for caller
// and waiter-callee fields.
func (r *Resolver) ProcLink(uid ids.ProfUID) tile.FieldValue {
	link, miss := r.ResolveProfUID(uid)
	if miss != "" {
		return tile.StringValue(miss)
	}
	return tile.LinkValue(link)
}

// CreatorLink builds the creator field for an entry: the concrete entry
// that was executing on the creator's processor at the creation instant,
// or the channel/instance entry the creator names, or a descriptive
// string when the creator's log was not loaded.
func (r *Resolver) CreatorLink(uid ids.ProfUID, creationTime ids.Timestamp) tile.FieldValue {
	proc, inProc, _, _, _, _ := r.St.LookupProfUID(uid)
	if inProc {
		ps := r.St.Procs[proc]
		if entry, ok := ps.FindExecutingEntry(creationTime); ok {
			return tile.LinkValue(r.linkFor(state.ContainerProc, ps, entry))
		}
	}
	link, miss := r.ResolveProfUID(uid)
	if miss != "" {
		return tile.StringValue("Unknown creator. Please load the logfile from the responsible node to see it.")
	}
	return tile.LinkValue(link)
}

// CriticalCreatorLink is CreatorLink with a title naming the creation
// explicitly, used when the creation itself is the critical path.
func (r *Resolver) CriticalCreatorLink(uid ids.ProfUID, creationTime ids.Timestamp) tile.FieldValue {
	proc, inProc, ch, inChan, mem, inMem := r.St.LookupProfUID(uid)
	switch {
	case inProc:
		ps := r.St.Procs[proc]
		entry, ok := ps.FindExecutingEntry(creationTime)
		if !ok {
			if entry, ok = ps.Entry(uid); !ok {
				break
			}
		}
		link := r.linkFor(state.ContainerProc, ps, entry)
		link.Title = fmt.Sprintf("Created by %s at %s on %s", entry.Name(r.St), creationTime, procName(ps))
		return tile.LinkValue(link)
	case inChan:
		cs := r.St.Chans[ch]
		entry, ok := cs.Entry(uid)
		if !ok {
			break
		}
		link := r.linkFor(state.ContainerChan, cs, entry)
		link.Title = fmt.Sprintf("Created by %s at %s in %s", entry.Name(r.St), creationTime, chanName(cs))
		return tile.LinkValue(link)
	case inMem:
		ms := r.St.Mems[mem]
		entry, ok := ms.Entry(uid)
		if !ok {
			break
		}
		link := r.linkFor(state.ContainerMem, ms, entry)
		link.Title = fmt.Sprintf("Created by %s at %s in %s", entry.Name(r.St), creationTime, memName(ms))
		return tile.LinkValue(link)
	}
	return tile.StringValue("Unknown creator. Please load the logfile from the responsible node to see it.")
}

// PreviousExecutingLink builds the link to the entry that occupied the
// same container immediately before the querying one started, with the
// interval it actually ran over.
func (r *Resolver) PreviousExecutingLink(prev ids.ProfUID, start, stop ids.Timestamp) tile.FieldValue {
	link, miss := r.ResolveProfUID(prev)
	if miss != "" {
		return tile.StringValue(miss)
	}
	link.Interval = ids.NewInterval(start, stop)
	return tile.LinkValue(link)
}

// CriticalLink implements the EventEntryKind-keyed table in spec.md
// §4.5: each kind resolves to either a link into the creating/executing
// entry, or a descriptive string when the reference is cross-node or
// otherwise unresolvable.
func (r *Resolver) CriticalLink(event ids.EventID, ev *state.EventEntry) tile.FieldValue {
	node := uint64(ev.Node)
	switch ev.Kind {
	case state.EventUnknown:
		if event.IsBarrier() {
			return tile.StringValue(fmt.Sprintf(
				"Unknown critical path barrier %#x created on node %d. Please load the logfile from at least one node that arrives on this barrier to start determining a critical path. You'll need to load the logs from all nodes that arrive on this barrier to determine a precise critical path.",
				event.Raw, node))
		}
		return tile.StringValue(fmt.Sprintf(
			"Unknown critical path event %#x from node %d. Please load the logfile from that node to see it.",
			event.Raw, node))

	case state.EventTask:
		if ev.HasCreator {
			proc, inProc, _, _, _, _ := r.St.LookupProfUID(ev.Creator)
			if inProc {
				ps := r.St.Procs[proc]
				if entry, ok := ps.Entry(ev.Creator); ok {
					link := r.linkFor(state.ContainerProc, ps, entry)
					link.Title = fmt.Sprintf("Completion of %s at %s on %s", entry.Name(r.St), ev.TriggerTime, procName(ps))
					return tile.LinkValue(link)
				}
			}
		}
		return tile.StringValue(fmt.Sprintf(
			"Critical path from a (meta-) task on node %d. Please load the logfile from that node to see it.", node))

	case state.EventFill, state.EventCopy, state.EventDepPart:
		if ev.HasCreator {
			_, _, ch, inChan, _, _ := r.St.LookupProfUID(ev.Creator)
			if inChan {
				cs := r.St.Chans[ch]
				if entry, ok := cs.Entry(ev.Creator); ok {
					link := r.linkFor(state.ContainerChan, cs, entry)
					link.Title = fmt.Sprintf("Completion of %s at %s in %s", entry.Name(r.St), ev.TriggerTime, chanName(cs))
					return tile.LinkValue(link)
				}
			}
		}
		kind := map[state.EventEntryKind]string{
			state.EventFill:    "fill",
			state.EventCopy:    "copy",
			state.EventDepPart: "dependent partition operation",
		}[ev.Kind]
		return tile.StringValue(fmt.Sprintf(
			"Critical path from a %s on node %d. Please load the logfile from that node to see it.", kind, node))

	case state.EventInstanceReady, state.EventInstanceDeletion:
		if ev.HasCreator {
			_, _, _, _, mem, inMem := r.St.LookupProfUID(ev.Creator)
			if inMem {
				ms := r.St.Mems[mem]
				if entry, ok := ms.Entry(ev.Creator); ok {
					link := r.linkFor(state.ContainerMem, ms, entry)
					if ev.Kind == state.EventInstanceReady {
						link.Title = fmt.Sprintf("Allocation of %s at %s in %s", entry.Name(r.St), entry.TimeRange.Ready, memName(ms))
					} else {
						link.Title = fmt.Sprintf("Deletion of %s at %s in %s", entry.Name(r.St), entry.TimeRange.Stop, memName(ms))
					}
					return tile.LinkValue(link)
				}
			}
		}
		what := "creation"
		if ev.Kind == state.EventInstanceDeletion {
			what = "deletion"
		}
		return tile.StringValue(fmt.Sprintf(
			"Critical path from an instance %s on node %d. Please load the logfile from that node to see it.", what, node))

	case state.EventExternalHandshake:
		return tile.StringValue(fmt.Sprintf("External handshake on node %d at %s", node, ev.TriggerTime))

	case state.EventMerge, state.EventTrigger, state.EventPoison,
		state.EventArriveBarrier, state.EventReservationAcquire, state.EventCompletionQueue:
		return r.executingAtTriggerLink(ev, node)

	default:
		return tile.StringValue("Unrecognized critical path event kind")
	}
}

// executingAtTriggerLink resolves the kinds whose critical path is
// "whatever was running on the fevent's processor when this fired"
// rather than a creator pointer; cross-node references degrade to a
// descriptive string (spec.md §4.5 table, last row).
func (r *Resolver) executingAtTriggerLink(ev *state.EventEntry, node uint64) tile.FieldValue {
	label, article := triggerKindLabels(ev.Kind)
	if ev.HasCreator {
		proc, inProc, _, _, _, _ := r.St.LookupProfUID(ev.Creator)
		if inProc {
			ps := r.St.Procs[proc]
			if entry, ok := ps.FindExecutingEntry(ev.TriggerTime); ok {
				link := r.linkFor(state.ContainerProc, ps, entry)
				link.Title = fmt.Sprintf("%s by %s at %s on %s", label, entry.Name(r.St), ev.TriggerTime, procName(ps))
				link.Interval = ids.NewInterval(entry.TimeRange.Start, ev.TriggerTime)
				return tile.LinkValue(link)
			}
		}
	}
	return tile.StringValue(fmt.Sprintf(
		"Critical path from a%s on node %d. Please load the logfile from that node to see it.", article, node))
}

func triggerKindLabels(kind state.EventEntryKind) (label, article string) {
	switch kind {
	case state.EventMerge:
		return "Event Merger", "n event merger"
	case state.EventTrigger:
		return "User Event Trigger", " user event trigger"
	case state.EventPoison:
		return "User Event Poisoned", " user event poison"
	case state.EventArriveBarrier:
		return "Barrier Arrival", " barrier arrival"
	case state.EventReservationAcquire:
		return "Reservation Acquire", " reservation acquire"
	case state.EventCompletionQueue:
		return "Completion Queue Non-Empty", " completion queue non-empty"
	default:
		return "Trigger", " trigger"
	}
}

// SelectCriticalColor picks the severity color for a critical field:
// unknown events are blue (missing data), application-side predecessors
// (task/fill/copy/deppart/instance-ready) carry no flag, and everything
// else is red — it means the runtime was slow hooking up the event
// graph.
func SelectCriticalColor(ev *state.EventEntry) (ids.Color, bool) {
	switch ev.Kind {
	case state.EventUnknown:
		return ids.ColorBlue, true
	case state.EventTask, state.EventFill, state.EventCopy, state.EventDepPart, state.EventInstanceReady:
		return 0, false
	default:
		return ids.ColorRed, true
	}
}

// SelectIntervalColor implements spec.md §4.5's penalty scale for
// latency intervals: <100us none, <1ms gold, else red. A negative
// interval (stop before start, e.g. clock skew) is blue — unclear, not
// rejected (spec.md §7).
func SelectIntervalColor(start, stop ids.Timestamp) (ids.Color, bool) {
	if stop < start {
		return ids.ColorBlue, true
	}
	switch diff := int64(stop - start); {
	case diff < thresholdNone:
		return 0, false
	case diff < thresholdGold:
		return ids.ColorGold, true
	default:
		return ids.ColorRed, true
	}
}

// SelectDeferredColor implements spec.md §4.5's inverse scale used for
// create->ready waits on application tasks and instance ready-waits:
// long deferrals are REWARDED (the runtime was ahead of execution), so
// the polarity is reversed: <100us red, <1ms gold, else no color.
// Meta-tasks use the normal penalty scale (SelectIntervalColor) instead.
func SelectDeferredColor(start, stop ids.Timestamp) (ids.Color, bool) {
	switch diff := int64(stop - start); {
	case diff < thresholdNone:
		return ids.ColorRed, true
	case diff < thresholdGold:
		return ids.ColorGold, true
	default:
		return 0, false
	}
}

func procName(p *state.ProcState) string {
	return fmt.Sprintf("Node %d %s %d", p.Node, p.DeviceKind, p.ID.Local)
}

func memName(m *state.MemState) string {
	return fmt.Sprintf("Node %d %s Memory %d", m.Node, m.DeviceKind, m.ID.Local)
}

func chanName(c *state.ChanState) string {
	if c.ID.Kind == ids.ChanKindDepPart {
		return fmt.Sprintf("Dependent Partition Channel on node %d", c.Node)
	}
	return fmt.Sprintf("%s channel %s to %s", c.ID.Kind, c.ID.Src, c.ID.Dst)
}
