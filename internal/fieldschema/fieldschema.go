// Package fieldschema assigns stable numeric FieldIDs to the named
// fields every ItemMeta can carry, so the wire format never repeats
// field names and the viewer can cache a schema once per session
// (spec.md §2 component 3, §6 field-value shapes).
package fieldschema

// FieldID is a stable, small numeric identifier for a named metadata
// field. Values are assigned in registration order below and must never
// be renumbered once shipped to a viewer build.
type FieldID int

const (
	FieldChanReqs FieldID = iota
	FieldExpandedForVisibility
	FieldOperation
	FieldInsts
	FieldInstFields
	FieldInstFspace
	FieldInstIspace
	FieldInstLayout
	FieldSize
	FieldInterval
	FieldNumItems
	FieldProvenance
	FieldStatusReady
	FieldStatusRunning
	FieldStatusWaiting
	FieldDeferredTime
	FieldDelayedTime
	FieldCreator
	FieldCaller
	FieldCallee
	FieldMapper
	FieldMapperProc
	FieldBacktrace
	FieldCritical
	FieldTriggerTime
	FieldPreviousExecuting
	FieldSchedulingOverhead
	FieldMessageLatency
)

// Descriptor names a field and whether the viewer should show it inline
// in the item's summary row versus only on demand (expanded view).
type Descriptor struct {
	ID     FieldID
	Name   string
	Inline bool
}

// registry is the fixed, ordered field table. Index i always corresponds
// to FieldID(i); Lookup relies on that invariant instead of a map so
// schema iteration order is deterministic for the viewer.
var registry = []Descriptor{
	{FieldChanReqs, "channel requirements", false},
	{FieldExpandedForVisibility, "expanded for visibility", true},
	{FieldOperation, "operation", true},
	{FieldInsts, "instances", false},
	{FieldInstFields, "fields", false},
	{FieldInstFspace, "field space", false},
	{FieldInstIspace, "index space", false},
	{FieldInstLayout, "layout", false},
	{FieldSize, "size", true},
	{FieldInterval, "interval", true},
	{FieldNumItems, "num items", true},
	{FieldProvenance, "provenance", false},
	{FieldStatusReady, "ready", false},
	{FieldStatusRunning, "running", false},
	{FieldStatusWaiting, "waiting", false},
	{FieldDeferredTime, "deferred time", false},
	{FieldDelayedTime, "delayed time", false},
	{FieldCreator, "creator", true},
	{FieldCaller, "caller", false},
	{FieldCallee, "callee", false},
	{FieldMapper, "mapper", false},
	{FieldMapperProc, "mapper processor", false},
	{FieldBacktrace, "backtrace", false},
	{FieldCritical, "critical", true},
	{FieldTriggerTime, "trigger time", false},
	{FieldPreviousExecuting, "previous executing", false},
	{FieldSchedulingOverhead, "scheduling overhead", false},
	{FieldMessageLatency, "message latency", false},
}

// Schema returns the fixed field table, in registration order, for a
// DataSourceInfo response (spec.md §4.7 fetch_info).
func Schema() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the descriptor for id.
func Lookup(id FieldID) (Descriptor, bool) {
	if int(id) < 0 || int(id) >= len(registry) {
		return Descriptor{}, false
	}
	return registry[id], true
}

// Name returns id's display name, or "" if id is unregistered.
func Name(id FieldID) string {
	d, ok := Lookup(id)
	if !ok {
		return ""
	}
	return d.Name
}
