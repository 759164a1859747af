// Package entrytree builds the hierarchical entry tree — root, node,
// kind-panel, slot — that the viewer navigates, and assigns the stable
// EntryIDs every other engine addresses containers by (spec.md §4.1).
package entrytree

import (
	"fmt"
	"sort"

	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/state"
)

// NodeKey is the "which tree branch" key: either a real profiled node,
// or the synthetic "all nodes" aggregate (IsAll true, Node ignored).
type NodeKey struct {
	Node  ids.NodeID
	IsAll bool
}

// Node is one entry in the built tree: a root, a per-node branch, a
// kind panel, or a leaf slot. Panels carry a Summary child with its own
// EntryID; slots do not, so Find does not resolve the Summary() of a
// slot's EntryID.
type Node struct {
	ID        ids.EntryID
	ShortName string
	LongName  string
	Color     ids.Color
	MaxRows   int
	Kind      state.ContainerKind
	IsPanel   bool
	Children  []*Node

	// Container is set on slots: the concrete processor/memory/channel
	// container this slot addresses, for dispatch by the facade.
	Container state.Container

	// Summary is the panel's aggregate-utilization node, addressed by
	// ID.Summary(). It carries the panel's color and Owners so the
	// facade can serve the summary curve directly; for the synthetic
	// "all nodes" panels it is the only thing exposed at all.
	Summary *Node

	// Owners is the full set of containers this panel's summary
	// utilization is computed over. For a per-node panel it mirrors
	// Children's containers; for the synthetic "all nodes" panel it
	// still holds every matching container across nodes even though
	// Children is empty (spec.md §4.1: "synthetic nodes expose only
	// summary ids" — no slot rows, but the aggregate curve still needs
	// the full owner set).
	Owners []state.Container
}

// Build constructs the entry tree from st, following spec.md §4.1's
// algorithm: collect present nodes, drop the synthetic "all nodes" key
// when there's only one, walk kind-groups in a stable order per node,
// skip entirely-empty nodes (and prune their processors from the
// synthetic aggregate), and assign short/long names and colors from the
// fixed kind table.
func Build(st *state.State) *Node {
	root := &Node{ID: ids.RootEntryID, ShortName: "root", LongName: "All Nodes", IsPanel: true}

	nodes := st.NodeSet()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	keys := make([]NodeKey, 0, len(nodes)+1)
	if len(nodes) > 1 {
		keys = append(keys, NodeKey{IsAll: true})
	}
	for _, n := range nodes {
		keys = append(keys, NodeKey{Node: n})
	}

	childIdx := uint64(0)
	for _, key := range keys {
		if !key.IsAll && !st.NodeHasNonEmptyProc(key.Node) {
			continue
		}
		nodeID := root.ID.Child(childIdx)
		childIdx++
		nodeNode := buildNodeBranch(st, key, nodeID)
		root.Children = append(root.Children, nodeNode)
	}
	return root
}

func buildNodeBranch(st *state.State, key NodeKey, id ids.EntryID) *Node {
	label := nodeLabel(key)
	branch := &Node{ID: id, ShortName: label, LongName: label, IsPanel: true}

	var idx uint64
	for _, gk := range sortedProcKinds(st, key) {
		procs := selectProcs(st, key, gk)
		if len(procs) == 0 {
			continue
		}
		branch.Children = append(branch.Children, buildProcKindPanel(st, key, gk, procs, id.Child(idx)))
		idx++
	}
	for _, gk := range sortedMemKinds(st, key) {
		mems := selectMems(st, key, gk)
		if len(mems) == 0 {
			continue
		}
		branch.Children = append(branch.Children, buildMemKindPanel(st, key, gk, mems, id.Child(idx)))
		idx++
	}
	if chans := selectChans(st, key, st.GroupChans()); len(chans) > 0 {
		branch.Children = append(branch.Children, buildChanPanel(st, key, "Channel", chans, id.Child(idx)))
		idx++
	}
	if deps := selectChans(st, key, st.GroupDepParts()); len(deps) > 0 {
		branch.Children = append(branch.Children, buildChanPanel(st, key, "Dependent Partition", deps, id.Child(idx)))
		idx++
	}
	return branch
}

func nodeLabel(key NodeKey) string {
	if key.IsAll {
		return "All Nodes"
	}
	return fmt.Sprintf("Node %d", key.Node)
}

func sortedProcKinds(st *state.State, key NodeKey) []state.ProcKind {
	seen := make(map[state.ProcKind]bool)
	for gk := range st.GroupProcs() {
		if key.IsAll || gk.Node == key.Node {
			seen[gk.Kind] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(seen map[state.ProcKind]bool) []state.ProcKind {
	out := make([]state.ProcKind, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedMemKinds(st *state.State, key NodeKey) []state.MemKind {
	seen := make(map[state.MemKind]bool)
	for gk := range st.GroupMems() {
		if key.IsAll || gk.Node == key.Node {
			seen[gk.Kind] = true
		}
	}
	out := make([]state.MemKind, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func selectProcs(st *state.State, key NodeKey, kind state.ProcKind) []ids.ProcID {
	var out []ids.ProcID
	for gk, procs := range st.GroupProcs() {
		if gk.Kind != kind {
			continue
		}
		if !key.IsAll && gk.Node != key.Node {
			continue
		}
		if key.IsAll && !st.NodeHasNonEmptyProc(gk.Node) {
			continue
		}
		out = append(out, procs...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Node != out[j].Node {
			return out[i].Node < out[j].Node
		}
		return out[i].Local < out[j].Local
	})
	return out
}

func selectMems(st *state.State, key NodeKey, kind state.MemKind) []ids.MemID {
	var out []ids.MemID
	for gk, mems := range st.GroupMems() {
		if gk.Kind != kind {
			continue
		}
		if !key.IsAll && gk.Node != key.Node {
			continue
		}
		out = append(out, mems...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Node != out[j].Node {
			return out[i].Node < out[j].Node
		}
		return out[i].Local < out[j].Local
	})
	return out
}

func selectChans(st *state.State, key NodeKey, grouped map[ids.NodeID][]ids.ChanID) []ids.ChanID {
	if key.IsAll {
		var out []ids.ChanID
		for _, cs := range grouped {
			out = append(out, cs...)
		}
		return out
	}
	return grouped[key.Node]
}

// buildProcKindPanel builds a kind panel for a non-synthetic node (one
// slot per processor), or a summary-only panel for the synthetic "all
// nodes" aggregate (spec.md §4.1 step 3: "synthetic nodes expose only
// summary ids").
func buildProcKindPanel(st *state.State, key NodeKey, kind state.ProcKind, procs []ids.ProcID, id ids.EntryID) *Node {
	panel := &Node{
		ID:        id,
		ShortName: procKindLetter(kind),
		LongName:  procKindName(kind),
		Color:     procKindColor(kind),
		IsPanel:   true,
		Kind:      state.ContainerProc,
	}
	for _, pid := range procs {
		panel.Owners = append(panel.Owners, st.Procs[pid])
	}
	attachSummary(panel)
	if key.IsAll {
		return panel
	}
	for i, pid := range procs {
		ps := st.Procs[pid]
		suffix := deviceSuffix(kind)
		slot := &Node{
			ID:        id.Child(uint64(i)),
			ShortName: fmt.Sprintf("%s%d%s", procKindLetter(kind), i, suffix),
			LongName:  fmt.Sprintf("Node %d %s %d%s", pid.Node, procKindName(kind), i, suffix),
			Color:     procKindColor(kind),
			Kind:      state.ContainerProc,
			MaxRows:   ps.MaxLevels(state.AnyDevice) + 1,
			Container: ps,
			Owners:    []state.Container{ps},
		}
		panel.Children = append(panel.Children, slot)
	}
	return panel
}

func buildMemKindPanel(st *state.State, key NodeKey, kind state.MemKind, mems []ids.MemID, id ids.EntryID) *Node {
	panel := &Node{
		ID:        id,
		ShortName: memKindLetter(kind),
		LongName:  memKindName(kind),
		Color:     memKindColor(kind),
		IsPanel:   true,
		Kind:      state.ContainerMem,
	}
	for _, mid := range mems {
		panel.Owners = append(panel.Owners, st.Mems[mid])
	}
	attachSummary(panel)
	if key.IsAll {
		return panel
	}
	for i, mid := range mems {
		ms := st.Mems[mid]
		slot := &Node{
			ID:        id.Child(uint64(i)),
			ShortName: fmt.Sprintf("%s%d", memKindLetter(kind), i),
			LongName:  fmt.Sprintf("Node %d %s %d", mid.Node, memKindName(kind), i),
			Color:     memKindColor(kind),
			Kind:      state.ContainerMem,
			MaxRows:   ms.MaxLevels(state.AnyDevice) + 1,
			Container: ms,
			Owners:    []state.Container{ms},
		}
		panel.Children = append(panel.Children, slot)
	}
	return panel
}

func buildChanPanel(st *state.State, key NodeKey, label string, chans []ids.ChanID, id ids.EntryID) *Node {
	panel := &Node{ID: id, ShortName: label, LongName: label, Color: ids.ColorOrangeRed, IsPanel: true, Kind: state.ContainerChan}
	for _, cid := range chans {
		panel.Owners = append(panel.Owners, st.Chans[cid])
	}
	attachSummary(panel)
	if key.IsAll {
		return panel
	}
	for i, cid := range chans {
		cs := st.Chans[cid]
		name := chanSlotName(st, cid)
		slot := &Node{
			ID:        id.Child(uint64(i)),
			ShortName: name,
			LongName:  fmt.Sprintf("Node %d %s", cid.Node, name),
			Color:     ids.ColorOrangeRed,
			Kind:      state.ContainerChan,
			MaxRows:   cs.MaxLevels(state.AnyDevice) + 1,
			Container: cs,
			Owners:    []state.Container{cs},
		}
		panel.Children = append(panel.Children, slot)
	}
	return panel
}

// attachSummary hangs the panel's summary node off it: same color and
// owner set, addressed by the panel id's Summary() variant
// (spec.md §4.1: "Each panel carries a color-tagged summary child").
func attachSummary(panel *Node) {
	panel.Summary = &Node{
		ID:        panel.ID.Summary(),
		ShortName: "summary",
		LongName:  panel.LongName + " Summary",
		Color:     panel.Color,
		Kind:      panel.Kind,
		Owners:    panel.Owners,
	}
}

// chanSlotName encodes a channel's src/dst via "n{node}{mem_letter}{index}"
// pairs, with a fill/gather/scatter prefix (spec.md §4.1). The letter is
// each endpoint memory's own kind letter, so channels between
// differently-kinded memories stay distinguishable.
func chanSlotName(st *state.State, c ids.ChanID) string {
	prefix := ""
	switch c.Kind {
	case ids.ChanKindFill:
		prefix = "f "
	case ids.ChanKindGather:
		prefix = "g "
	case ids.ChanKindScatter:
		prefix = "s "
	}
	if c.Kind == ids.ChanKindDepPart {
		return fmt.Sprintf("dp n%d", c.Node)
	}
	return fmt.Sprintf("%sn%d%s%d->n%d%s%d", prefix,
		c.Src.Node, memLetterFor(st, c.Src), c.Src.Local,
		c.Dst.Node, memLetterFor(st, c.Dst), c.Dst.Local)
}

// memLetterFor resolves an endpoint memory's kind letter; an endpoint
// whose node's log was not loaded falls back to a generic "m" rather
// than failing (spec.md §7: missing data is never fatal).
func memLetterFor(st *state.State, id ids.MemID) string {
	if m, ok := st.Mems[id]; ok {
		return memKindLetter(m.DeviceKind)
	}
	return "m"
}

func deviceSuffix(kind state.ProcKind) string {
	switch kind {
	case state.ProcGPU:
		return " (GPU)"
	default:
		return ""
	}
}

func procKindLetter(k state.ProcKind) string {
	switch k {
	case state.ProcGPU:
		return "g"
	case state.ProcGPUHost:
		return "h"
	case state.ProcCPU:
		return "c"
	case state.ProcUtility:
		return "u"
	case state.ProcIO:
		return "i"
	case state.ProcOpenMP:
		return "o"
	case state.ProcProcGroup:
		return "p"
	case state.ProcProcSet:
		return "s"
	case state.ProcPython:
		return "y"
	default:
		return "?"
	}
}

func procKindName(k state.ProcKind) string {
	switch k {
	case state.ProcGPU:
		return "GPU"
	case state.ProcGPUHost:
		return "GPU Host"
	case state.ProcCPU:
		return "CPU"
	case state.ProcUtility:
		return "Utility"
	case state.ProcIO:
		return "I/O"
	case state.ProcOpenMP:
		return "OpenMP"
	case state.ProcProcGroup:
		return "Processor Group"
	case state.ProcProcSet:
		return "Processor Set"
	case state.ProcPython:
		return "Python"
	default:
		return "Unknown"
	}
}

func procKindColor(k state.ProcKind) ids.Color {
	switch k {
	case state.ProcGPU:
		return ids.ColorOliveDrab
	case state.ProcGPUHost:
		return ids.ColorOrangeRed
	case state.ProcCPU:
		return ids.ColorSteelBlue
	case state.ProcUtility:
		return ids.ColorCrimson
	case state.ProcIO, state.ProcOpenMP, state.ProcProcGroup, state.ProcProcSet:
		return ids.ColorOrangeRed
	case state.ProcPython:
		return ids.ColorOliveDrab
	default:
		return ids.ColorGray
	}
}

func memKindLetter(k state.MemKind) string {
	switch k {
	case state.MemGlobal:
		return "g"
	case state.MemZeroCopy:
		return "z"
	case state.MemL3:
		return "l3"
	case state.MemSystem:
		return "s"
	case state.MemHDF5:
		return "h"
	case state.MemL1:
		return "l1"
	case state.MemRegistered:
		return "r"
	case state.MemL2:
		return "l2"
	case state.MemGPUManaged:
		return "u"
	case state.MemSocket:
		return "k"
	case state.MemFile:
		return "f"
	case state.MemGPUDynamic:
		return "d"
	case state.MemFramebuffer:
		return "b"
	case state.MemDisk:
		return "q"
	default:
		return "?"
	}
}

func memKindName(k state.MemKind) string {
	switch k {
	case state.MemGlobal:
		return "Global Memory"
	case state.MemZeroCopy:
		return "Zero-Copy Memory"
	case state.MemL3:
		return "L3 Cache"
	case state.MemSystem:
		return "System Memory"
	case state.MemHDF5:
		return "HDF5 Memory"
	case state.MemL1:
		return "L1 Cache"
	case state.MemRegistered:
		return "Registered Memory"
	case state.MemL2:
		return "L2 Cache"
	case state.MemGPUManaged:
		return "GPU Managed Memory"
	case state.MemSocket:
		return "Socket Memory"
	case state.MemFile:
		return "File Memory"
	case state.MemGPUDynamic:
		return "GPU Dynamic Memory"
	case state.MemFramebuffer:
		return "Framebuffer Memory"
	case state.MemDisk:
		return "Disk Memory"
	default:
		return "Unknown Memory"
	}
}

func memKindColor(k state.MemKind) ids.Color {
	switch k {
	case state.MemGlobal, state.MemZeroCopy, state.MemL3:
		return ids.ColorCrimson
	case state.MemSystem, state.MemHDF5, state.MemL1:
		return ids.ColorOliveDrab
	case state.MemRegistered, state.MemL2, state.MemGPUManaged:
		return ids.ColorDarkMagenta
	case state.MemSocket, state.MemFile, state.MemGPUDynamic:
		return ids.ColorOrangeRed
	case state.MemFramebuffer:
		return ids.ColorBlue
	case state.MemDisk:
		return ids.ColorDarkGoldenrod
	default:
		return ids.ColorGray
	}
}

// Find walks the tree for the node matching id, including each panel's
// summary node (an id's summary bit participates in the comparison, so
// "root/0/0" and "root/0/0#summary" resolve to distinct nodes).
func Find(root *Node, id ids.EntryID) (*Node, bool) {
	if root.ID == id {
		return root, true
	}
	if root.Summary != nil && root.Summary.ID == id {
		return root.Summary, true
	}
	for _, c := range root.Children {
		if n, ok := Find(c, id); ok {
			return n, true
		}
	}
	return nil, false
}
