// Package service is the tile service facade: it implements the four
// tile queries the viewer calls by dispatching to the engines in
// internal/entrytree, internal/step, internal/sampler, internal/tile,
// and internal/resolver (spec.md §4.7).
package service

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/legion-prof/profviewer/internal/config"
	"github.com/legion-prof/profviewer/internal/entrytree"
	"github.com/legion-prof/profviewer/internal/fieldschema"
	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/resolver"
	"github.com/legion-prof/profviewer/internal/sampler"
	"github.com/legion-prof/profviewer/internal/state"
	"github.com/legion-prof/profviewer/internal/step"
	"github.com/legion-prof/profviewer/internal/tile"
	"github.com/legion-prof/profviewer/internal/warning"
)

// DataSourceDescription names the logs this state was built from.
type DataSourceDescription struct {
	SourceLocators []string
}

// DataSourceInfo is the viewer's bootstrap payload (spec.md §6).
type DataSourceInfo struct {
	EntryInfo   *entrytree.Node
	Interval    ids.Interval
	FieldSchema []fieldschema.Descriptor
	TileSet     []string
	Warning     string
	HasWarning  bool
}

// UtilPoint mirrors sampler.UtilPoint at the service boundary.
type UtilPoint = sampler.UtilPoint

// SummaryTile is the utilization-curve response (spec.md §6).
type SummaryTile struct {
	EntryID ids.EntryID
	TileID  tile.TileID
	Util    []UtilPoint
}

// SlotTile lists concrete rendered items, one slice per level
// (spec.md §6).
type SlotTile struct {
	EntryID ids.EntryID
	TileID  tile.TileID
	Items   [][]tile.Item
}

// SlotMetaTile is a SlotTile plus per-item metadata.
type SlotMetaTile struct {
	EntryID ids.EntryID
	TileID  tile.TileID
	Items   [][]tile.Item
	Metas   [][]tile.ItemMeta
}

// Service is the facade: a finalized State, its built entry tree, the
// step-utilization cache, and engine tunables.
type Service struct {
	St       *state.State
	Tree     *entrytree.Node
	Cache    *step.Cache
	Cfg      config.EngineConfig
	Resolver *resolver.Resolver

	// containerIndex maps a container back to the EntryID of its tree
	// slot, built once from Tree so EntryIDFor lookups (used by the
	// resolver for cross-reference links) don't re-walk the tree.
	containerIndex map[state.Container]ids.EntryID
}

// New constructs a Service from a finalized State, building the entry
// tree and wiring the resolver's EntryID lookup.
func New(st *state.State, cfg config.EngineConfig) *Service {
	tree := entrytree.Build(st)
	s := &Service{
		St:             st,
		Tree:           tree,
		Cache:          step.NewCache(),
		Cfg:            cfg,
		containerIndex: indexContainers(tree),
	}
	s.Resolver = resolver.New(st, s.entryIDFor)
	return s
}

func indexContainers(root *entrytree.Node) map[state.Container]ids.EntryID {
	out := make(map[state.Container]ids.EntryID)
	var walk func(n *entrytree.Node)
	walk = func(n *entrytree.Node) {
		if n.Container != nil {
			out[n.Container] = n.ID
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func (s *Service) entryIDFor(kind state.ContainerKind, container state.Container) (ids.EntryID, bool) {
	id, ok := s.containerIndex[container]
	return id, ok
}

// FetchDescription returns the source locator list (spec.md §4.7).
func (s *Service) FetchDescription() DataSourceDescription {
	return DataSourceDescription{SourceLocators: s.St.SourceLocators}
}

// FetchInfo returns the entry tree, the padded global interval, the
// field schema, and an optional configuration warning (spec.md §4.7).
func (s *Service) FetchInfo() DataSourceInfo {
	msg := warning.Message(s.St.Config)
	return DataSourceInfo{
		EntryInfo:   s.Tree,
		Interval:    s.St.GlobalInterval(),
		FieldSchema: fieldschema.Schema(),
		Warning:     msg,
		HasWarning:  msg != "",
	}
}

// FetchSummaryTile computes (or retrieves cached) step utilization for
// entryID and windows it down to the tile's sample count (spec.md §4.7:
// "compute_sample_utilization(step_utilization(entry_id), tile_id.interval,
// full ? 4000 : 800)").
func (s *Service) FetchSummaryTile(entryID ids.EntryID, tileID tile.TileID, full bool) (SummaryTile, error) {
	node, ok := entrytree.Find(s.Tree, entryID)
	if !ok {
		return SummaryTile{}, fmt.Errorf("unknown entry id %s", entryID)
	}

	fn := s.Cache.GetOrCompute(entryID, func() step.Function {
		if node.Kind == state.ContainerMem {
			return step.ComputeMem(s.St, node.Owners, state.AnyDevice)
		}
		return step.Compute(s.St, node.Owners, state.AnyDevice, nil)
	})

	n := s.Cfg.PartialSampleCount
	if full {
		n = s.Cfg.FullSampleCount
	}
	points := sampler.ComputeSampleUtilization(fn, tileID.Interval, n)

	return SummaryTile{EntryID: entryID, TileID: tileID, Util: points}, nil
}

// FetchSlotTile dispatches by the resolved node's container kind to
// build per-level items (spec.md §4.7).
func (s *Service) FetchSlotTile(entryID ids.EntryID, tileID tile.TileID, full bool) (SlotTile, error) {
	node, ok := entrytree.Find(s.Tree, entryID)
	if !ok {
		return SlotTile{}, fmt.Errorf("unknown entry id %s", entryID)
	}
	if node.Container == nil {
		return SlotTile{}, fmt.Errorf("entry id %s is not a slot", entryID)
	}

	builder := tile.NewBuilder(s.Cfg, full)
	items, _ := s.buildLevels(builder, node.Container, tileID)
	return SlotTile{EntryID: entryID, TileID: tileID, Items: items}, nil
}

// FetchSlotMetaTile is FetchSlotTile plus per-item metadata, populated
// via the resolver (spec.md §4.7).
func (s *Service) FetchSlotMetaTile(entryID ids.EntryID, tileID tile.TileID, full bool) (SlotMetaTile, error) {
	node, ok := entrytree.Find(s.Tree, entryID)
	if !ok {
		return SlotMetaTile{}, fmt.Errorf("unknown entry id %s", entryID)
	}
	if node.Container == nil {
		return SlotMetaTile{}, fmt.Errorf("entry id %s is not a slot", entryID)
	}

	container := node.Container
	builder := tile.NewBuilder(s.Cfg, full)
	builder.MetaFn = s.metaFnFor(node.Kind, container)
	builder.WaitFieldsFn = s.waitFields
	builder.ReadyFieldsFn = func(ivl ids.Interval) []tile.MetaField {
		return s.readyFields(container, ivl)
	}

	items, metas := s.buildLevels(builder, container, tileID)
	return SlotMetaTile{EntryID: entryID, TileID: tileID, Items: items, Metas: metas}, nil
}

// buildLevels fans the per-level item construction out across an
// errgroup: levels stack independently (spec.md §4.4), so building them
// is embarrassingly parallel, which matters for memory panels with many
// concurrently-live rows.
func (s *Service) buildLevels(builder *tile.Builder, container state.Container, tileID tile.TileID) ([][]tile.Item, [][]tile.ItemMeta) {
	levels := container.TimePointsStacked(state.AnyDevice)
	items := make([][]tile.Item, len(levels))
	metas := make([][]tile.ItemMeta, len(levels))

	var g errgroup.Group
	for i, refs := range levels {
		i, refs := i, refs
		g.Go(func() error {
			its, ms := builder.BuildLevel(s.St, container, refs, tileID)
			items[i] = its
			metas[i] = ms
			return nil
		})
	}
	_ = g.Wait()
	return items, metas
}

// metaFnFor picks the per-kind metadata builder (spec.md §4.7:
// "dispatch by EntryKind to processor/memory/channel slot builder").
func (s *Service) metaFnFor(kind state.ContainerKind, container state.Container) func(*state.ContainerEntry, tile.ItemInfo) tile.ItemMeta {
	switch kind {
	case state.ContainerMem:
		return s.memMeta
	case state.ContainerChan:
		return s.chanMeta
	default:
		return func(e *state.ContainerEntry, info tile.ItemInfo) tile.ItemMeta {
			return s.procMeta(container, e, info)
		}
	}
}

func baseFields(info tile.ItemInfo) []tile.MetaField {
	var fields []tile.MetaField
	if info.Expanded {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldExpandedForVisibility, Value: tile.EmptyValue()})
	}
	fields = append(fields, tile.MetaField{ID: fieldschema.FieldInterval, Value: tile.IntervalValue(info.PointInterval)})
	return fields
}

func colored(id fieldschema.FieldID, v tile.FieldValue, c ids.Color, has bool) tile.MetaField {
	return tile.MetaField{ID: id, Value: v, Color: c, HasColor: has}
}

// procMeta builds the metadata for a processor-hosted entry: operation
// and instance links, provenance, the caller-or-creator/critical branch,
// mapper info, and the message-latency/deferred/delayed timing fields
// (spec.md §4.4's metadata list).
func (s *Service) procMeta(container state.Container, e *state.ContainerEntry, info tile.ItemInfo) tile.ItemMeta {
	r := s.Resolver
	fields := baseFields(info)

	if !e.Initiation.IsZero() {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldOperation, Value: r.OpLink(e.Initiation)})
	}
	if e.HasOpID {
		if op, ok := s.St.FindOp(e.OpID); ok {
			var insts []tile.FieldValue
			for _, inst := range op.InstUIDs {
				if v, ok := r.InstLink(inst, ""); ok {
					insts = append(insts, v)
				}
			}
			fields = append(fields, tile.MetaField{ID: fieldschema.FieldInsts, Value: tile.VecValue(insts)})
		}
	}
	if prov := e.Provenance(s.St); prov != "" {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldProvenance, Value: resolver.ParseProvenance(prov)})
	}

	fields = s.appendCreatorCritical(fields, e)

	if e.HasMapper {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldMapper, Value: tile.StringValue(e.MapperName)})
		procName := fmt.Sprintf("Node %d", e.MapperProc.Node)
		if p, ok := s.St.Procs[e.MapperProc]; ok {
			procName = fmt.Sprintf("Node %d %s %d", e.MapperProc.Node, p.DeviceKind, e.MapperProc.Local)
		}
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldMapperProc, Value: tile.StringValue(procName)})
	}

	tr := e.TimeRange
	if tr.HasCreate {
		if tr.HasSpawn {
			c, has := resolver.SelectIntervalColor(tr.Spawn, tr.Create)
			fields = append(fields, colored(fieldschema.FieldMessageLatency,
				tile.IntervalValue(ids.NewInterval(tr.Spawn, tr.Create)), c, has))
		}
		var c ids.Color
		var has bool
		if e.Category.IsMeta() {
			c, has = resolver.SelectIntervalColor(tr.Create, tr.Ready)
		} else {
			c, has = resolver.SelectDeferredColor(tr.Create, tr.Ready)
		}
		fields = append(fields, colored(fieldschema.FieldDeferredTime,
			tile.IntervalValue(ids.NewInterval(tr.Create, tr.Ready)), c, has))
	}
	{
		c, has := resolver.SelectIntervalColor(tr.Ready, tr.Start)
		fields = append(fields, colored(fieldschema.FieldDelayedTime,
			tile.IntervalValue(ids.NewInterval(tr.Ready, tr.Start)), c, has))
	}
	if prev, prevStart, prevStop, ok := container.FindPreviousExecutingEntry(tr.Ready, tr.Start, state.AnyDevice); ok {
		fields = append(fields, tile.MetaField{
			ID:    fieldschema.FieldPreviousExecuting,
			Value: s.Resolver.PreviousExecutingLink(prev, prevStart, prevStop),
		})
		c, has := resolver.SelectIntervalColor(prevStop, tr.Start)
		fields = append(fields, colored(fieldschema.FieldSchedulingOverhead,
			tile.IntervalValue(ids.NewInterval(prevStop, tr.Start)), c, has))
	}

	return tile.ItemMeta{
		ItemUID:          e.ProfUID,
		Title:            e.Name(s.St),
		OriginalInterval: info.PointInterval,
		Fields:           fields,
	}
}

// appendCreatorCritical implements the caller/creator/critical branch of
// spec.md §4.5 for processor entries: calls report their caller; other
// entries report creator and critical separately when creation preceded
// the critical trigger, or a red critical-creator link when the creator
// itself was the critical path (property 7, S5).
func (s *Service) appendCreatorCritical(fields []tile.MetaField, e *state.ContainerEntry) []tile.MetaField {
	r := s.Resolver

	if e.HasCreator {
		if e.Category.IsCall() {
			return append(fields, tile.MetaField{ID: fieldschema.FieldCaller, Value: r.ProcLink(e.Creator)})
		}
		hasCritical := false
		needCritical := s.St.HasCriticalPathData()
		if e.HasCritical {
			hasCritical = true
			if ev, ok := s.St.FindCriticalEntry(e.Critical); ok {
				// An unknown critical event is always reported as the
				// critical path so the user sees the missing data.
				if ev.Kind == state.EventUnknown || e.CreationTime <= ev.TriggerTime {
					fields = append(fields, tile.MetaField{
						ID:    fieldschema.FieldCreator,
						Value: r.CreatorLink(e.Creator, e.CreationTime),
					})
					cc, hasCC := resolver.SelectCriticalColor(ev)
					fields = append(fields, colored(fieldschema.FieldCritical, r.CriticalLink(e.Critical, ev), cc, hasCC))
					fields = s.appendTriggerTime(fields, ev, e.TimeRange.Ready)
					needCritical = false
				}
			}
		}
		if needCritical {
			// The creator itself is the critical path; red flags the
			// abnormal case where a critical event fired before the
			// entry even existed.
			f := tile.MetaField{ID: fieldschema.FieldCritical, Value: r.CriticalCreatorLink(e.Creator, e.CreationTime)}
			if hasCritical {
				f.Color, f.HasColor = ids.ColorRed, true
			}
			fields = append(fields, f)
		}
		return fields
	}

	if e.Category.IsTaskLike() && e.HasCritical {
		if ev, ok := s.St.FindCriticalEntry(e.Critical); ok {
			cc, hasCC := resolver.SelectCriticalColor(ev)
			fields = append(fields, colored(fieldschema.FieldCritical, r.CriticalLink(e.Critical, ev), cc, hasCC))
			fields = s.appendTriggerTime(fields, ev, e.TimeRange.Ready)
		}
	}
	return fields
}

// appendTriggerTime records the latency Realm took to observe a trigger
// (trigger_time -> ready), colored by the penalty scale (spec.md §4.5).
func (s *Service) appendTriggerTime(fields []tile.MetaField, ev *state.EventEntry, ready ids.Timestamp) []tile.MetaField {
	if ev.Kind == state.EventUnknown {
		return fields
	}
	c, has := resolver.SelectIntervalColor(ev.TriggerTime, ready)
	return append(fields, colored(fieldschema.FieldTriggerTime,
		tile.IntervalValue(ids.NewInterval(ev.TriggerTime, ready)), c, has))
}

// memMeta builds the metadata for an instance entry: size, operation
// link, provenance, and the three-way instance critical analysis — event
// trigger, creator, or waiting on prior deallocation (spec.md §4.5).
func (s *Service) memMeta(e *state.ContainerEntry, info tile.ItemInfo) tile.ItemMeta {
	r := s.Resolver
	fields := baseFields(info)

	if e.SizeBytes > 0 {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldSize, Value: tile.StringValue(sizeString(e.SizeBytes))})
	}
	if !e.Initiation.IsZero() {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldOperation, Value: r.OpLink(e.Initiation)})
	}
	if prov := e.Provenance(s.St); prov != "" {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldProvenance, Value: resolver.ParseProvenance(prov)})
	}

	// Three things can delay an instance creation: a slow precondition
	// trigger, a slow caller, or waiting for space to be freed.
	needCritical := s.St.HasCriticalPathData()
	if e.HasCritical {
		if ev, ok := s.St.FindCriticalEntry(e.Critical); ok {
			if ev.Kind == state.EventUnknown || e.CreationTime <= ev.TriggerTime {
				if e.HasCreator {
					fields = append(fields, tile.MetaField{
						ID:    fieldschema.FieldCreator,
						Value: r.CreatorLink(e.Creator, e.TimeRange.Create),
					})
				}
				cc, hasCC := resolver.SelectCriticalColor(ev)
				fields = append(fields, colored(fieldschema.FieldCritical, r.CriticalLink(e.Critical, ev), cc, hasCC))
				fields = s.appendTriggerTime(fields, ev, e.TimeRange.Ready)
				needCritical = false
			}
		}
	}
	if needCritical {
		if e.AllocatedImmediately {
			if e.HasCreator {
				fields = append(fields, tile.MetaField{
					ID:    fieldschema.FieldCritical,
					Value: r.CriticalCreatorLink(e.Creator, e.TimeRange.Create),
				})
			} else {
				fields = append(fields, colored(fieldschema.FieldCritical,
					tile.StringValue(fmt.Sprintf("Unknown creator at %s", e.TimeRange.Create)),
					ids.ColorBlue, true))
			}
		} else {
			fields = append(fields, colored(fieldschema.FieldCritical,
				tile.StringValue(fmt.Sprintf("Waiting for deallocation of other instances until %s", e.TimeRange.Ready)),
				ids.ColorGold, true))
			c, has := resolver.SelectIntervalColor(e.TimeRange.Create, e.TimeRange.Ready)
			fields = append(fields, colored(fieldschema.FieldDeferredTime,
				tile.IntervalValue(ids.NewInterval(e.TimeRange.Create, e.TimeRange.Ready)), c, has))
			if e.HasCreator {
				fields = append(fields, tile.MetaField{
					ID:    fieldschema.FieldCreator,
					Value: r.CreatorLink(e.Creator, e.TimeRange.Create),
				})
			}
		}
	}

	return tile.ItemMeta{
		ItemUID:          e.ProfUID,
		Title:            e.Name(s.St),
		OriginalInterval: info.PointInterval,
		Fields:           fields,
	}
}

// chanMeta builds the metadata for a channel-hosted entry: transfer
// requirements and size, operation link, provenance, the creator/critical
// pair, and the deferred/delayed timing fields (spec.md §4.5 channel
// extensions).
func (s *Service) chanMeta(e *state.ContainerEntry, info tile.ItemInfo) tile.ItemMeta {
	r := s.Resolver
	fields := baseFields(info)

	if len(e.ChanReqs) > 0 {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldChanReqs, Value: tile.StringsValue(e.ChanReqs)})
	}
	if e.SizeBytes > 0 {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldSize, Value: tile.StringValue(sizeString(e.SizeBytes))})
	}
	if !e.Initiation.IsZero() {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldOperation, Value: r.OpLink(e.Initiation)})
	}
	if prov := e.Provenance(s.St); prov != "" {
		fields = append(fields, tile.MetaField{ID: fieldschema.FieldProvenance, Value: resolver.ParseProvenance(prov)})
	}

	tr := e.TimeRange
	if e.HasCreator {
		ev, haveEv := (*state.EventEntry)(nil), false
		if e.HasCritical {
			ev, haveEv = s.St.FindCriticalEntry(e.Critical)
		}
		switch {
		case haveEv && ev.Kind != state.EventUnknown && ev.TriggerTime < e.CreationTime:
			// Created after the critical event triggered: the creation
			// itself was the critical path, which is abnormal.
			fields = append(fields, colored(fieldschema.FieldCritical,
				r.CriticalCreatorLink(e.Creator, e.CreationTime), ids.ColorRed, true))
		case haveEv:
			fields = append(fields, tile.MetaField{
				ID:    fieldschema.FieldCreator,
				Value: r.CreatorLink(e.Creator, e.CreationTime),
			})
			cc, hasCC := resolver.SelectCriticalColor(ev)
			fields = append(fields, colored(fieldschema.FieldCritical, r.CriticalLink(e.Critical, ev), cc, hasCC))
			fields = s.appendTriggerTime(fields, ev, tr.Ready)
		default:
			fields = append(fields, tile.MetaField{
				ID:    fieldschema.FieldCritical,
				Value: r.CriticalCreatorLink(e.Creator, e.CreationTime),
			})
		}
	} else if e.HasCritical {
		if ev, ok := s.St.FindCriticalEntry(e.Critical); ok {
			cc, hasCC := resolver.SelectCriticalColor(ev)
			fields = append(fields, colored(fieldschema.FieldCritical, r.CriticalLink(e.Critical, ev), cc, hasCC))
			fields = s.appendTriggerTime(fields, ev, tr.Ready)
		}
	}

	if tr.HasCreate {
		c, has := resolver.SelectDeferredColor(tr.Create, tr.Ready)
		fields = append(fields, colored(fieldschema.FieldDeferredTime,
			tile.IntervalValue(ids.NewInterval(tr.Create, tr.Ready)), c, has))
	}
	{
		c, has := resolver.SelectIntervalColor(tr.Ready, tr.Start)
		fields = append(fields, colored(fieldschema.FieldDelayedTime,
			tile.IntervalValue(ids.NewInterval(tr.Ready, tr.Start)), c, has))
	}

	return tile.ItemMeta{
		ItemUID:          e.ProfUID,
		Title:            e.Name(s.St),
		OriginalInterval: info.PointInterval,
		Fields:           fields,
	}
}

// waitFields builds the extra metadata of a waiting sub-item: the callee
// being waited on, the captured backtrace, and — when the wait names an
// event — a critical link for what the wait was blocked on
// (spec.md §4.4 status shading, §4.5 waiter links).
func (s *Service) waitFields(w *state.Waiter, ivl ids.Interval) []tile.MetaField {
	var out []tile.MetaField
	if w.HasCallee {
		out = append(out, tile.MetaField{ID: fieldschema.FieldCallee, Value: s.Resolver.ProcLink(w.Callee)})
	}
	if w.Backtrace != "" {
		out = append(out, tile.MetaField{ID: fieldschema.FieldBacktrace, Value: tile.StringValue(w.Backtrace)})
	}
	if w.HasEvent {
		if ev, ok := s.St.FindCriticalEntry(w.Event); ok {
			cc, hasCC := resolver.SelectCriticalColor(ev)
			out = append(out, colored(fieldschema.FieldCritical, s.Resolver.CriticalLink(w.Event, ev), cc, hasCC))
			if ev.Kind != state.EventUnknown {
				c, has := resolver.SelectIntervalColor(ev.TriggerTime, ivl.Stop)
				out = append(out, colored(fieldschema.FieldTriggerTime,
					tile.IntervalValue(ids.NewInterval(ev.TriggerTime, ivl.Stop)), c, has))
			}
		} else {
			msg := fmt.Sprintf("Waiting on unknown critical path event %#x from node %d. Please load the logfile from that node to see it.",
				w.Event.Raw, uint64(w.Event.Node))
			if w.Event.IsBarrier() {
				msg = fmt.Sprintf("Waiting on unknown critical path barrier %#x created on node %d. Please load the logfile from at least one node that arrives on this barrier to start determining a critical path.",
					w.Event.Raw, uint64(w.Event.Node))
			}
			out = append(out, colored(fieldschema.FieldCritical, tile.StringValue(msg), ids.ColorBlue, true))
		}
	}
	return out
}

// readyFields builds the extra metadata of a ready sub-item: the entry
// that was occupying the container until this one could resume, and the
// scheduling-overhead interval it implies (spec.md §4.5).
func (s *Service) readyFields(container state.Container, ivl ids.Interval) []tile.MetaField {
	prev, prevStart, prevStop, ok := container.FindPreviousExecutingEntry(ivl.Start, ivl.Stop, state.AnyDevice)
	if !ok {
		return nil
	}
	out := []tile.MetaField{{
		ID:    fieldschema.FieldPreviousExecuting,
		Value: s.Resolver.PreviousExecutingLink(prev, prevStart, prevStop),
	}}
	c, has := resolver.SelectIntervalColor(prevStop, ivl.Stop)
	out = append(out, colored(fieldschema.FieldSchedulingOverhead,
		tile.IntervalValue(ids.NewInterval(prevStop, ivl.Stop)), c, has))
	return out
}

func sizeString(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
