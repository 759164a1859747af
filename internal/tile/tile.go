// Package tile builds the concrete rendered items for a slot tile: per
// level, it filters the container's stacked time points to the query
// window, expands sub-pixel entries to a minimum visible width, merges
// adjacent tiny entries into a single "Merged Tasks" item, and shades
// waiter sub-intervals by status (spec.md §4.4, the central ~35% of the
// engine).
package tile

import (
	"fmt"
	"os"
	"sort"

	"github.com/legion-prof/profviewer/internal/config"
	"github.com/legion-prof/profviewer/internal/fieldschema"
	"github.com/legion-prof/profviewer/internal/ids"
	"github.com/legion-prof/profviewer/internal/state"
)

// TileID names one tile request: the queried interval.
type TileID struct {
	Interval ids.Interval
}

// Item is one rendered rectangle on the timeline.
type Item struct {
	ItemUID  ids.ProfUID
	Interval ids.Interval
	Color    ids.Color
}

// ItemLink is a viewer-navigable cross-reference (spec.md §4.5/§6).
type ItemLink struct {
	ItemUID  ids.ProfUID
	Title    string
	Interval ids.Interval
	EntryID  ids.EntryID
}

// FieldValueKind tags the payload variant a FieldValue carries
// (spec.md §6: Empty, U64, String, Interval, ItemLink, Vec).
type FieldValueKind int

const (
	FieldEmpty FieldValueKind = iota
	FieldU64
	FieldString
	FieldInterval
	FieldLink
	FieldVec
)

// FieldValue is one tagged field payload.
type FieldValue struct {
	Kind     FieldValueKind
	U64      uint64
	Str      string
	Interval ids.Interval
	Link     *ItemLink
	Vec      []FieldValue
}

func EmptyValue() FieldValue          { return FieldValue{Kind: FieldEmpty} }
func U64Value(n uint64) FieldValue    { return FieldValue{Kind: FieldU64, U64: n} }
func StringValue(s string) FieldValue { return FieldValue{Kind: FieldString, Str: s} }
func LinkValue(l ItemLink) FieldValue { return FieldValue{Kind: FieldLink, Link: &l} }

func IntervalValue(i ids.Interval) FieldValue {
	return FieldValue{Kind: FieldInterval, Interval: i}
}

func VecValue(vs []FieldValue) FieldValue { return FieldValue{Kind: FieldVec, Vec: vs} }

// StringsValue wraps a list of plain strings as a Vec of String fields.
func StringsValue(ss []string) FieldValue {
	vs := make([]FieldValue, len(ss))
	for i, s := range ss {
		vs[i] = StringValue(s)
	}
	return VecValue(vs)
}

// MetaField is one (FieldID, value) pair attached to an ItemMeta, with an
// optional severity color (spec.md §4.5).
type MetaField struct {
	ID       fieldschema.FieldID
	Value    FieldValue
	Color    ids.Color
	HasColor bool
}

// ItemMeta carries the descriptive fields attached to an Item when a
// slot-meta tile (rather than a plain slot tile) is requested.
type ItemMeta struct {
	ItemUID          ids.ProfUID
	Title            string
	OriginalInterval ids.Interval
	Fields           []MetaField
}

// ItemInfo is what the metadata callback learns about the item being
// emitted: the entry's full interval and whether the item was expanded
// for visibility.
type ItemInfo struct {
	PointInterval ids.Interval
	Expanded      bool
}

// Waiter status opacities (spec.md §4.4).
const (
	opacityRunning = 1.0
	opacityWaiting = 0.15
	opacityReady   = 0.45
)

// Builder builds item stacks for one container against one tile request.
// The three callbacks, when non-nil, populate slot-meta tiles: MetaFn
// builds the base metadata per entry; WaitFieldsFn contributes the extra
// fields of a waiting sub-item (callee, backtrace, waited-on event);
// ReadyFieldsFn contributes the extra fields of a ready sub-item
// (previous-executing link, scheduling overhead). All nil means a plain
// slot tile.
type Builder struct {
	Cfg           config.EngineConfig
	Full          bool
	MetaFn        func(e *state.ContainerEntry, info ItemInfo) ItemMeta
	WaitFieldsFn  func(w *state.Waiter, interval ids.Interval) []MetaField
	ReadyFieldsFn func(interval ids.Interval) []MetaField
}

// NewBuilder constructs a Builder with the given engine tunables.
func NewBuilder(cfg config.EngineConfig, full bool) *Builder {
	return &Builder{Cfg: cfg, Full: full}
}

var debugEnabled = os.Getenv("PROFVIEWER_DEBUG") != ""

// BuildLevel builds the Item/ItemMeta stack for one level of a
// container, following spec.md §4.4's per-level algorithm: window
// selection, expansion, merging, and waiter status shading. Safe to call
// concurrently for distinct levels; all state is local.
func (b *Builder) BuildLevel(st *state.State, container state.Container, refs []state.EntryRef, tileID TileID) ([]Item, []ItemMeta) {
	qs, qe := tileID.Interval.Start, tileID.Interval.Stop
	tileWidth := float64(qe - qs)

	first, last := windowBounds(container, refs, qs, qe)
	if debugEnabled {
		assertOutsideWindow(container, refs[:first], tileID.Interval)
		assertOutsideWindow(container, refs[last:], tileID.Interval)
	}
	window := refs[first:last]

	// items/metas hold pointers, not values: the loop keeps a pointer to
	// the most recent item so expansion/merging can mutate it in place,
	// and a []Item would invalidate that pointer on every reallocating
	// append.
	var items []*Item
	var metas []*ItemMeta
	merged := 0

	for _, ref := range window {
		if !ref.First {
			continue
		}
		entry, ok := container.Entry(ref.ProfUID)
		if !ok || !entry.TimeRange.HasStop {
			continue
		}
		pointInterval := entry.TimeRange.Interval()
		viewInterval := pointInterval.Intersection(tileID.Interval)

		expanded := false
		if !b.Full {
			expanded = b.expandItem(&viewInterval, tileWidth, lastItem(items), merged)
		}

		if last := lastItem(items); last != nil {
			if b.mergeItems(viewInterval, tileWidth, qe, last, lastMeta(metas), &merged) {
				continue
			}
		}

		color := entry.Color(st)
		var baseMeta *ItemMeta
		if b.MetaFn != nil {
			m := b.MetaFn(entry, ItemInfo{PointInterval: pointInterval, Expanded: expanded})
			baseMeta = &m
		}

		addItem := func(ivl ids.Interval, opacity float64, status fieldschema.FieldID, hasStatus bool, extra []MetaField) {
			if !ivl.Overlaps(tileID.Interval) {
				return
			}
			view := ivl.Intersection(tileID.Interval)
			items = append(items, &Item{
				ItemUID:  entry.ProfUID,
				Interval: view,
				Color:    ids.BlendOverWhite(color, opacity),
			})
			if baseMeta == nil {
				return
			}
			m := *baseMeta
			m.Fields = append([]MetaField(nil), baseMeta.Fields...)
			if hasStatus {
				m.Fields = insertField(m.Fields, 1, MetaField{ID: status, Value: IntervalValue(ivl)})
			}
			m.Fields = append(m.Fields, extra...)
			metas = append(metas, &m)
		}

		if len(entry.Waiters) > 0 {
			start := entry.TimeRange.Start
			for i := range entry.Waiters {
				w := &entry.Waiters[i]
				addItem(ids.NewInterval(start, w.Start), opacityRunning, fieldschema.FieldStatusRunning, true, nil)
				var waitExtra []MetaField
				if b.WaitFieldsFn != nil {
					waitExtra = b.WaitFieldsFn(w, ids.NewInterval(w.Start, w.Ready))
				}
				addItem(ids.NewInterval(w.Start, w.Ready), opacityWaiting, fieldschema.FieldStatusWaiting, true, waitExtra)
				var readyExtra []MetaField
				if b.ReadyFieldsFn != nil {
					readyExtra = b.ReadyFieldsFn(ids.NewInterval(w.Ready, w.End))
				}
				addItem(ids.NewInterval(w.Ready, w.End), opacityReady, fieldschema.FieldStatusReady, true, readyExtra)
				if w.End > start {
					start = w.End
				}
			}
			if start < entry.TimeRange.Stop {
				addItem(ids.NewInterval(start, entry.TimeRange.Stop), opacityRunning, fieldschema.FieldStatusRunning, true, nil)
			}
		} else {
			addItem(viewInterval, opacityRunning, 0, false, nil)
		}
	}

	outItems := make([]Item, len(items))
	for i, it := range items {
		outItems[i] = *it
	}
	outMetas := make([]ItemMeta, len(metas))
	for i, m := range metas {
		outMetas[i] = *m
	}
	return outItems, outMetas
}

// expandItem re-centers a sub-pixel interval to the minimum width the
// MaxRatio constant allows, then — unless a merge chain is in progress,
// in which case overlap continues the chain — shifts away from a large
// previous item to avoid visually overlapping it (spec.md §4.4 step 2).
// Reports whether the interval was expanded.
func (b *Builder) expandItem(ivl *ids.Interval, tileWidth float64, last *Item, merged int) bool {
	viewRatio := tileWidth / float64(ivl.DurationNs())
	if viewRatio <= float64(b.Cfg.MaxRatio) {
		return false
	}
	minDuration := tileWidth / float64(b.Cfg.MaxRatio)
	center := (float64(ivl.Start) + float64(ivl.Stop)) / 2.0
	start := ids.Timestamp(center - minDuration/2.0)
	*ivl = ids.NewInterval(start, start+ids.Timestamp(minDuration))

	if last != nil {
		lastRatio := tileWidth / float64(last.Interval.DurationNs())
		if ivl.Overlaps(last.Interval) && lastRatio < float64(b.Cfg.MinRatio) && merged == 0 {
			ivl.Start = last.Interval.Stop
		}
	}
	return true
}

// mergeItems absorbs a small overlapping item into the previous one,
// marking it gray and counting the originals in a num-items field; a
// large overlapping item instead trims the previous item's stop so the
// two stay distinct (spec.md §4.4 step 2, S3/S4). Reports whether the
// current item was absorbed; merged tracks the length of the running
// merge chain on this level and resets whenever no merge happens. A
// merged run's stop is capped at the tile boundary so a long chain of
// expanded absorptions cannot grow past the query window (spec.md §9).
func (b *Builder) mergeItems(ivl ids.Interval, tileWidth float64, qe ids.Timestamp, last *Item, lastMeta *ItemMeta, merged *int) bool {
	if last.Interval.Overlaps(ivl) {
		viewRatio := tileWidth / float64(ivl.DurationNs())
		if viewRatio < float64(b.Cfg.MinRatio) {
			last.Interval.Stop = ivl.Start
		} else {
			stop := ivl.Stop
			if stop > qe {
				stop = qe
			}
			last.Interval.Stop = stop
			last.Color = ids.ColorGray
			if lastMeta != nil {
				if len(lastMeta.Fields) > 0 && lastMeta.Fields[0].ID == fieldschema.FieldNumItems && lastMeta.Fields[0].Value.Kind == FieldU64 {
					lastMeta.Fields[0].Value.U64++
				} else {
					lastMeta.Title = "Merged Tasks"
					lastMeta.Fields = []MetaField{{ID: fieldschema.FieldNumItems, Value: U64Value(2)}}
				}
			}
			*merged++
			return true
		}
	}
	*merged = 0
	return false
}

// windowBounds implements spec.md §4.4 step 1: first is the index of the
// first ref whose interval could overlap [qs, qe), found by partition
// point on (stop-1) < qs; last extends it by partition point on
// start < qe.
func windowBounds(container state.Container, refs []state.EntryRef, qs, qe ids.Timestamp) (int, int) {
	first := sort.Search(len(refs), func(i int) bool {
		e, ok := container.Entry(refs[i].ProfUID)
		if !ok || !e.TimeRange.HasStop {
			return true
		}
		return !(e.TimeRange.Stop-1 < qs)
	})
	rest := refs[first:]
	extra := sort.Search(len(rest), func(i int) bool {
		e, ok := container.Entry(rest[i].ProfUID)
		if !ok {
			return true
		}
		return !(e.TimeRange.Start < qe)
	})
	return first, first + extra
}

// assertOutsideWindow checks that every excluded ref genuinely does not
// overlap the query interval, mirroring the original's debug-only
// point-overlap check.
func assertOutsideWindow(container state.Container, refs []state.EntryRef, query ids.Interval) {
	for _, ref := range refs {
		e, ok := container.Entry(ref.ProfUID)
		if !ok || !e.TimeRange.HasStop {
			continue
		}
		if e.TimeRange.Interval().Overlaps(query) {
			panic(fmt.Sprintf("point %v overlaps query %v outside the selected window", e.TimeRange.Interval(), query))
		}
	}
}

func lastItem(items []*Item) *Item {
	if len(items) == 0 {
		return nil
	}
	return items[len(items)-1]
}

func lastMeta(metas []*ItemMeta) *ItemMeta {
	if len(metas) == 0 {
		return nil
	}
	return metas[len(metas)-1]
}

func insertField(fields []MetaField, at int, f MetaField) []MetaField {
	if at > len(fields) {
		at = len(fields)
	}
	fields = append(fields, MetaField{})
	copy(fields[at+1:], fields[at:])
	fields[at] = f
	return fields
}
