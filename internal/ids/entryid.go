package ids

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EntryID names one node of the entry tree: a path of child indices from
// the root panel, plus a flag marking whether it addresses that panel's
// summary (aggregate utilization) rather than one of its slots.
//
// EntryID must be usable as a map key for the step-utilization cache, so
// it is a plain comparable struct — not a []uint64 — with the path
// pre-encoded into a string. Encoding the path up front also makes
// EntryID cheap to log and to use as a stable wire identifier.
type EntryID struct {
	path    string
	summary bool
}

// RootEntryID is the entry tree's root.
var RootEntryID = EntryID{}

// Child returns the entry one level down at child index i. Calling Child
// on a summary entry is a caller error: summaries are leaves of the
// addressing scheme, not branch points.
func (e EntryID) Child(i uint64) EntryID {
	var b strings.Builder
	b.WriteString(e.path)
	b.WriteByte('/')
	b.WriteString(strconv.FormatUint(i, 10))
	return EntryID{path: b.String()}
}

// Summary returns the summary (aggregate) entry for this panel.
func (e EntryID) Summary() EntryID {
	return EntryID{path: e.path, summary: true}
}

// IsSummary reports whether this entry addresses a panel's aggregate
// rather than one of its slots.
func (e EntryID) IsSummary() bool { return e.summary }

// Parent returns the entry one level up and reports whether one exists
// (the root has none).
func (e EntryID) Parent() (EntryID, bool) {
	path := e.path
	if e.summary {
		return EntryID{path: path}, true
	}
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return EntryID{}, false
	}
	return EntryID{path: path[:idx]}, true
}

// Depth returns the number of child-index hops from the root.
func (e EntryID) Depth() int {
	if e.path == "" {
		return 0
	}
	return strings.Count(e.path, "/")
}

func (e EntryID) String() string {
	p := "root"
	if e.path != "" {
		p = "root" + e.path
	}
	if e.summary {
		return p + "#summary"
	}
	return p
}

// MarshalJSON emits the String() wire form, so a serialized tile
// response carries navigable entry ids rather than opaque structs.
func (e EntryID) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON accepts the String() wire form.
func (e *EntryID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseEntryID(raw, false)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseEntryID parses the String() wire form ("root", "root/0/1",
// "root/0/1#summary") back into an EntryID, for callers (the demo CLI,
// test fixtures) that need to round-trip a displayed id. The forceSummary
// argument is ORed with a trailing "#summary" in raw, so either form
// addresses the summary entry.
func ParseEntryID(raw string, forceSummary bool) (EntryID, error) {
	summary := forceSummary
	if strings.HasSuffix(raw, "#summary") {
		summary = true
		raw = strings.TrimSuffix(raw, "#summary")
	}
	if !strings.HasPrefix(raw, "root") {
		return EntryID{}, strconvError(raw)
	}
	path := strings.TrimPrefix(raw, "root")
	if path != "" && path[0] != '/' {
		return EntryID{}, strconvError(raw)
	}
	if path != "/" {
		for _, part := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
			if part == "" {
				continue
			}
			if _, err := strconv.ParseUint(part, 10, 64); err != nil {
				return EntryID{}, err
			}
		}
	}
	return EntryID{path: path, summary: summary}, nil
}

func strconvError(raw string) error {
	return &strconv.NumError{Func: "ParseEntryID", Num: raw, Err: strconv.ErrSyntax}
}
