package resolver

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/legion-prof/profviewer/internal/tile"
)

// ParseProvenance is best-effort JSON parsing of an entry's provenance
// string: if the input is a 2-element array [user, machine] with machine
// an object, it emits a Vec of "key: value" strings for the machine
// object; any other shape, or a parse failure, falls back to the raw
// string unchanged (spec.md §4.4, §6, §9 — "never an error").
func ParseProvenance(raw string) tile.FieldValue {
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &arr); err != nil || len(arr) != 2 {
		return tile.StringValue(raw)
	}

	var machine map[string]any
	if err := json.Unmarshal(arr[1], &machine); err != nil {
		return tile.StringValue(raw)
	}

	keys := make([]string, 0, len(machine))
	for k := range machine {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]tile.FieldValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, tile.StringValue(fmt.Sprintf("%s: %v", k, machine[k])))
	}
	return tile.VecValue(out)
}
