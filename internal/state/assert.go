package state

import (
	"fmt"
	"os"
)

// debugEnabled mirrors the teacher's BD_DEBUG gate: assertions here are a
// developer aid for catching a malformed state early, not a
// recoverable runtime error path (see spec.md §7).
var debugEnabled = os.Getenv("PROFVIEWER_DEBUG") != ""

// assert panics with a formatted message if cond is false and
// PROFVIEWER_DEBUG is set. Outside of debug builds this is a no-op,
// mirroring the original's #[cfg(debug_assertions)] guards — the core
// assumes a well-formed, finalized state and treats violations as
// programming errors, not input to validate defensively in production.
func assert(cond bool, format string, args ...any) {
	if !debugEnabled || cond {
		return
	}
	panic(fmt.Sprintf("assertion failed: "+format, args...))
}
