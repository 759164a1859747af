// Package warning builds the single-line runtime-configuration banner
// the viewer shows when the profiled run used a non-default, higher-
// overhead configuration (spec.md §4.6).
package warning

import (
	"fmt"
	"strings"

	"github.com/legion-prof/profviewer/internal/state"
)

// Message returns the banner text for cfg, or "" if every flag is at its
// default (no banner is shown in that case).
func Message(cfg state.RuntimeConfig) string {
	if !cfg.HasNonDefault() {
		return ""
	}
	var flags []string
	if cfg.DetailedTimingEnabled {
		flags = append(flags, "detailed timing")
	}
	flags = append(flags, cfg.Extra...)
	return fmt.Sprintf(
		"This profile was generated with %s. Extreme performance degradation may occur.",
		strings.Join(flags, ", "),
	)
}
