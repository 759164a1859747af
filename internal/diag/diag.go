// Package diag is the tile engine's logging surface: an environment-
// gated writer to stderr, used for cache-miss tracing and other
// conditions worth surfacing during development but not on every
// production run. No structured-logging framework is pulled in — the
// engine logs the way the rest of this codebase does.
package diag

import (
	"fmt"
	"os"
)

var (
	enabled     = os.Getenv("PROFVIEWER_DEBUG") != ""
	verboseMode = false
	quietMode   = false
)

// Enabled reports whether debug logging is active, either via the
// PROFVIEWER_DEBUG environment variable or SetVerbose.
func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose force-enables debug output regardless of the environment.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet suppresses normal (non-debug) informational output.
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet reports whether quiet mode is enabled.
func IsQuiet() bool {
	return quietMode
}

// Logf writes a debug line to stderr, only when debug logging is active.
func Logf(format string, args ...any) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// PrintNormal prints to stdout unless quiet mode is enabled.
func PrintNormal(format string, args ...any) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}

// PrintlnNormal prints a line to stdout unless quiet mode is enabled.
func PrintlnNormal(args ...any) {
	if !quietMode {
		fmt.Println(args...)
	}
}
