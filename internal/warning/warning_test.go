package warning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legion-prof/profviewer/internal/state"
	"github.com/legion-prof/profviewer/internal/warning"
)

func TestMessageEmptyForDefaultConfig(t *testing.T) {
	assert.Equal(t, "", warning.Message(state.RuntimeConfig{}))
}

func TestMessageNamesDetailedTiming(t *testing.T) {
	msg := warning.Message(state.RuntimeConfig{DetailedTimingEnabled: true})
	assert.Contains(t, msg, "detailed timing")
	assert.Contains(t, msg, "Extreme performance degradation")
}

func TestMessageJoinsExtraFlags(t *testing.T) {
	msg := warning.Message(state.RuntimeConfig{
		DetailedTimingEnabled: true,
		Extra:                 []string{"backtraces=1"},
	})
	assert.Contains(t, msg, "detailed timing, backtraces=1")
}
