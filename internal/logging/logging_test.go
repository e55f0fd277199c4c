package logging

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewSetsPrefix(t *testing.T) {
	l := New("render")
	assert.NotNil(t, l)
	assert.Equal(t, "render", l.GetPrefix())
}

func TestSetLevelParsesKnownLevels(t *testing.T) {
	SetLevel("debug")
	assert.Equal(t, log.DebugLevel, Default.GetLevel())

	SetLevel("warn")
	assert.Equal(t, log.WarnLevel, Default.GetLevel())

	SetLevel("info")
	assert.Equal(t, log.InfoLevel, Default.GetLevel())
}

func TestSetLevelFallsBackToInfoOnUnknown(t *testing.T) {
	SetLevel("warn")
	SetLevel("not-a-real-level")
	assert.Equal(t, log.InfoLevel, Default.GetLevel())
}
