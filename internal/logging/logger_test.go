package logging

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	assert.Equal(t, log.DebugLevel, New("debug").GetLevel())
	assert.Equal(t, log.InfoLevel, New("info").GetLevel())
	assert.Equal(t, log.WarnLevel, New("warning").GetLevel())
	assert.Equal(t, log.ErrorLevel, New("error").GetLevel())
	assert.Equal(t, log.InfoLevel, New("nonsense").GetLevel())
}

func TestDefaultLogger(t *testing.T) {
	logger := Default()
	require.NotNil(t, logger)
	assert.Same(t, logger, Default())

	SetLevel("debug")
	assert.Equal(t, log.DebugLevel, Default().GetLevel())
	SetLevel("info")
}
