package shared

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger(&buf, "warn", false)
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown", "round", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "round=3")
}

func TestSetupLoggerDebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger(&buf, "error", true)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
}

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	_, err := SetupLogger(&buf, "chatty", false)
	assert.Error(t, err)
}
