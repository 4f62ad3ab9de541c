package log_test

import (
	"testing"

	"github.com/on-the-ground/effect_ive_dispatch/effects/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	logger, err := log.New(log.LogWarn)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = log.New("")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := log.New("loud")
	assert.Error(t, err)
}

func TestNewTest_IsDebug(t *testing.T) {
	assert.True(t, log.NewTest().Core().Enabled(zapcore.DebugLevel))
}

func TestFields(t *testing.T) {
	fields := log.Fields(map[string]interface{}{"effect": "ping", "count": 2})
	assert.Len(t, fields, 2)
	assert.Empty(t, log.Fields(nil))
}
