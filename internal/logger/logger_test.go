package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerInit(t *testing.T) {
	assert.NotNil(t, Log())

	require.NoError(t, InitDevelopment())
	assert.True(t, Log().Core().Enabled(zapcore.DebugLevel), "development logger should log debug messages")

	require.NoError(t, InitProduction())
	assert.False(t, Log().Core().Enabled(zapcore.DebugLevel), "production logger should not log debug messages")
	assert.True(t, Log().Core().Enabled(zapcore.InfoLevel))
	Sync()
}
