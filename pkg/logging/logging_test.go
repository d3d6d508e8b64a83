package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ssargent/dbcport/pkg/config"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name  string
		cfg   config.Logging
		level zapcore.Level
	}{
		{"defaults", config.Logging{}, zapcore.InfoLevel},
		{"json debug", config.Logging{Level: "debug", Format: "json"}, zapcore.DebugLevel},
		{"console warn", config.Logging{Level: "warn", Format: "console"}, zapcore.WarnLevel},
		{"upper case", config.Logging{Level: "ERROR", Format: "JSON"}, zapcore.ErrorLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.level))
			if tc.level > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tc.level-1))
			}
		})
	}
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.Logging{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
