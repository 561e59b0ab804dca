package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input     string
		want      zapcore.Level
		expectErr bool
	}{
		{input: "", want: zapcore.InfoLevel},
		{input: "debug", want: zapcore.DebugLevel},
		{input: "INFO", want: zapcore.InfoLevel},
		{input: "warn", want: zapcore.WarnLevel},
		{input: "error", want: zapcore.ErrorLevel},
		{input: "verbose", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInit_WritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "cryptonews.log")

	require.NoError(t, Init(Config{Level: "debug", File: logFile}))
	Infof("refresh cycle %d done", 1)
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refresh cycle 1 done")
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	err := Init(Config{Level: "chatty"})
	assert.Error(t, err)
}
