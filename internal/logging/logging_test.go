package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radar.log")
	log, err := New(path, zapcore.InfoLevel, false)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("Beacon added", zap.String("uid", "AA:BB"))
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"uid":"AA:BB"`)
	assert.NotContains(t, string(raw), "hidden")
}

func TestNewWithoutOutputDiscards(t *testing.T) {
	log, err := New("", zapcore.DebugLevel, false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewConsole(t *testing.T) {
	log, err := New("", zapcore.WarnLevel, true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewBadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "radar.log"), zapcore.InfoLevel, false)
	assert.Error(t, err)
}
