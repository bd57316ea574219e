package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetupLevels(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	logger, err := Setup(Options{Level: "warn", AppName: "docwriter", AppVersion: "test"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.Same(t, logger, Logger)
	assert.Same(t, logger, zap.L())

	logger, err = Setup(Options{Debug: true, Level: "error"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestSetupInvalidLevel(t *testing.T) {
	_, err := Setup(Options{Level: "loud"})
	assert.ErrorContains(t, err, `"loud"`)
}

func TestSetupWritesLogFile(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })
	path := filepath.Join(t.TempDir(), "logs", "docwriter.log")

	logger, err := Setup(Options{AppName: "docwriter", AppVersion: "1.2.3", FilePath: path, MaxSizeMB: 1})
	require.NoError(t, err)
	logger.Info("Document created successfully", zap.String("output", "out.md"))
	logger.Debug("not written")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg":"Document created successfully"`)
	assert.Contains(t, lines[0], `"appVersion":"1.2.3"`)
	assert.Contains(t, lines[0], `"output":"out.md"`)
}
