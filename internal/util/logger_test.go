package util

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level string, format LogFormat) (*Logger, *bytes.Buffer) {
	logger, _ := NewLogger(LoggerOptions{Level: level})
	buf := &bytes.Buffer{}
	logger.AddOutput(NewConsoleOutput(buf, format))
	return logger, buf
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger("warn", FormatText)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warnf("warn %d", 1)
	logger.Error("error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "[WARN] warn 1")
	assert.Contains(t, out, "[ERROR] error line")
}

func TestLoggerTextFieldsAreSorted(t *testing.T) {
	logger, buf := newBufferLogger("debug", FormatText)

	logger.With(F("file", "a.igc")).Info("parsed", F("fixes", 440), F("circling", 1))

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasSuffix(line, "[INFO] parsed circling=1 file=a.igc fixes=440"), line)
}

func TestDerivedLoggerCloseKeepsParentOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(LoggerOptions{Level: "info", File: path})
	require.NoError(t, err)

	child := logger.With(F("path", "a.igc"))
	child.Info("from child")
	require.NoError(t, child.Close())
	child.Info("dropped after close")

	logger.Info("parent still writes")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] from child path=a.igc")
	assert.Contains(t, string(data), "[INFO] parent still writes")
	assert.NotContains(t, string(data), "dropped after close")
}

func TestGlobalWith(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() { With(F("k", "v")).Info("dropped") })

	logger, buf := newBufferLogger("info", FormatText)
	SetLogger(logger)
	t.Cleanup(func() { SetLogger(nil) })

	With(F("op", "create")).Warn("bad log", F("line", 2))
	assert.Contains(t, buf.String(), "[WARN] bad log line=2 op=create")
}

func TestLoggerJSONFormat(t *testing.T) {
	logger, buf := newBufferLogger("info", FormatJSON)

	logger.Info("cache miss", F("reason", "config"))

	var entry LogEntry
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "cache miss", entry.Message)
	assert.Equal(t, "config", entry.Fields["reason"])
}

func TestLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, err := NewLogger(LoggerOptions{Level: "info", File: path})
	require.NoError(t, err)
	logger.Info("written to disk")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] written to disk")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestGlobalLogger(t *testing.T) {
	logger, buf := newBufferLogger("debug", FormatText)
	SetLogger(logger)
	t.Cleanup(func() { SetLogger(nil) })

	LogDebugf("fixes=%d", 3)
	LogInfo("hello", F("k", "v"))
	LogWarn("careful")
	LogErrorf("failed: %s", "x")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] fixes=3")
	assert.Contains(t, out, "[INFO] hello k=v")
	assert.Contains(t, out, "[WARN] careful")
	assert.Contains(t, out, "[ERROR] failed: x")
}

func TestGlobalLoggerUnset(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		LogInfo("dropped")
		LogErrorf("dropped %d", 1)
	})
}
