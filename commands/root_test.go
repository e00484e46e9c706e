package commands

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/penwyp/go-glider-monitor/internal/core/motion"
	"github.com/penwyp/go-glider-monitor/internal/testing/fixtures"
	"github.com/penwyp/go-glider-monitor/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected func(string) string
	}{
		{
			name:  "home directory expansion",
			input: "~/test/path",
			expected: func(home string) string {
				return filepath.Join(home, "test/path")
			},
		},
		{
			name:  "absolute path unchanged",
			input: "/absolute/path",
			expected: func(home string) string {
				return "/absolute/path"
			},
		},
		{
			name:  "relative path converted to absolute",
			input: "relative/path",
			expected: func(home string) string {
				abs, _ := filepath.Abs("relative/path")
				return abs
			},
		},
	}

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			expected := tt.expected(home)
			assert.Equal(t, expected, result)
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test", "nested", "dir")

	err := ensureDir(testDir)
	assert.NoError(t, err)

	// Verify directory was created
	info, err := os.Stat(testDir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())

	// Test idempotency
	err = ensureDir(testDir)
	assert.NoError(t, err)
}

func TestClearCache(t *testing.T) {
	tempDir := t.TempDir()

	// Create test files
	jsonFile1 := filepath.Join(tempDir, "cache1.json")
	jsonFile2 := filepath.Join(tempDir, "cache2.json")
	otherFile := filepath.Join(tempDir, "other.txt")

	require.NoError(t, os.WriteFile(jsonFile1, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(jsonFile2, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(otherFile, []byte("data"), 0644))

	// Clear cache
	err := clearCache(tempDir)
	assert.NoError(t, err)

	// Verify only JSON files were removed
	_, err = os.Stat(jsonFile1)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(jsonFile2)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(otherFile)
	assert.NoError(t, err)
}

func TestClearCacheNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	nonExistentDir := filepath.Join(tempDir, "nonexistent")

	// Should not error on non-existent directory
	err := clearCache(nonExistentDir)
	assert.NoError(t, err)
}

func TestRootCommandFlags(t *testing.T) {
	tests := []struct {
		flag         string
		defaultValue string
		shorthand    string
	}{
		{"dir", defaultDataDir, ""},
		{"cache-dir", defaultCacheDir, ""},
		{"group-by", "flight", ""},
		{"output", "table", "o"},
		{"limit", "0", ""},
		{"reset", "false", "r"},
		{"timezone", "Local", ""},
		{"altitude", "gnss", ""},
		{"window", "40", ""},
		{"turn-threshold", "300", ""},
		{"sign-tolerance", "0.2", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := rootCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag)
			assert.Equal(t, tt.defaultValue, flag.DefValue)
			if tt.shorthand != "" {
				assert.Equal(t, tt.shorthand, flag.Shorthand)
			}
		})
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"export", "watch"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	// analysis settings are shared with subcommands
	assert.NotNil(t, exportCmd.InheritedFlags().Lookup("window"))
	assert.NotNil(t, watchCmd.InheritedFlags().Lookup("altitude"))
}

func TestFormatFlagAlias(t *testing.T) {
	assert.NotNil(t, rootCmd.Flags().Lookup("format"))
	assert.NotNil(t, rootCmd.Flags().Lookup("output"))
}

// execute runs the CLI with analysis settings back at their defaults and
// logging and caching redirected into a temp dir.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	windowSize = motion.DefaultWindowSize
	turnThreshold = motion.DefaultTurnThreshold
	signTolerance = motion.DefaultSignTolerance
	altitudeSource = model.AltitudeGNSS
	limit = 0
	reset = false
	t.Cleanup(func() { util.SetLogger(nil) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args,
		"--cache-dir", filepath.Join(home, "cache"),
		"--log-file", filepath.Join(home, "logs", "app.log"),
	))
	err := rootCmd.Execute()
	return out.String(), err
}

var may4 = time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)

func writeSampleLogs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, date := range []time.Time{may4, may4.AddDate(0, 0, 1)} {
		b, _ := fixtures.SampleFlight(date)
		_, err := b.WriteFile(dir, date.Format("2006-01-02")+".igc")
		require.NoError(t, err)
	}
	return dir
}

func TestRunAnalyzeCSVByDay(t *testing.T) {
	dir := writeSampleLogs(t)

	out, err := execute(t, "--dir", dir, "--output", "csv", "--group-by", "day", "--timezone", "UTC")

	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Day", records[0][0])
	assert.Equal(t, "2024-05-04", records[1][0])
	assert.Equal(t, "2024-05-05", records[2][0])
}

func TestRunAnalyzeRejectsBadSettings(t *testing.T) {
	dir := writeSampleLogs(t)
	tests := []struct {
		name string
		args []string
	}{
		{"output", []string{"--output", "xml"}},
		{"grouping", []string{"--group-by", "week"}},
		{"altitude", []string{"--altitude", "baro"}},
		{"window", []string{"--window", "1"}},
		{"tolerance", []string{"--sign-tolerance", "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"--dir", dir, "--output", "table", "--group-by", "flight"}, tt.args...)...)
			assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
		})
	}
}

func TestRunAnalyzeMissingDirectory(t *testing.T) {
	_, err := execute(t, "--dir", filepath.Join(t.TempDir(), "nope"), "--output", "table", "--group-by", "flight")
	assert.Error(t, err)
}
