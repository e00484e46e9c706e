package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileScannerScanEmptyDirectory(t *testing.T) {
	files, err := NewFileScanner(t.TempDir()).Scan()

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileScannerScanNonExistentDirectory(t *testing.T) {
	_, err := NewFileScanner(filepath.Join(t.TempDir(), "missing")).Scan()

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileScannerScanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight.igc")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := NewFileScanner(path).Scan()

	assert.ErrorContains(t, err, "not a directory")
}

func TestFileScannerScanWithIGCFiles(t *testing.T) {
	tempDir := t.TempDir()

	testFiles := []struct {
		path  string
		isIGC bool
	}{
		{"2024-05-04-XCT-001.igc", true},
		{"2024-05-05-XCT-002.IGC", true},
		{"notes.txt", false},
		{"flight.igc.bak", false},
		{"club/2023/7A4L1234.igc", true},
		{"club/2023/readme.md", false},
		{".trash/old.igc", false},
	}

	var expected []string
	for _, tf := range testFiles {
		full := filepath.Join(tempDir, tf.path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("AXXX\r\n"), 0644))
		if tf.isIGC {
			expected = append(expected, full)
		}
	}

	files, err := NewFileScanner(tempDir).Scan()

	require.NoError(t, err)
	assert.ElementsMatch(t, expected, files)
	assert.IsIncreasing(t, files)
}

func TestIsIGCFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.igc", true},
		{"a.IGC", true},
		{"/x/y/a.Igc", true},
		{"a.igcx", false},
		{"igc", false},
		{"a.kml", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIGCFile(tt.path))
		})
	}
}
