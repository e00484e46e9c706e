package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flight.igc")
	require.NoError(t, os.WriteFile(path, []byte("AXXX\r\n"), 0644))

	info, err := GetFileInfo(path)
	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size)
	assert.NotZero(t, info.Inode)
	assert.NotZero(t, info.ModTime)

	_, err = GetFileInfo(filepath.Join(dir, "missing.igc"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = GetFileInfo(dir)
	assert.Error(t, err)
}

func TestCalculateFileFingerprint(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	body := strings.Repeat("B1000003613800N13926400EA0120001250\r\n", 300)
	a := write("a.igc", "HFDTEDATE:040524,01\r\n"+body+"GAAAA\r\n")
	b := write("b.igc", "HFDTEDATE:040524,01\r\n"+body+"GAAAA\r\n")
	header := write("c.igc", "HFDTEDATE:050524,01\r\n"+body+"GAAAA\r\n")
	tail := write("d.igc", "HFDTEDATE:040524,01\r\n"+body+"GBBBB\r\n")
	small := write("e.igc", "AXXX\r\n")
	empty := write("f.igc", "")

	fa, err := CalculateFileFingerprint(a)
	require.NoError(t, err)
	fb, err := CalculateFileFingerprint(b)
	require.NoError(t, err)
	fc, err := CalculateFileFingerprint(header)
	require.NoError(t, err)
	fd, err := CalculateFileFingerprint(tail)
	require.NoError(t, err)

	assert.Len(t, fa, 8)
	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc, "header change")
	assert.NotEqual(t, fa, fd, "security record change")

	_, err = CalculateFileFingerprint(small)
	assert.NoError(t, err)
	fe, err := CalculateFileFingerprint(empty)
	require.NoError(t, err)
	assert.Equal(t, "00000000", fe)

	_, err = CalculateFileFingerprint(filepath.Join(dir, "missing.igc"))
	assert.Error(t, err)
}
