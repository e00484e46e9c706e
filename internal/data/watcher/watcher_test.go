package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, fw *FileWatcher) model.FileEvent {
	t.Helper()
	select {
	case ev := <-fw.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a file event")
		return model.FileEvent{}
	}
}

func assertNoEvent(t *testing.T, fw *FileWatcher, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-fw.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(wait):
	}
}

func TestFileWatcherReportsIGCFiles(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher([]string{dir}, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { fw.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	path := filepath.Join(dir, "flight.igc")
	require.NoError(t, os.WriteFile(path, []byte("AXXX\r\n"), 0644))

	ev := nextEvent(t, fw)
	assert.Equal(t, path, ev.Path)
	assert.Contains(t, []string{model.FileOpCreate, model.FileOpWrite}, ev.Operation)
	assertNoEvent(t, fw, 200*time.Millisecond)

	require.NoError(t, os.Remove(path))
	ev = nextEvent(t, fw)
	assert.Equal(t, model.FileEvent{Path: path, Operation: model.FileOpRemove}, ev)
}

func TestFileWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher([]string{dir}, 200*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { fw.Close() })

	path := filepath.Join(dir, "download.IGC")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("B1000003613800N13926400EA0120001250\r\n")
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	ev := nextEvent(t, fw)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, model.FileOpWrite, ev.Operation)
	assertNoEvent(t, fw, 400*time.Millisecond)
}

func TestFileWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher([]string{dir}, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { fw.Close() })

	sub := filepath.Join(dir, "2024")
	require.NoError(t, os.Mkdir(sub, 0755))
	// the watch on sub is added asynchronously
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(sub, "flight.igc")
	require.NoError(t, os.WriteFile(path, []byte("AXXX\r\n"), 0644))

	assert.Equal(t, path, nextEvent(t, fw).Path)
}

func TestFileWatcherReportsLogsInMovedDirectory(t *testing.T) {
	dir := t.TempDir()
	staging := filepath.Join(t.TempDir(), "2024-05-04")
	require.NoError(t, os.MkdirAll(filepath.Join(staging, "club"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "a.igc"), []byte("AXXX\r\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "club", "b.IGC"), []byte("AXXX\r\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "notes.txt"), []byte("x"), 0644))

	fw, err := NewFileWatcher([]string{dir}, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { fw.Close() })

	moved := filepath.Join(dir, "2024-05-04")
	require.NoError(t, os.Rename(staging, moved))

	assert.Equal(t, model.FileEvent{Path: filepath.Join(moved, "a.igc"), Operation: model.FileOpCreate}, nextEvent(t, fw))
	assert.Equal(t, model.FileEvent{Path: filepath.Join(moved, "club", "b.IGC"), Operation: model.FileOpCreate}, nextEvent(t, fw))
	assertNoEvent(t, fw, 200*time.Millisecond)
}

func TestNewFileWatcherMissingDirectory(t *testing.T) {
	_, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "missing")}, 0)
	assert.Error(t, err)
}

func TestFileWatcherClose(t *testing.T) {
	fw, err := NewFileWatcher([]string{t.TempDir()}, 0)
	require.NoError(t, err)

	require.NoError(t, fw.Close())
	require.NoError(t, fw.Close())

	_, ok := <-fw.Events()
	assert.False(t, ok)
}
