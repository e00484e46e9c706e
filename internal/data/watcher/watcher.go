// Package watcher reports IGC logs appearing, changing or disappearing below
// a directory tree.
package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/penwyp/go-glider-monitor/internal/data/scanner"
	"github.com/penwyp/go-glider-monitor/internal/util"
)

// DefaultDebounce is how long a log must stay quiet before it is reported.
// Recorder downloads arrive as many small writes.
const DefaultDebounce = 500 * time.Millisecond

type FileWatcher struct {
	watcher   *fsnotify.Watcher
	events    chan model.FileEvent
	debounce  time.Duration
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewFileWatcher watches every directory below paths, including directories
// created later. Events for one file are coalesced until it has been quiet
// for debounce; the last operation wins.
func NewFileWatcher(paths []string, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw := &FileWatcher{
		watcher:  watcher,
		events:   make(chan model.FileEvent, 100),
		debounce: debounce,
		done:     make(chan struct{}),
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	fw.wg.Add(1)
	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		util.LogDebugf("Watching directory: %s", p)
		return fw.watcher.Add(p)
	})
}

// queueExisting marks every log below dir as created and returns how many
// were found.
func queueExisting(dir string, pending map[string]string) int {
	found := 0
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if scanner.IsIGCFile(p) {
			pending[p] = model.FileOpCreate
			found++
		}
		return nil
	})
	return found
}

func operation(op fsnotify.Op) (string, bool) {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return model.FileOpRemove, true
	case op.Has(fsnotify.Create):
		return model.FileOpCreate, true
	case op.Has(fsnotify.Write):
		return model.FileOpWrite, true
	default:
		return "", false
	}
}

func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	pending := make(map[string]string)
	timer := time.NewTimer(fw.debounce)
	timer.Stop()

	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				fw.flush(pending)
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addPath(event.Name); err != nil {
						util.LogWarnf("Failed to watch new directory %s: %v", event.Name, err)
					}
					// logs moved in with the directory never get their own event
					if queueExisting(event.Name, pending) > 0 {
						timer.Reset(fw.debounce)
					}
					continue
				}
			}

			if !scanner.IsIGCFile(event.Name) {
				continue
			}
			op, ok := operation(event.Op)
			if !ok {
				continue
			}
			pending[event.Name] = op
			timer.Reset(fw.debounce)

		case <-timer.C:
			fw.flush(pending)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

func (fw *FileWatcher) flush(pending map[string]string) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		select {
		case fw.events <- model.FileEvent{Path: path, Operation: pending[path]}:
		case <-fw.done:
			return
		}
		delete(pending, path)
	}
}

// Events delivers coalesced file events. It is closed by Close.
func (fw *FileWatcher) Events() <-chan model.FileEvent {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
		fw.wg.Wait()
		close(fw.events)
	})
	return err
}
