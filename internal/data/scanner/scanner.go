package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/penwyp/go-glider-monitor/internal/util"
)

// FileScanner finds IGC logs below a directory
type FileScanner struct {
	baseDir string
}

// NewFileScanner creates a new FileScanner instance
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{baseDir: baseDir}
}

// IsIGCFile reports whether path has the .igc extension, in any case.
func IsIGCFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), model.IGCExtension)
}

// Scan walks the directory tree and returns every IGC log path in lexical
// order. Hidden directories are skipped; unreadable entries are logged and
// skipped. A missing base directory is an error.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()

	info, err := os.Stat(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.baseDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", s.baseDir)
	}

	util.LogDebugf("Start scanning directory: %s", s.baseDir)

	var files []string
	dirCount, totalCount := 0, 0
	err = filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			util.LogDebugf("Skip entry (error): %s - %v", path, err)
			return nil
		}

		if d.IsDir() {
			if path != s.baseDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			dirCount++
			return nil
		}

		totalCount++
		if d.Type().IsRegular() && IsIGCFile(path) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)

	util.LogDebugf("File scan completed: duration %v, scanned %d directories, %d files, found %d IGC files",
		time.Since(start), dirCount, totalCount, len(files))

	return files, err
}
