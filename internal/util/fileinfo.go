package util

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileInfo contains the attributes the flight cache validates against.
type FileInfo struct {
	ModTime int64  // modification time, unix nanoseconds
	Size    int64  // bytes
	Inode   uint64 // changes when a recorder download replaces the file
}

// GetFileInfo stats path, including its inode number.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return &FileInfo{
		ModTime: stat.ModTime().UnixNano(),
		Size:    stat.Size(),
		Inode:   uint64(st.Ino),
	}, nil
}
