package util

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

const fingerprintWindow = 2048

// CalculateFileFingerprint returns a CRC32 over the first and last 2KB of a
// file. IGC logs carry their header at the top and the security record at the
// bottom, so edits to either end change the fingerprint.
func CalculateFileFingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}
	size := stat.Size()

	hash := crc32.NewIEEE()
	head := min(size, fingerprintWindow)
	if _, err := io.Copy(hash, io.NewSectionReader(file, 0, head)); err != nil {
		return "", err
	}
	if size > head {
		tailStart := max(head, size-fingerprintWindow)
		if _, err := io.Copy(hash, io.NewSectionReader(file, tailStart, size-tailStart)); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%08x", hash.Sum32()), nil
}
