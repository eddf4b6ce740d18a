// Package atomicfile writes files durably via write-temp-then-rename,
// the pattern the thread index and coordinator cursor state both rely
// on so a crash mid-write never leaves a half-written file in place.
package atomicfile

import (
	"os"
	"path/filepath"
)

// Write creates a temp file in the same directory as path, writes
// data to it, syncs it, and renames it over path. The same-directory
// temp file keeps the rename on one filesystem, which POSIX guarantees
// is atomic.
func Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
