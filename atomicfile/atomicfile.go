// Package atomicfile writes files through a temporary sibling that is
// renamed into place on Close, so readers never observe partial output.
package atomicfile

import (
	"os"
	"path/filepath"
)

// File is a write only file that moves into its final location on Close.
type File struct {
	tmp  *os.File
	path string
}

// New creates a temporary file next to path, ready for writing.
func New(path string) (*File, error) {
	dir, base := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &File{tmp: tmp, path: path}, nil
}

func (f *File) Write(p []byte) (int, error) {
	return f.tmp.Write(p)
}

// Close flushes the temporary file and renames it to the target path.
func (f *File) Close() error {
	if err := f.tmp.Close(); err != nil {
		return err
	}
	return os.Rename(f.tmp.Name(), f.path)
}

// Abort discards the temporary file without touching the target.
func (f *File) Abort() {
	_ = f.tmp.Close()
	_ = os.Remove(f.tmp.Name())
}
