package wb

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempDir is the scratch directory for the intermediate files of one run
type TempDir struct {
	Path string
	keep bool
}

// NewTempDir creates a scratch directory under base (the system default when empty).
// When keep is set, Close leaves the directory in place.
func NewTempDir(base string, keep bool) (*TempDir, error) {
	path, err := os.MkdirTemp(base, "meants_")
	if err != nil {
		return nil, fmt.Errorf("[wb] failed to create temp dir: %w", err)
	}
	return &TempDir{Path: path, keep: keep}, nil
}

// File returns the path of name inside the scratch directory
func (d *TempDir) File(name string) string {
	return filepath.Join(d.Path, name)
}

// Close removes the scratch directory and everything in it
func (d *TempDir) Close() error {
	if d.keep {
		return nil
	}
	return os.RemoveAll(d.Path)
}
