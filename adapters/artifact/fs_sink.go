package artifact

import (
	"context"
	"os"
	"path/filepath"

	"bioeq/internal/errors"
)

// FSSink writes run artifacts into an output directory
type FSSink struct {
	dir string
}

// NewFSSink creates a filesystem sink rooted at dir
func NewFSSink(dir string) *FSSink {
	return &FSSink{dir: dir}
}

// Write stores one artifact, creating the directory on first use
func (s *FSSink) Write(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", s.dir)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write artifact %s", path)
	}
	return nil
}

// Dir returns the sink's output directory
func (s *FSSink) Dir() string { return s.dir }
