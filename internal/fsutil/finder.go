// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// FindFiles returns every regular file in fsys matching the doublestar
// pattern (e.g. "**/BUILD.hcl"), sorted lexically so that discovery order
// does not depend on the underlying directory listing.
func FindFiles(fsys fs.FS, pattern string) ([]string, error) {
	if pattern == "" {
		panic("pattern must not be empty")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	files, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %q: %w", pattern, err)
	}

	sort.Strings(files)
	return files, nil
}
