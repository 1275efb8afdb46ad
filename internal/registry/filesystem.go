package registry

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// FileChecker answers whether an overlay path names an existing file.
// A nil error with false means the file is missing; a non-nil error means
// the answer is unknown.
type FileChecker interface {
	Exists(path string) (bool, error)
}

// OSChecker checks paths on the host filesystem. Relative paths are
// resolved against Root, or the working directory when Root is empty.
type OSChecker struct {
	Root string
}

// Exists implements FileChecker.
func (c OSChecker) Exists(p string) (bool, error) {
	if !filepath.IsAbs(p) && c.Root != "" {
		p = filepath.Join(c.Root, p)
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// FSChecker checks paths inside an fs.FS. Paths that cannot exist in an
// fs.FS, such as absolute ones or ones escaping the root, are reported missing.
type FSChecker struct {
	FS fs.FS
}

// Exists implements FileChecker.
func (c FSChecker) Exists(p string) (bool, error) {
	name := path.Clean(filepath.ToSlash(p))
	if !fs.ValidPath(name) {
		return false, nil
	}
	info, err := fs.Stat(c.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
