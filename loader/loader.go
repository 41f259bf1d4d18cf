package loader

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/watlink/watlink/errors"
)

// Loader supplies source bytes for an import path. Canonicalize maps a path
// as written in the source to the identifier cycle detection keys on, so
// "./a.wat" and "a.wat" resolve to the same file exactly when they
// canonicalize to the same string.
type Loader interface {
	Canonicalize(path string) (string, error)
	Load(path string) ([]byte, error)
}

// FS loads files relative to a root directory.
type FS struct {
	root string
}

// NewFS creates a filesystem loader rooted at dir.
func NewFS(dir string) *FS {
	return &FS{root: dir}
}

func (l *FS) Canonicalize(path string) (string, error) {
	return filepath.Clean(filepath.Join(l.root, path)), nil
}

func (l *FS) Load(path string) ([]byte, error) {
	canonical, err := l.Canonicalize(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(canonical)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ImportNotFound(path, err)
		}
		return nil, errors.New(errors.PhaseLoad, errors.KindImportNotFound).Path(path).Cause(err).Detail("read %q", canonical).Build()
	}
	return data, nil
}

// FSDir adapts an fs.FS, mostly for tests that embed fixtures.
type FSDir struct {
	fsys fs.FS
}

func NewFSDir(fsys fs.FS) *FSDir {
	return &FSDir{fsys: fsys}
}

func (l *FSDir) Canonicalize(path string) (string, error) {
	return filepath.ToSlash(filepath.Clean(path)), nil
}

func (l *FSDir) Load(path string) ([]byte, error) {
	canonical, _ := l.Canonicalize(path)
	data, err := fs.ReadFile(l.fsys, canonical)
	if err != nil {
		return nil, errors.ImportNotFound(path, err)
	}
	return data, nil
}

// Map serves sources from memory, keyed by exact path. Used throughout the
// test suites in place of the filesystem.
type Map map[string]string

func (m Map) Canonicalize(path string) (string, error) {
	return path, nil
}

func (m Map) Load(path string) ([]byte, error) {
	src, ok := m[path]
	if !ok {
		return nil, errors.ImportNotFound(path, nil)
	}
	return []byte(src), nil
}
