package afs

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

const (
	DEFAULT_DIR_PERM  = 0o755
	DEFAULT_FILE_PERM = 0o644
)

// Filesystem is the filesystem listings are written to.
type Filesystem interface {
	billy.Filesystem
	Absolute(path string) (string, error)
}

type File = billy.File

type absoluteCapableFilesystem struct {
	billy.Filesystem
	absolute func(path string) (string, error)
}

func AddAbsoluteFeature(fls billy.Filesystem, absolute func(path string) (string, error)) Filesystem {
	return &absoluteCapableFilesystem{
		Filesystem: fls,
		absolute:   absolute,
	}
}

func (fls *absoluteCapableFilesystem) Absolute(path string) (string, error) {
	return fls.absolute(path)
}

// OS returns a filesystem rooted at dir, all paths (including absolute ones) are resolved against dir.
func OS(dir string) (Filesystem, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return AddAbsoluteFeature(osfs.New(root), func(path string) (string, error) {
		return filepath.Join(root, path), nil
	}), nil
}

// Memory returns an in-memory filesystem.
func Memory() Filesystem {
	return AddAbsoluteFeature(memfs.New(), func(path string) (string, error) {
		return filepath.Join("/", path), nil
	})
}

// CreateTruncate creates the parent directories of path and opens the file for writing, truncating it.
func CreateTruncate(fls billy.Filesystem, path string) (File, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := fls.MkdirAll(dir, DEFAULT_DIR_PERM); err != nil {
			return nil, err
		}
	}
	return fls.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DEFAULT_FILE_PERM)
}

// SyncIfPossible calls Sync() on f if the file supports it.
func SyncIfPossible(f File) error {
	if capable, ok := f.(SyncCapable); ok {
		return capable.Sync()
	}
	return nil
}
