package mkfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Artefact is a file system object at a slash-separated path relative to some
// root directory, usually the output directory of a realized plan.
type Artefact interface {
	Path() string
}

// AbsPath returns the OS path of a in root.
func AbsPath(a Artefact, root string) string {
	return filepath.Join(root, filepath.FromSlash(a.Path()))
}

func Stat(a Artefact, root string) (fs.FileInfo, error) {
	return os.Stat(AbsPath(a, root))
}

func Exists(a Artefact, root string) (bool, error) {
	_, err := Stat(a, root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Clear removes the file or the directory tree at the slash-separated path p
// in root. Symbolic links are removed, not followed. It is not an error if
// nothing exists at p.
func Clear(root, p string) error {
	info, err := os.Lstat(AbsPath(File(p), root))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case info.IsDir():
		return DirTree{Dir: p}.Remove(root)
	}
	return File(p).Remove(root)
}

type Directory interface {
	Artefact
	List(root string) ([]string, error)

	ls(string, func(string, fs.DirEntry) error) error
}

func rmDirIfEmpty(path string) error {
	if ok, err := isDirEmpty(path); err != nil {
		return err
	} else if !ok {
		return nil
	}
	return os.Remove(path)
}

func isDirEmpty(path string) (bool, error) {
	dir, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer dir.Close()
	if _, err = dir.ReadDir(1); errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
