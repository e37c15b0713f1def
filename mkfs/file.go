package mkfs

import (
	"errors"
	"os"
	"path"
)

// File is a single file at a slash-separated relative path.
type File string

var _ Artefact = File("")

func (f File) Path() string { return string(f) }

func (f File) Dir() string { return path.Dir(string(f)) }

func (f File) Ext() string { return path.Ext(string(f)) }

// WithExt replaces the extension of f with ext. An empty ext removes the
// extension.
func (f File) WithExt(ext string) File {
	p := f.Path()
	if ext == "" {
		ext = path.Ext(p)
		if ext == "" {
			return f
		}
		return File(p[:len(p)-len(ext)])
	}
	if ext[0] != '.' {
		ext = "." + ext
	}
	fExt := path.Ext(p)
	if fExt == "" {
		return File(p + ext)
	}
	return File(p[:len(p)-len(fExt)] + ext)
}

// Remove removes f from root. It is not an error if f does not exist.
func (f File) Remove(root string) error {
	err := os.Remove(AbsPath(f, root))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
