package mkfs

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Filter selects the entries of a [DirTree]. path is relative to the tree's
// directory.
type Filter interface {
	Ok(path string, entry fs.DirEntry) (bool, error)
}

// IsDir selects directories if true, all other entries if false.
type IsDir bool

func (d IsDir) Ok(_ string, e fs.DirEntry) (bool, error) {
	return e.IsDir() == bool(d), nil
}

// NameMatch selects entries whose base name matches the [filepath.Match]
// pattern.
type NameMatch string

func (p NameMatch) Ok(_ string, e fs.DirEntry) (bool, error) {
	return filepath.Match(string(p), e.Name())
}

// MaxPathLen selects entries with at most that many path elements.
type MaxPathLen int

func (n MaxPathLen) Ok(p string, _ fs.DirEntry) (bool, error) {
	return strings.Count(p, string(filepath.Separator)) < int(n), nil
}

type All []Filter

func (fs All) Ok(p string, e fs.DirEntry) (bool, error) {
	for _, f := range fs {
		if ok, err := f.Ok(p, e); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

type Any []Filter

func (fs Any) Ok(p string, e fs.DirEntry) (bool, error) {
	for _, f := range fs {
		if ok, err := f.Ok(p, e); err != nil {
			return false, err
		} else if ok {
			return true, nil
		}
	}
	return false, nil
}
