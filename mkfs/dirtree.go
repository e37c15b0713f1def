package mkfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// DirTree is the tree of files below Dir that pass Filter. Listed paths are
// slash-separated and relative to Dir.
type DirTree struct {
	Dir    string
	Filter Filter
}

var _ Directory = DirTree{}

// DirFiles lists the files of dir whose names match any of the patterns,
// all files without patterns. With pathMax > 0 it does not descend deeper
// than pathMax path elements.
func DirFiles(dir string, pathMax int, patterns ...string) DirTree {
	filter := All{IsDir(false)}
	switch len(patterns) {
	case 0:
	case 1:
		filter = append(filter, NameMatch(patterns[0]))
	default:
		names := make(Any, len(patterns))
		for i, p := range patterns {
			names[i] = NameMatch(p)
		}
		filter = append(filter, names)
	}
	if pathMax > 0 {
		filter = append(filter, MaxPathLen(pathMax))
	}
	return DirTree{Dir: dir, Filter: filter}
}

func (d DirTree) Path() string { return d.Dir }

func (d DirTree) List(root string) (ls []string, err error) {
	err = d.ls(AbsPath(d, root), func(p string, e fs.DirEntry) error {
		if p != "." {
			ls = append(ls, filepath.ToSlash(p))
		}
		return nil
	})
	return
}

// Remove removes all files of d and then all directories of d that became
// empty. Dir itself is removed if it is empty at the end.
func (d DirTree) Remove(root string) error {
	dir := AbsPath(d, root)
	err := d.ls(dir, func(p string, e fs.DirEntry) error {
		if e.IsDir() {
			return nil
		}
		return os.Remove(filepath.Join(dir, p))
	})
	if err != nil {
		return err
	}
	var dirs []string
	err = DirTree{}.ls(dir, func(p string, e fs.DirEntry) error {
		if e.IsDir() && p != "." {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.Reverse(dirs)
	for _, sub := range dirs {
		if err := rmDirIfEmpty(filepath.Join(dir, sub)); err != nil {
			return err
		}
	}
	return rmDirIfEmpty(dir)
}

func (d DirTree) ls(root string, do func(string, fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		path, err = filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if ok, err := d.ok(path, e); err != nil {
			return err
		} else if ok {
			if err := do(path, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d DirTree) ok(p string, e fs.DirEntry) (ok bool, err error) {
	if d.Filter != nil {
		return d.Filter.Ok(p, e)
	}
	return true, nil
}
