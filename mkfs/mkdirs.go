package mkfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// DefaultDirMode is used by [MkDirs] when no mode is given.
const DefaultDirMode fs.FileMode = 0777

// MkDirs creates the directories needed for the artefacts in root. For a
// [File] that is the file's parent directory, for a [Directory] the directory
// itself.
func MkDirs(tr *plankore.Trace, root string, mode fs.FileMode, as ...Artefact) error {
	if mode == 0 {
		mode = DefaultDirMode
	}
	for _, a := range as {
		var dir string
		switch a := a.(type) {
		case File:
			dir = filepath.Dir(AbsPath(a, root))
		case Directory:
			dir = AbsPath(a, root)
		default:
			return fmt.Errorf("illegal MkDirs artefact: %T", a)
		}
		tr.Debug("create `directory`", `directory`, dir)
		if err := os.MkdirAll(dir, mode); err != nil {
			return err
		}
	}
	return nil
}
