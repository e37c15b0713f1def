package gomkw

import (
	"fmt"
	"strings"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// HaskellPackageDB is the directory of the GHC package database in the
// output of a Haskell library package.
const HaskellPackageDB = "lib/package.conf.d"

// HaskellOptions are the options of [Writers.WriteHaskell].
type HaskellOptions struct {
	// Libraries are exposed to GHC by name. A library with a directory
	// provides its package database in HaskellPackageDB.
	Libraries []Package
	GhcArgs   []string
	// By default the binary is linked with the threaded runtime.
	NoThreaded bool
	NoStrip    bool
}

// WriteHaskell compiles text as the Main module of a program.
func (w *Writers) WriteHaskell(name string, opts HaskellOptions, text string) (Artifact, error) {
	base, dest, err := outputName(name)
	if err != nil {
		return Artifact{}, err
	}
	for _, lib := range opts.Libraries {
		if err := plankore.HaskellPackage.CheckIdentifier("libraries", lib.Name); err != nil {
			return Artifact{}, err
		}
	}
	src, err := w.WriteText(base+".hs", text)
	if err != nil {
		return Artifact{}, err
	}
	exe := outPath(dest)
	var sb strings.Builder
	if dest != "" {
		fmt.Fprintf(&sb, "mkdir -p \"$(dirname %s)\"\n", exe)
	}
	fmt.Fprintf(&sb, "cp %s Main.hs\n", shQuote(src.Ref()))
	args := []string{"-package-env", "-"}
	args = append(args, haskellPackageArgs(opts.Libraries)...)
	if !opts.NoThreaded {
		args = append(args, "-threaded")
	}
	args = append(args, opts.GhcArgs...)
	fmt.Fprintf(&sb, "%s %s -o %s Main.hs\n", shQuote(w.tc.Ghc), shQuoteAll(args), exe)
	if !opts.NoStrip {
		fmt.Fprintf(&sb, "%s -s %s\n", shQuote(w.tc.Strip), exe)
	}
	inputs := append([]*Plan{src.Plan}, packagePlans(opts.Libraries...)...)
	p, err := w.runIsolated(base, sb.String(), nil, inputs...)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Plan: p, Path: dest}, nil
}

func (w *Writers) WriteHaskellBin(name string, opts HaskellOptions, text string) (Artifact, error) {
	bin, err := binName(name)
	if err != nil {
		return Artifact{}, err
	}
	return w.WriteHaskell(bin, opts, text)
}

func haskellPackageArgs(libs []Package) (args []string) {
	for _, lib := range libs {
		if dir := lib.Dir(); dir != "" {
			args = append(args, "-package-db", dir+"/"+HaskellPackageDB)
		}
	}
	for _, lib := range libs {
		args = append(args, "-package", lib.Name)
	}
	return args
}
