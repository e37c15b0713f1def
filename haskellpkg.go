package gomkw

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"git.fractalqb.de/fractalqb/gomkw/mkfs"
	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// HaskellPackageOptions are the options of [Writers.WriteHaskellPackage].
// At least one executable or library module is required.
type HaskellPackageOptions struct {
	// Executables maps executable names to the source of their Main
	// module. Names follow the rules of Cabal package names.
	Executables map[string]string
	// Library maps the names of exposed modules to their source.
	Library    map[string]string
	Libraries  []Package
	GhcOptions []string
}

// WriteHaskellPackage builds a Cabal package from generated sources. id is the
// package identifier <name>-<version>. Executables are installed to bin/ of
// the output, a library is registered in the package database
// [HaskellPackageDB] of the output.
func (w *Writers) WriteHaskellPackage(id string, opts HaskellPackageOptions) (Artifact, error) {
	pkgName, version, ok := plankore.SplitPackageID(id)
	if !ok {
		return Artifact{}, &InvalidIdentifierError{
			Arg:     "name",
			Value:   id,
			Grammar: plankore.HaskellPackageID,
		}
	}
	if len(opts.Executables) == 0 && len(opts.Library) == 0 {
		return Artifact{}, fmt.Errorf("haskell package %s has neither executables nor library", id)
	}
	exes := slices.Sorted(maps.Keys(opts.Executables))
	for _, exe := range exes {
		if err := plankore.HaskellPackage.CheckIdentifier("executables", exe); err != nil {
			return Artifact{}, err
		}
	}
	mods := slices.Sorted(maps.Keys(opts.Library))
	for _, mod := range mods {
		if err := plankore.HaskellModule.CheckIdentifier("library", mod); err != nil {
			return Artifact{}, err
		}
	}
	for _, lib := range opts.Libraries {
		if err := plankore.HaskellPackage.CheckIdentifier("libraries", lib.Name); err != nil {
			return Artifact{}, err
		}
	}

	files := make(map[string]Artifact)
	var errs []error
	addFile := func(path, name, text string) {
		a, err := w.WriteText(name, text)
		if err != nil {
			errs = append(errs, err)
		}
		files[path] = a
	}
	cabal := pkgName + ".cabal"
	addFile(cabal, cabal, cabalFile(pkgName, version, exes, mods, opts))
	addFile("Setup.hs", "Setup.hs", "import Distribution.Simple\nmain = defaultMain\n")
	for _, exe := range exes {
		addFile("app/"+exe+"/Main.hs", exe+"-Main.hs", opts.Executables[exe])
	}
	for _, mod := range mods {
		f := mkfs.File("src/" + strings.ReplaceAll(mod, ".", "/")).WithExt("hs")
		addFile(f.Path(), mod+".hs", opts.Library[mod])
	}
	if err := errors.Join(errs...); err != nil {
		return Artifact{}, err
	}
	src, err := w.Tree(id+"-src", files)
	if err != nil {
		return Artifact{}, err
	}

	var dbArgs []string
	for _, lib := range opts.Libraries {
		if dir := lib.Dir(); dir != "" {
			dbArgs = append(dbArgs, "--package-db="+dir+"/"+HaskellPackageDB)
		}
	}
	runghc := shQuote(w.tc.Runghc)
	var sb strings.Builder
	fmt.Fprintf(&sb, "cp -RL %s/. .\n", shQuote(src.Ref()))
	sb.WriteString("chmod -R u+w .\n")
	fmt.Fprintf(&sb, "%s Setup.hs configure --prefix=\"$out\" %s",
		runghc,
		shQuote("--with-compiler="+w.tc.Ghc),
	)
	if len(dbArgs) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(shQuoteAll(dbArgs))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s Setup.hs build\n", runghc)
	fmt.Fprintf(&sb, "%s Setup.hs copy\n", runghc)
	if len(mods) > 0 {
		ghcPkg := shQuote(w.tc.GhcPkg)
		fmt.Fprintf(&sb, "%s init %s\n", ghcPkg, outPath(HaskellPackageDB))
		fmt.Fprintf(&sb, "%s Setup.hs register --gen-pkg-config=%s.conf\n", runghc, shQuote(id))
		fmt.Fprintf(&sb, "%s --package-db=%s register %s.conf\n",
			ghcPkg,
			outPath(HaskellPackageDB),
			shQuote(id),
		)
	}
	p, err := w.runIsolated(id, sb.String(), nil,
		append([]*Plan{src.Plan}, packagePlans(opts.Libraries...)...)...,
	)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Plan: p}, nil
}

func cabalFile(name, version string, exes, mods []string, opts HaskellPackageOptions) string {
	deps := []string{"base"}
	for _, lib := range opts.Libraries {
		deps = append(deps, lib.Name)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "cabal-version: 2.4\nname: %s\nversion: %s\nbuild-type: Simple\n", name, version)
	section := func(head, srcDir string, deps []string) {
		fmt.Fprintf(&sb, "\n%s\n", head)
		fmt.Fprintf(&sb, "  hs-source-dirs: %s\n", srcDir)
		fmt.Fprintf(&sb, "  build-depends: %s\n", strings.Join(deps, ", "))
		sb.WriteString("  default-language: Haskell2010\n")
		if len(opts.GhcOptions) > 0 {
			fmt.Fprintf(&sb, "  ghc-options: %s\n", strings.Join(opts.GhcOptions, " "))
		}
	}
	if len(mods) > 0 {
		section("library", "src", deps)
		fmt.Fprintf(&sb, "  exposed-modules: %s\n", strings.Join(mods, ", "))
	}
	exeDeps := deps
	if len(mods) > 0 {
		exeDeps = append(slices.Clip(deps), name)
	}
	for _, exe := range exes {
		section("executable "+exe, "app/"+exe, exeDeps)
		sb.WriteString("  main-is: Main.hs\n")
	}
	return sb.String()
}
