package gomkw

import (
	"fmt"
	"strings"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// EnvOptions are the options of writers that make libraries available
// through a search path variable.
type EnvOptions struct {
	Libraries []Package
}

const (
	NodeModulesDir = "lib/node_modules"
	PerlSiteDir    = "lib/perl5/site_perl"
)

// WriteJS writes a node script. NODE_PATH points to a tree with the
// NodeModulesDir contents of all libraries.
func (w *Writers) WriteJS(name string, opts EnvOptions, text string) (Artifact, error) {
	return w.writeEnvScript("node", "NODE_PATH", NodeModulesDir, w.tc.Node, name, opts, text)
}

func (w *Writers) WriteJSBin(name string, opts EnvOptions, text string) (Artifact, error) {
	bin, err := binName(name)
	if err != nil {
		return Artifact{}, err
	}
	return w.WriteJS(bin, opts, text)
}

// WritePerl writes a perl script. PERL5LIB points to a tree with the
// PerlSiteDir contents of all libraries.
func (w *Writers) WritePerl(name string, opts EnvOptions, text string) (Artifact, error) {
	return w.writeEnvScript("perl", "PERL5LIB", PerlSiteDir, w.tc.Perl, name, opts, text)
}

func (w *Writers) WritePerlBin(name string, opts EnvOptions, text string) (Artifact, error) {
	bin, err := binName(name)
	if err != nil {
		return Artifact{}, err
	}
	return w.WritePerl(bin, opts, text)
}

func (w *Writers) writeEnvScript(
	tag, envVar, libDir, runtime string,
	name string,
	opts EnvOptions,
	text string,
) (Artifact, error) {
	if _, _, err := outputName(name); err != nil {
		return Artifact{}, err
	}
	tree, err := w.linkTree(tag+"-libs", libDir, opts.Libraries)
	if err != nil {
		return Artifact{}, err
	}
	interp := fmt.Sprintf("%s -S %s=%s/%s %s",
		w.tc.Env,
		envVar,
		plankore.Ref(tree),
		libDir,
		runtime,
	)
	return w.ScriptWriter(interp, nil, tree)(name, text)
}

// linkTree returns a plan with an output tree that has the contents of the
// libDir directories of all pkgs linked into libDir. Without pkgs the tree has
// an empty libDir.
func (w *Writers) linkTree(name, libDir string, pkgs []Package) (*Plan, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "mkdir -p %s\n", outPath(libDir))
	for _, pkg := range pkgs {
		dir := pkg.Dir()
		if dir == "" {
			w.trace.Warn("library `lib` has no directory", `lib`, pkg.Name)
			continue
		}
		linkContents(&sb, dir+"/"+libDir, libDir)
	}
	return w.runIsolated(name, sb.String(), nil, packagePlans(pkgs...)...)
}
