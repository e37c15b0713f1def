package gomkw

import (
	"fmt"
	"maps"
	"path"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// Artifact is a file or a directory tree in the output of Plan.
type Artifact struct {
	Plan *Plan
	// Relative path of the artifact in the output of Plan, empty when the
	// output itself is the artifact.
	Path string
}

// Ref returns a placeholder for the realized path of a, see [plankore.Ref].
// The plan of a must be an input of the plan the placeholder is used in.
func (a Artifact) Ref() string {
	if a.Path == "" {
		return plankore.Ref(a.Plan)
	}
	return plankore.Ref(a.Plan) + "/" + a.Path
}

func (a Artifact) String() string {
	if a.Path == "" {
		return a.Plan.String()
	}
	return a.Plan.String() + ":/" + a.Path
}

// Package is a library or tool package made available to an interpreter or
// compiler. Either Root is the directory of a pre-built package or Plan
// builds the package.
type Package struct {
	Name string
	Root string
	Plan *Plan
}

// Dir returns the package directory to be used in generated texts.
func (p Package) Dir() string {
	if p.Plan != nil {
		return plankore.Ref(p.Plan)
	}
	return p.Root
}

func (p Package) String() string {
	switch {
	case p.Plan != nil:
		return p.Name + "@" + p.Plan.String()
	case p.Root != "":
		return p.Name + "@" + p.Root
	}
	return p.Name
}

func packagePlans(pkgs ...Package) (ps []*Plan) {
	for _, p := range pkgs {
		if p.Plan != nil {
			ps = append(ps, p.Plan)
		}
	}
	return ps
}

type Config struct {
	// Defaults to DefaultToolchain()
	Toolchain *Toolchain
	// Defaults to a new plankore.Planner
	Orchestrator Orchestrator
	// Defaults to an ExecPkgConfig using Toolchain.PkgConfig
	PkgConfig PkgConfig
	Trace     *Trace
}

// Writers is the writer library. All toolchain paths and the orchestrator are
// fixed when Writers is created. The methods of Writers only construct plans,
// they never run anything with the exception of the PkgConfig lookup of
// [Writers.WriteC].
type Writers struct {
	tc      Toolchain
	builder []string
	orch    Orchestrator
	pkgc    PkgConfig
	trace   *Trace
}

func New(cfg Config) (*Writers, error) {
	w := &Writers{trace: cfg.Trace}
	if cfg.Toolchain == nil {
		w.tc = DefaultToolchain()
	} else {
		w.tc = *cfg.Toolchain
	}
	if err := w.tc.Check(); err != nil {
		return nil, err
	}
	w.builder, _ = w.tc.Builder()
	if w.orch = cfg.Orchestrator; w.orch == nil {
		pl, err := plankore.NewPlanner(w.trace, 0)
		if err != nil {
			return nil, err
		}
		w.orch = pl
	}
	if w.pkgc = cfg.PkgConfig; w.pkgc == nil {
		pc, err := NewExecPkgConfig(w.tc.PkgConfig, w.trace, 0)
		if err != nil {
			return nil, err
		}
		w.pkgc = pc
	}
	return w, nil
}

func (w *Writers) Toolchain() Toolchain { return w.tc }

func (w *Writers) Orchestrator() Orchestrator { return w.orch }

var outputNames = plankore.Grammars(plankore.BareFilename, plankore.AbsolutePath)

// outputName returns the plan name and the destination in the plan output
// for an artifact name. Absolute names are placed at the same path in the
// output, bare names become the output itself.
func outputName(name string) (base, dest string, err error) {
	g, err := outputNames.Check(name)
	if err != nil {
		return "", "", err
	}
	if g == plankore.AbsolutePath {
		return path.Base(name), name[1:], nil
	}
	return name, "", nil
}

// BinDir is the directory ...Bin writers put their artifacts into.
const BinDir = "/bin"

func binName(name string) (string, error) {
	if !plankore.BareFilename.Match(name) {
		return "", &InvalidNameError{
			Name:   name,
			Expect: []plankore.Grammar{plankore.BareFilename},
		}
	}
	return BinDir + "/" + name, nil
}

func (w *Writers) runIsolated(name, script string, vars map[string]string, inputs ...*Plan) (*Plan, error) {
	if len(w.builder) == 0 {
		return nil, fmt.Errorf("isolated run %s: toolchain has no shell", name)
	}
	if _, ok := vars["PATH"]; !ok && w.tc.Path != "" {
		vars = maps.Clone(vars)
		if vars == nil {
			vars = make(map[string]string)
		}
		vars["PATH"] = w.tc.Path
	}
	return w.orch.RunIsolated(name, plankore.IsolatedEnv{
		Builder: w.builder,
		Script:  script,
		Vars:    vars,
		Inputs:  inputs,
	})
}

// outPath returns the shell expression of the artifact path dest in $out.
func outPath(dest string) string {
	if dest == "" {
		return `"$out"`
	}
	return `"$out"/` + shQuote(dest)
}
