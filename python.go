package gomkw

import (
	"fmt"
	"strings"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// PythonOptions are the options of the Python writers.
type PythonOptions struct {
	// Libraries are made available through PYTHONPATH. Their libraries are
	// expected in the Runtime.SitePackages directory of the package.
	Libraries []Package
	// Flake8 codes to ignore when checking the script, e.g. "E501" or "W"
	Ignore []string
}

func (w *Writers) WritePython2(name string, opts PythonOptions, text string) (Artifact, error) {
	return w.writePython(&w.tc.Python2, "python2", name, opts, text)
}

func (w *Writers) WritePython2Bin(name string, opts PythonOptions, text string) (Artifact, error) {
	bin, err := binName(name)
	if err != nil {
		return Artifact{}, err
	}
	return w.WritePython2(bin, opts, text)
}

func (w *Writers) WritePython3(name string, opts PythonOptions, text string) (Artifact, error) {
	return w.writePython(&w.tc.Python3, "python3", name, opts, text)
}

func (w *Writers) WritePython3Bin(name string, opts PythonOptions, text string) (Artifact, error) {
	bin, err := binName(name)
	if err != nil {
		return Artifact{}, err
	}
	return w.WritePython3(bin, opts, text)
}

func (w *Writers) writePython(rt *Runtime, tag, name string, opts PythonOptions, text string) (Artifact, error) {
	if _, _, err := outputName(name); err != nil {
		return Artifact{}, err
	}
	for _, code := range opts.Ignore {
		if err := plankore.LintCode.CheckIdentifier("ignore", code); err != nil {
			return Artifact{}, err
		}
	}
	interp, env, err := w.pythonEnv(rt, tag, opts.Libraries)
	if err != nil {
		return Artifact{}, err
	}
	check, err := w.flake8Check(rt, tag, opts.Ignore)
	if err != nil {
		return Artifact{}, err
	}
	return w.ScriptWriter(interp, check, env)(name, text)
}

// pythonEnv returns the interpreter for a Python runtime with libs. Without
// libs it is the runtime itself. Otherwise it is a wrapper in an environment
// plan that links the site packages of all libs.
func (w *Writers) pythonEnv(rt *Runtime, tag string, libs []Package) (string, *Plan, error) {
	if len(libs) == 0 {
		return rt.Path, nil, nil
	}
	site := rt.SitePackages
	var sb strings.Builder
	fmt.Fprintf(&sb, "mkdir -p \"$out/bin\" %s\n", outPath(site))
	for _, lib := range libs {
		dir := lib.Dir()
		if dir == "" {
			w.trace.Warn("python library `lib` has no directory", `lib`, lib.Name)
			continue
		}
		linkContents(&sb, dir+"/"+site, site)
	}
	fmt.Fprintf(&sb, "printf '%%s\\n' %s \"export PYTHONPATH=$out/%s\" %s >\"$out/bin/python\"\n",
		shQuote("#!"+w.tc.Dash),
		site,
		shQuote("exec "+shQuote(rt.Path)+` "$@"`),
	)
	sb.WriteString("chmod +x \"$out/bin/python\"\n")
	env, err := w.runIsolated(tag+"-env", sb.String(), nil, packagePlans(libs...)...)
	if err != nil {
		return "", nil, err
	}
	return plankore.Ref(env) + "/bin/python", env, nil
}

func (w *Writers) flake8Check(rt *Runtime, tag string, ignore []string) (*Plan, error) {
	cmd := shQuote(rt.Flake8) + " --show-source"
	if len(ignore) > 0 {
		cmd += " " + shQuote("--ignore="+strings.Join(ignore, ","))
	}
	chk, err := w.WriteDash(tag+"check.sh", "exec "+cmd+" \"$1\"\n")
	return chk.Plan, err
}

// linkContents writes script code that links all entries of the directory
// src into the directory dst in $out. Missing src is ignored.
func linkContents(sb *strings.Builder, src, dst string) {
	fmt.Fprintf(sb, "for e in %s/*; do\n", shQuote(src))
	fmt.Fprintf(sb, "  if [ -e \"$e\" ]; then ln -s \"$e\" %s/; fi\n", outPath(dst))
	sb.WriteString("done\n")
}
