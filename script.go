package gomkw

import (
	"maps"
	"slices"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// ScriptFunc writes a script with a fixed interpreter, see
// [Writers.ScriptWriter].
type ScriptFunc func(name, text string) (Artifact, error)

// Bin writes the script name to the [BinDir] of the output. name must be a
// bare filename.
func (f ScriptFunc) Bin(name, text string) (Artifact, error) {
	bin, err := binName(name)
	if err != nil {
		return Artifact{}, err
	}
	return f(bin, text)
}

// ScriptWriter returns a function that writes executable scripts for the
// interpreter. The written file starts with "#!" followed by interpreter and a
// newline, then comes the text verbatim. If check is not nil, the script is
// only built when check succeeds on the script file. The interpreter may
// reference the outputs of inputs.
//
// A bare name becomes the output file itself, an absolute name is placed at
// that path in an output tree. Names of any other form are rejected with
// [InvalidNameError].
func (w *Writers) ScriptWriter(interpreter string, check *Plan, inputs ...*Plan) ScriptFunc {
	return func(name, text string) (Artifact, error) {
		base, dest, err := outputName(name)
		if err != nil {
			return Artifact{}, err
		}
		p, err := w.orch.ConstructOutput(base, plankore.OutputSpec{
			Text:        "#!" + interpreter + "\n" + text,
			Executable:  true,
			Destination: dest,
			Check:       check,
			Inputs:      inputs,
		})
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Plan: p, Path: dest}, nil
	}
}

// ScriptBody returns the text of a script written by a [ScriptFunc] without
// the interpreter line.
func ScriptBody(script string) (interpreter, text string, ok bool) {
	if !strings.HasPrefix(script, "#!") {
		return "", "", false
	}
	interpreter, text, ok = strings.Cut(script[2:], "\n")
	return
}

// WriteText writes text to a non-executable file with the same name rules as
// [Writers.ScriptWriter].
func (w *Writers) WriteText(name, text string) (Artifact, error) {
	base, dest, err := outputName(name)
	if err != nil {
		return Artifact{}, err
	}
	p, err := w.orch.ConstructOutput(base, plankore.OutputSpec{
		Text:        text,
		Destination: dest,
	})
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Plan: p, Path: dest}, nil
}

// Tree returns an artifact that is a directory tree with the given entries.
// Keys of entries are relative paths in the tree, entries are linked
// symbolically.
func (w *Writers) Tree(name string, entries map[string]Artifact) (Artifact, error) {
	if !plankore.BareFilename.Match(name) {
		return Artifact{}, &InvalidNameError{
			Name:   name,
			Expect: []plankore.Grammar{plankore.BareFilename},
		}
	}
	var (
		script strings.Builder
		inputs []*Plan
		dirs   = make(map[string]bool)
	)
	script.WriteString("mkdir -p \"$out\"\n")
	for _, p := range slices.Sorted(maps.Keys(entries)) {
		if !plankore.RelativePath.Match(p) {
			return Artifact{}, &InvalidNameError{
				Name:   p,
				Expect: []plankore.Grammar{plankore.RelativePath},
			}
		}
		e := entries[p]
		if d := dirOf(p); d != "" && !dirs[d] {
			dirs[d] = true
			script.WriteString("mkdir -p " + outPath(d) + "\n")
		}
		script.WriteString("ln -s " + shQuote(e.Ref()) + " " + outPath(p) + "\n")
		inputs = append(inputs, e.Plan)
	}
	p, err := w.runIsolated(name, script.String(), nil, inputs...)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Plan: p}, nil
}

func dirOf(p string) string {
	if i := strings.LastIndexByte(p, '/'); i > 0 {
		return p[:i]
	}
	return ""
}

func shQuote(s string) string { return shellescape.Quote(s) }

func shQuoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = shQuote(s)
	}
	return strings.Join(q, " ")
}
