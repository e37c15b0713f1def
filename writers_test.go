package gomkw

import (
	"context"
	"errors"
	"strings"
	"testing"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
	"git.fractalqb.de/fractalqb/testerr"
)

func testWriters(t *testing.T, pc PkgConfig) *Writers {
	tr := plankore.NewTrace(context.Background(), TestTracer{T: t})
	if pc == nil {
		pc = StaticPkgConfig{}
	}
	return testerr.Shall1(New(Config{Trace: tr, PkgConfig: pc})).BeNil(t)
}

type scriptWriter struct {
	name string
	w    func(w *Writers, name, text string) (Artifact, error)
	bin  func(w *Writers, name, text string) (Artifact, error)
}

var scriptWriters = []scriptWriter{
	{"bash", (*Writers).WriteBash, (*Writers).WriteBashBin},
	{"dash", (*Writers).WriteDash, (*Writers).WriteDashBin},
	{"sed", (*Writers).WriteSed, (*Writers).WriteSedBin},
	{"jq", (*Writers).WriteJq, (*Writers).WriteJqBin},
	{"python2",
		func(w *Writers, n, t string) (Artifact, error) { return w.WritePython2(n, PythonOptions{}, t) },
		func(w *Writers, n, t string) (Artifact, error) { return w.WritePython2Bin(n, PythonOptions{}, t) },
	},
	{"python3",
		func(w *Writers, n, t string) (Artifact, error) {
			return w.WritePython3(n, PythonOptions{Ignore: []string{"E501"}}, t)
		},
		func(w *Writers, n, t string) (Artifact, error) {
			return w.WritePython3Bin(n, PythonOptions{Ignore: []string{"E501"}}, t)
		},
	},
	{"js",
		func(w *Writers, n, t string) (Artifact, error) { return w.WriteJS(n, EnvOptions{}, t) },
		func(w *Writers, n, t string) (Artifact, error) { return w.WriteJSBin(n, EnvOptions{}, t) },
	},
	{"perl",
		func(w *Writers, n, t string) (Artifact, error) { return w.WritePerl(n, EnvOptions{}, t) },
		func(w *Writers, n, t string) (Artifact, error) { return w.WritePerlBin(n, EnvOptions{}, t) },
	},
}

func TestScriptWriters_names(t *testing.T) {
	w := testWriters(t, nil)
	for _, sw := range scriptWriters {
		t.Run(sw.name, func(t *testing.T) {
			for _, good := range []string{"foo", "foo.sh", "/bin/foo", "/share/x/foo"} {
				if _, err := sw.w(w, good, "true\n"); err != nil {
					t.Errorf("'%s': %s", good, err)
				}
			}
			for _, bad := range []string{"", "a/b", "./a", "/", "foo\x00"} {
				if _, err := sw.w(w, bad, "true\n"); !errors.Is(err, ErrInvalidName) {
					t.Errorf("%q: unexpected error %v", bad, err)
				}
			}
			for _, bad := range []string{"/bin/foo", "a/b", ""} {
				if _, err := sw.bin(w, bad, "true\n"); !errors.Is(err, ErrInvalidName) {
					t.Errorf("bin %q: unexpected error %v", bad, err)
				}
			}
		})
	}
}

func TestScriptWriters_bin(t *testing.T) {
	w := testWriters(t, nil)
	for _, sw := range scriptWriters {
		t.Run(sw.name, func(t *testing.T) {
			b := testerr.Shall1(sw.bin(w, "x", "true\n")).BeNil(t)
			a := testerr.Shall1(sw.w(w, "/bin/x", "true\n")).BeNil(t)
			if a.Plan.ID() != b.Plan.ID() {
				t.Errorf("bin plan %s differs from %s", b.Plan, a.Plan)
			}
			if a.Path != "bin/x" || b.Path != a.Path {
				t.Errorf("unexpected paths '%s' / '%s'", b.Path, a.Path)
			}
		})
	}
}

func TestScriptWriters_shebang(t *testing.T) {
	w := testWriters(t, nil)
	text := "line 1\n\n  line 3 with #!\n"
	for _, sw := range scriptWriters {
		t.Run(sw.name, func(t *testing.T) {
			a := testerr.Shall1(sw.w(w, "x", text)).BeNil(t)
			op, ok := a.Plan.Op().(*plankore.OutputOp)
			if !ok {
				t.Fatalf("script plan has operation %T", a.Plan.Op())
			}
			if !op.Executable {
				t.Error("script is not executable")
			}
			interp, body, ok := ScriptBody(op.Text)
			if !ok {
				t.Fatalf("no interpreter line in %q", op.Text)
			}
			if interp == "" {
				t.Error("empty interpreter")
			}
			if body != text {
				t.Errorf("body %q differs from text", body)
			}
		})
	}
}

func TestWriteDash_plan(t *testing.T) {
	w := testWriters(t, nil)
	a := testerr.Shall1(w.WriteDash("foo", "echo foo\n")).BeNil(t)
	op := a.Plan.Op().(*plankore.OutputOp)
	if op.Text != "#!/bin/dash\necho foo\n" {
		t.Errorf("unexpected text %q", op.Text)
	}
	if a.Path != "" || op.Destination != "" {
		t.Errorf("bare name placed at '%s'", op.Destination)
	}
	if op.Check != nil || len(a.Plan.Inputs()) != 0 {
		t.Error("shell script has check or inputs")
	}
}

func TestWriteJq_check(t *testing.T) {
	w := testWriters(t, nil)
	a := testerr.Shall1(w.WriteJq("f.jq", ".foo\n")).BeNil(t)
	op := a.Plan.Op().(*plankore.OutputOp)
	if !strings.HasPrefix(op.Text, "#!/usr/bin/jq -f\n") {
		t.Errorf("unexpected text %q", op.Text)
	}
	if op.Check == nil {
		t.Fatal("jq script without check")
	}
	chk := op.Check.Op().(*plankore.OutputOp)
	if !strings.Contains(chk.Text, `-f "$1" </dev/null`) {
		t.Errorf("unexpected check script %q", chk.Text)
	}
}

func TestWritePython_lint(t *testing.T) {
	w := testWriters(t, nil)
	a := testerr.Shall1(w.WritePython3("x", PythonOptions{Ignore: []string{"E501", "W"}}, "import os")).BeNil(t)
	op := a.Plan.Op().(*plankore.OutputOp)
	if op.Check == nil {
		t.Fatal("python script without check")
	}
	chk := op.Check.Op().(*plankore.OutputOp)
	if !strings.Contains(chk.Text, "--ignore=E501,W") {
		t.Errorf("unexpected check script %q", chk.Text)
	}
	_, err := w.WritePython3("x", PythonOptions{Ignore: []string{"E501; rm -rf /"}}, "")
	var iie *InvalidIdentifierError
	if !errors.As(err, &iie) || iie.Arg != "ignore" {
		t.Errorf("bad ignore code accepted: %v", err)
	}
}

func TestWritePython_libraries(t *testing.T) {
	w := testWriters(t, nil)
	lib := testerr.Shall1(w.Tree("pylib", nil)).BeNil(t)
	a := testerr.Shall1(w.WritePython3("x", PythonOptions{
		Libraries: []Package{{Name: "requests", Root: "/opt/requests"}, {Name: "lib", Plan: lib.Plan}},
	}, "import requests\n")).BeNil(t)
	op := a.Plan.Op().(*plankore.OutputOp)
	interp, _, _ := ScriptBody(op.Text)
	ids := plankore.RefIDs(interp)
	if len(ids) != 1 || !strings.HasSuffix(interp, "/bin/python") {
		t.Fatalf("unexpected interpreter '%s'", interp)
	}
	env := a.Plan.Input(ids[0])
	if env == nil {
		t.Fatal("python environment is not an input")
	}
	if env.Input(lib.Plan.ID()) == nil {
		t.Error("library plan is not an input of the environment")
	}
	script := env.Op().(*plankore.IsolatedOp).Script
	if !strings.Contains(script, "/opt/requests/lib/python3/site-packages") {
		t.Errorf("library root not linked:\n%s", script)
	}
}

func TestEnvWriters_emptyTree(t *testing.T) {
	w := testWriters(t, nil)
	for _, tc := range []struct {
		write func(string, EnvOptions, string) (Artifact, error)
		env   string
		dir   string
	}{
		{w.WriteJS, "NODE_PATH", NodeModulesDir},
		{w.WritePerl, "PERL5LIB", PerlSiteDir},
	} {
		a := testerr.Shall1(tc.write("x", EnvOptions{}, "1;\n")).BeNil(t)
		op := a.Plan.Op().(*plankore.OutputOp)
		interp, _, _ := ScriptBody(op.Text)
		ids := plankore.RefIDs(interp)
		if len(ids) != 1 {
			t.Fatalf("unexpected interpreter '%s'", interp)
		}
		tree := a.Plan.Input(ids[0])
		if tree == nil {
			t.Fatal("search path tree is not an input")
		}
		if !strings.Contains(interp, tc.env+"="+plankore.Ref(tree)+"/"+tc.dir) {
			t.Errorf("search path not set to tree: '%s'", interp)
		}
		if len(tree.Inputs()) != 0 {
			t.Errorf("empty tree has inputs")
		}
		iop := tree.Op().(*plankore.IsolatedOp)
		if iop.Script != "mkdir -p \"$out\"/"+tc.dir+"\n" {
			t.Errorf("unexpected tree script %q", iop.Script)
		}
	}
}

func TestWriteC_pkgConfig(t *testing.T) {
	var calls int
	pc := PkgConfigFunc(func(libs map[string]Package) ([]string, error) {
		calls++
		return StaticPkgConfig{"zlib": {"-lz"}}.Flags(libs)
	})
	w := testWriters(t, pc)
	src := "int main() { return 0; }\n"
	testerr.Shall1(w.WriteC("x", COptions{}, src)).BeNil(t)
	if calls != 0 {
		t.Fatalf("pkg-config called without libraries")
	}
	a := testerr.Shall1(w.WriteC("x", COptions{
		Destination: "/libexec/x",
		Libraries:   map[string]Package{"zlib": {Name: "zlib", Root: "/opt/zlib"}},
	}, src)).BeNil(t)
	if calls != 1 {
		t.Errorf("pkg-config called %d times", calls)
	}
	if a.Path != "libexec/x" {
		t.Errorf("unexpected path '%s'", a.Path)
	}
	script := a.Plan.Op().(*plankore.IsolatedOp).Script
	for _, s := range []string{"-O -Wall", "-lz", "-s \"$out\"/libexec/x", "mkdir -p"} {
		if !strings.Contains(script, s) {
			t.Errorf("script misses '%s':\n%s", s, script)
		}
	}
	_, err := w.WriteC("x", COptions{
		Libraries: map[string]Package{"nope": {Name: "nope"}},
	}, src)
	var ude *UnresolvedDependencyError
	if !errors.As(err, &ude) || ude.Library != "nope" {
		t.Errorf("unresolved library not reported: %v", err)
	}
	if _, err = w.WriteC("x", COptions{Destination: "libexec/x"}, src); !errors.Is(err, ErrInvalidName) {
		t.Errorf("relative destination accepted: %v", err)
	}
}

func TestWriteHaskell(t *testing.T) {
	w := testWriters(t, nil)
	a := testerr.Shall1(w.WriteHaskellBin("hello", HaskellOptions{
		Libraries: []Package{{Name: "text"}},
	}, "main = putStrLn \"hello\"\n")).BeNil(t)
	script := a.Plan.Op().(*plankore.IsolatedOp).Script
	for _, s := range []string{"-package-env - -package text -threaded", "-o \"$out\"/bin/hello", "-s \"$out\"/bin/hello"} {
		if !strings.Contains(script, s) {
			t.Errorf("script misses '%s':\n%s", s, script)
		}
	}
	_, err := w.WriteHaskell("x", HaskellOptions{Libraries: []Package{{Name: "not a package"}}}, "")
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("bad library name accepted: %v", err)
	}
}

func TestWriteHaskellPackage(t *testing.T) {
	w := testWriters(t, nil)
	a := testerr.Shall1(w.WriteHaskellPackage("hello-world-0.1.0", HaskellPackageOptions{
		Executables: map[string]string{"hello": "main = putStrLn greeting\n"},
		Library:     map[string]string{"Hello.Greeting": "module Hello.Greeting where\n"},
		Libraries:   []Package{{Name: "text"}},
	})).BeNil(t)
	if a.Plan.Name() != "hello-world-0.1.0" {
		t.Errorf("unexpected plan name '%s'", a.Plan.Name())
	}
	var cabal string
	a.Plan.Walk(func(p *plankore.Plan) error {
		if p.Name() == "hello-world.cabal" {
			cabal = p.Op().(*plankore.OutputOp).Text
		}
		return nil
	})
	for _, s := range []string{
		"name: hello-world\n",
		"version: 0.1.0\n",
		"exposed-modules: Hello.Greeting\n",
		"executable hello\n",
		"build-depends: base, text, hello-world\n",
	} {
		if !strings.Contains(cabal, s) {
			t.Errorf("cabal file misses %q:\n%s", s, cabal)
		}
	}
	for _, tc := range []struct {
		id   string
		opts HaskellPackageOptions
		arg  string
	}{
		{"hello", HaskellPackageOptions{Executables: map[string]string{"a": ""}}, "name"},
		{"hello-1", HaskellPackageOptions{Executables: map[string]string{"a/b": ""}}, "executables"},
		{"hello-1", HaskellPackageOptions{Executables: map[string]string{"a b": ""}}, "executables"},
		{"hello-1", HaskellPackageOptions{Executables: map[string]string{"x.sh": ""}}, "executables"},
		{"hello-1", HaskellPackageOptions{Executables: map[string]string{"1-2": ""}}, "executables"},
		{"hello-1", HaskellPackageOptions{Library: map[string]string{"data.foo": ""}}, "library"},
		{"hello-1", HaskellPackageOptions{
			Library:   map[string]string{"Foo": ""},
			Libraries: []Package{{Name: "a_b"}},
		}, "libraries"},
	} {
		_, err := w.WriteHaskellPackage(tc.id, tc.opts)
		var iie *InvalidIdentifierError
		if !errors.As(err, &iie) {
			t.Errorf("%s %+v: unexpected error %v", tc.id, tc.opts, err)
		} else if iie.Arg != tc.arg {
			t.Errorf("%s: reported argument '%s', want '%s'", tc.id, iie.Arg, tc.arg)
		}
	}
	if _, err := w.WriteHaskellPackage("empty-1", HaskellPackageOptions{}); err == nil {
		t.Error("empty package accepted")
	}
}

func TestEdit(t *testing.T) {
	w := testWriters(t, nil)
	var a Artifact
	err := Edit(w, func(ed Ed) {
		a = ed.BashBin("ok", "true\n")
		ed.Bash("not/ok", "false\n")
		t.Error("no panic on invalid name")
	})
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("unexpected error %v", err)
	}
	if a.Plan == nil {
		t.Error("first artifact not written")
	}
}

func TestEdit_allWriters(t *testing.T) {
	w := testWriters(t, nil)
	var bins []Artifact
	err := Edit(w, func(ed Ed) {
		bins = append(bins,
			ed.BashBin("a", "true\n"),
			ed.DashBin("b", "true\n"),
			ed.SedBin("c", "p\n"),
			ed.JqBin("d", ".\n"),
			ed.Python2Bin("e", PythonOptions{}, "pass\n"),
			ed.Python3Bin("f", PythonOptions{}, "pass\n"),
			ed.JSBin("g", EnvOptions{}, "0\n"),
			ed.PerlBin("h", EnvOptions{}, "1;\n"),
			ed.CBin("i", COptions{}, "int main() { return 0; }\n"),
			ed.HaskellBin("j", HaskellOptions{}, "main = pure ()\n"),
		)
		ed.Sed("k.sed", "p\n")
		ed.Python2("l.py", PythonOptions{}, "pass\n")
		pkg := ed.HaskellPackage("m-1", HaskellPackageOptions{
			Executables: map[string]string{"m": "main = pure ()\n"},
		})
		if pkg.Path != "" {
			t.Errorf("haskell package path '%s'", pkg.Path)
		}
	})
	testerr.Shall(err).BeNil(t)
	for i, a := range bins {
		if want := "bin/" + string(rune('a'+i)); a.Path != want {
			t.Errorf("artifact %d has path '%s', want '%s'", i, a.Path, want)
		}
	}
	err = Edit(w, func(ed Ed) {
		ed.HaskellPackage("m-1", HaskellPackageOptions{
			Executables: map[string]string{"m.sh": ""},
		})
	})
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("unexpected error %v", err)
	}
}
