package realize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.fractalqb.de/fractalqb/gomkw"
	"git.fractalqb.de/fractalqb/gomkw/plankore"
	"git.fractalqb.de/fractalqb/testerr"
)

func testWriters(t *testing.T) *gomkw.Writers {
	tr := plankore.NewTrace(context.Background(), gomkw.TestTracer{T: t})
	return testerr.Shall1(gomkw.New(gomkw.Config{
		Trace:     tr,
		PkgConfig: gomkw.StaticPkgConfig{},
	})).BeNil(t)
}

func testRealizer(t *testing.T, run RunnerFunc) *Realizer {
	r := testerr.Shall1(New(t.TempDir(), nil)).BeNil(t)
	if run != nil {
		r.Runner = run
	}
	return r
}

func TestRealize_checkFailed(t *testing.T) {
	w := testWriters(t)
	x := testerr.Shall1(w.WritePython3("x", gomkw.PythonOptions{}, "import os")).BeNil(t)
	var checks int
	r := testRealizer(t, func(_ context.Context, cmd *Command) error {
		if strings.HasSuffix(cmd.Argv[0], "python3check.sh") {
			checks++
			return errors.New("exit status 1")
		}
		t.Errorf("unexpected command %v", cmd.Argv)
		return nil
	})
	_, err := r.Realize(context.Background(), x.Plan)
	if !errors.Is(err, gomkw.ErrCheckFailed) {
		t.Fatalf("expected failed check, got %v", err)
	}
	var cfe *gomkw.CheckFailedError
	if !errors.As(err, &cfe) {
		t.Fatalf("not a CheckFailedError: %T", err)
	}
	if cfe.Plan != x.Plan.String() {
		t.Errorf("check failed for %s", cfe.Plan)
	}
	if checks != 1 {
		t.Errorf("check ran %d times", checks)
	}
	if _, err := os.Lstat(r.OutPath(x.Plan)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output of failed check exists: %v", err)
	}
	ls := testerr.Shall1(os.ReadDir(r.Store)).BeNil(t)
	for _, e := range ls {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temporary directory %s left in store", e.Name())
		}
	}
}

func TestRealize_outputs(t *testing.T) {
	w := testWriters(t)
	script := testerr.Shall1(w.WriteDash("/bin/hello", "echo hello\n")).BeNil(t)
	r := testRealizer(t, func(_ context.Context, cmd *Command) error {
		t.Errorf("unexpected command %v", cmd.Argv)
		return nil
	})
	out := testerr.Shall1(r.Realize(context.Background(), script.Plan)).BeNil(t)
	path := filepath.Join(out, "bin", "hello")
	data := testerr.Shall1(os.ReadFile(path)).BeNil(t)
	if s := string(data); s != "#!/bin/dash\necho hello\n" {
		t.Errorf("unexpected script %q", s)
	}
	st := testerr.Shall1(os.Stat(path)).BeNil(t)
	if st.Mode()&0111 == 0 {
		t.Error("script is not executable")
	}
}

func TestRealize_atMostOnce(t *testing.T) {
	w := testWriters(t)
	txt := testerr.Shall1(w.WriteText("data.txt", "42\n")).BeNil(t)
	tree := testerr.Shall1(w.Tree("tree", map[string]gomkw.Artifact{"share/data.txt": txt})).BeNil(t)
	var runs int
	run := func(_ context.Context, cmd *Command) error {
		runs++
		if cmd.Plan != tree.Plan {
			t.Errorf("unexpected plan %s", cmd.Plan)
		}
		script := testerr.Shall1(os.ReadFile(cmd.Argv[len(cmd.Argv)-1])).BeNil(t)
		if strings.Contains(string(script), "@{gomkw:") {
			t.Errorf("unreplaced reference in script:\n%s", script)
		}
		return os.Mkdir(outVar(cmd), 0777)
	}
	r := testRealizer(t, run)
	out1 := testerr.Shall1(r.Realize(context.Background(), tree.Plan)).BeNil(t)
	out2 := testerr.Shall1(r.Realize(context.Background(), tree.Plan)).BeNil(t)
	if out1 != out2 {
		t.Errorf("different outputs %s / %s", out1, out2)
	}
	r2 := &Realizer{Store: r.Store, Runner: RunnerFunc(run)}
	out3 := testerr.Shall1(r2.Realize(context.Background(), tree.Plan)).BeNil(t)
	if out3 != out1 {
		t.Errorf("different outputs %s / %s", out1, out3)
	}
	if runs != 1 {
		t.Errorf("tree built %d times", runs)
	}
}

func TestRealize_execTree(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	w := testWriters(t)
	txt := testerr.Shall1(w.WriteText("data.txt", "42\n")).BeNil(t)
	tree := testerr.Shall1(w.Tree("tree", map[string]gomkw.Artifact{"share/data.txt": txt})).BeNil(t)
	r := testRealizer(t, nil)
	out := testerr.Shall1(r.Realize(context.Background(), tree.Plan)).BeNil(t)
	data := testerr.Shall1(os.ReadFile(filepath.Join(out, "share", "data.txt"))).BeNil(t)
	if string(data) != "42\n" {
		t.Errorf("unexpected tree file content %q", data)
	}
}

func TestRealize_pythonEnvPath(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	lib := t.TempDir()
	site := filepath.Join(lib, "lib", "python3", "site-packages")
	testerr.Shall(os.MkdirAll(site, 0777)).BeNil(t)
	testerr.Shall(os.WriteFile(filepath.Join(site, "greet.py"), []byte("X = 1\n"), 0666)).BeNil(t)

	w := testWriters(t)
	x := testerr.Shall1(w.WritePython3("x", gomkw.PythonOptions{
		Libraries: []gomkw.Package{{Name: "greet", Root: lib}},
	}, "import greet\n")).BeNil(t)
	var env *plankore.Plan
	x.Plan.Walk(func(p *plankore.Plan) error {
		if p.Name() == "python3-env" {
			env = p
		}
		return nil
	})
	if env == nil {
		t.Fatal("no python environment plan")
	}
	r := testRealizer(t, nil)
	out := testerr.Shall1(r.Realize(context.Background(), env)).BeNil(t)
	if out != r.OutPath(env) {
		t.Errorf("realized to %s, want %s", out, r.OutPath(env))
	}
	wrapper := testerr.Shall1(os.ReadFile(filepath.Join(out, "bin", "python"))).BeNil(t)
	if want := "PYTHONPATH=" + out + "/lib/python3/site-packages"; !strings.Contains(string(wrapper), want) {
		t.Errorf("wrapper misses %s:\n%s", want, wrapper)
	}
	if _, err := os.Stat(filepath.Join(out, "lib", "python3", "site-packages", "greet.py")); err != nil {
		t.Errorf("library not linked: %s", err)
	}
	if _, err := os.Stat(out + partialSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial marker left: %v", err)
	}
}

func outVar(cmd *Command) string {
	for _, e := range cmd.Env {
		if v, ok := strings.CutPrefix(e, "out="); ok {
			return v
		}
	}
	return ""
}

func TestRealize_failedBuild(t *testing.T) {
	w := testWriters(t)
	txt := testerr.Shall1(w.WriteText("data.txt", "42\n")).BeNil(t)
	tree := testerr.Shall1(w.Tree("tree", map[string]gomkw.Artifact{"share/data.txt": txt})).BeNil(t)
	var r *Realizer
	r = testRealizer(t, func(_ context.Context, cmd *Command) error {
		out := outVar(cmd)
		if out != r.OutPath(cmd.Plan) {
			t.Errorf("build out is %s, want %s", out, r.OutPath(cmd.Plan))
		}
		if err := os.MkdirAll(filepath.Join(out, "share"), 0777); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(out, "share", "half"), nil, 0666); err != nil {
			return err
		}
		return errors.New("exit status 2")
	})
	if _, err := r.Realize(context.Background(), tree.Plan); err == nil {
		t.Fatal("failed build realized")
	}
	out := r.OutPath(tree.Plan)
	if _, err := os.Lstat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial output left: %v", err)
	}
	if _, err := os.Lstat(out + partialSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial marker left: %v", err)
	}
	for _, e := range testerr.Shall1(os.ReadDir(r.Store)).BeNil(t) {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temporary directory %s left in store", e.Name())
		}
	}
}

func TestRealize_partialRebuilt(t *testing.T) {
	w := testWriters(t)
	txt := testerr.Shall1(w.WriteText("data.txt", "42\n")).BeNil(t)
	tree := testerr.Shall1(w.Tree("tree", map[string]gomkw.Artifact{"share/data.txt": txt})).BeNil(t)
	var runs int
	r := testRealizer(t, func(_ context.Context, cmd *Command) error {
		runs++
		out := outVar(cmd)
		if _, err := os.Lstat(filepath.Join(out, "stale")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("stale partial output not removed: %v", err)
		}
		return os.Mkdir(out, 0777)
	})
	out := r.OutPath(tree.Plan)
	testerr.Shall(os.MkdirAll(filepath.Join(out, "stale"), 0777)).BeNil(t)
	testerr.Shall(os.WriteFile(out+partialSuffix, nil, 0666)).BeNil(t)

	testerr.Shall1(r.Realize(context.Background(), tree.Plan)).BeNil(t)
	if runs != 1 {
		t.Errorf("partial output not rebuilt, %d runs", runs)
	}
	if _, err := os.Lstat(out + partialSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial marker left: %v", err)
	}
}
