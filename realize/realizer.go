package realize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"git.fractalqb.de/fractalqb/gomkw/mkfs"
	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

const (
	scriptFile    = "builder-script"
	workDir       = "work"
	partialSuffix = ".partial"
)

// Realizer realizes plans into Store. Each plan is realized at most once per
// store. Plans are built in place at their store path, so texts that refer
// to $out stay valid. While a plan is built a marker file next to its output
// flags the output as partial. Partial outputs are removed when the build
// fails and before a plan is built again.
type Realizer struct {
	Store  string
	Runner Runner
	// Environment of check commands
	Env   *plankore.Env
	Trace *plankore.Trace

	mu   sync.Mutex
	done map[string]string
}

// New creates the store directory if needed.
func New(store string, tr *plankore.Trace) (*Realizer, error) {
	store, err := filepath.Abs(store)
	if err != nil {
		return nil, err
	}
	if err = mkfs.MkDirs(tr, store, 0, mkfs.DirTree{Dir: "."}); err != nil {
		return nil, fmt.Errorf("realize store: %w", err)
	}
	return &Realizer{
		Store:  store,
		Runner: &ExecRunner{Trace: tr},
		Env:    plankore.OSEnv(tr, "PATH", "HOME", "LANG"),
		Trace:  tr,
	}, nil
}

// OutPath returns the store path of p's output.
func (r *Realizer) OutPath(p *plankore.Plan) string {
	return filepath.Join(r.Store, r.outName(p))
}

func (r *Realizer) outName(p *plankore.Plan) string { return p.ID()[:32] + "-" + p.Name() }

// Realize realizes p and all its inputs. It returns the store path of p's
// output.
func (r *Realizer) Realize(ctx context.Context, p *plankore.Plan) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		r.done = make(map[string]string)
	}
	return r.realize(ctx, r.Trace, p)
}

func (r *Realizer) realize(ctx context.Context, tr *plankore.Trace, p *plankore.Plan) (string, error) {
	if out, ok := r.done[p.ID()]; ok {
		return out, nil
	}
	for _, in := range p.Inputs() {
		if _, err := r.realize(ctx, tr, in); err != nil {
			return "", err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := r.outName(p)
	out := r.OutPath(p)
	marker := mkfs.File(name + partialSuffix)
	if partial, err := mkfs.Exists(marker, r.Store); err != nil {
		return "", err
	} else if partial {
		tr.Warn("removing partial `output`", `output`, out)
		if err := r.clear(name); err != nil {
			return "", err
		}
	} else if ok, err := mkfs.Exists(mkfs.File(name), r.Store); err != nil {
		return "", err
	} else if ok {
		tr.PlanUpToDate(p, out)
		r.done[p.ID()] = out
		return out, nil
	}

	ptr := tr.PushPlan(p)
	ptr.RealizeStart(p)
	start := time.Now()
	if err := os.WriteFile(mkfs.AbsPath(marker, r.Store), nil, 0644); err != nil {
		return "", err
	}
	err := r.build(ctx, ptr, p, out)
	if err == nil {
		if ok, xerr := mkfs.Exists(mkfs.File(name), r.Store); xerr != nil {
			err = xerr
		} else if !ok {
			err = errors.New("no output")
		}
	}
	if err != nil {
		if cerr := r.clear(name); cerr != nil {
			ptr.Warn("cannot remove partial `output`: `err`", `output`, out, `err`, cerr)
		}
		return "", fmt.Errorf("realize %s: %w", p, err)
	}
	if err := marker.Remove(r.Store); err != nil {
		return "", err
	}
	ptr.RealizeDone(p, out, time.Since(start))
	r.done[p.ID()] = out
	return out, nil
}

// build runs the operation of p with a temporary directory for the work
// directory, scripts and TMPDIR.
func (r *Realizer) build(ctx context.Context, tr *plankore.Trace, p *plankore.Plan, out string) error {
	tmp, err := os.MkdirTemp(r.Store, ".tmp-"+p.Name()+"-")
	if err != nil {
		return err
	}
	defer func() {
		if err := mkfs.Clear(r.Store, filepath.Base(tmp)); err != nil {
			tr.Warn("cannot remove `tmp`: `err`", `tmp`, tmp, `err`, err)
		}
	}()
	switch op := p.Op().(type) {
	case *plankore.OutputOp:
		return r.writeOutput(ctx, tr, p, op, tmp, out)
	case *plankore.IsolatedOp:
		return r.runIsolated(ctx, p, op, tmp, out)
	}
	return fmt.Errorf("cannot realize operation %T", p.Op())
}

// clear removes the output with the store name and its partial marker.
func (r *Realizer) clear(name string) error {
	if err := mkfs.Clear(r.Store, name); err != nil {
		return err
	}
	return mkfs.File(name + partialSuffix).Remove(r.Store)
}

func (r *Realizer) refPath(p *plankore.Plan) func(string) (string, error) {
	return func(id string) (string, error) {
		if p.Input(id) == nil {
			return "", fmt.Errorf("plan %s references undeclared input %s", p, id)
		}
		out, ok := r.done[id]
		if !ok {
			return "", fmt.Errorf("input %s of plan %s not realized", id, p)
		}
		return out, nil
	}
}

func (r *Realizer) writeOutput(
	ctx context.Context,
	tr *plankore.Trace,
	p *plankore.Plan,
	op *plankore.OutputOp,
	tmp, out string,
) error {
	text, err := plankore.ReplaceRefs(op.Text, r.refPath(p))
	if err != nil {
		return err
	}
	file := out
	if op.Destination != "" {
		dst := mkfs.File(op.Destination)
		if err := mkfs.MkDirs(tr, out, 0, dst); err != nil {
			return err
		}
		file = mkfs.AbsPath(dst, out)
	}
	var mode os.FileMode = 0644
	if op.Executable {
		mode = 0755
	}
	if err := os.WriteFile(file, []byte(text), mode); err != nil {
		return err
	}
	if op.Check == nil {
		return nil
	}
	chk, ok := r.done[op.Check.ID()]
	if !ok {
		return fmt.Errorf("check %s not realized", op.Check)
	}
	env := r.Env.Sub()
	env.SetVar("TMPDIR", tmp)
	xenv, err := env.ExecEnv()
	if err != nil {
		tr.Warn(err.Error())
	}
	err = r.Runner.Run(ctx, &Command{
		Plan: p,
		Argv: []string{chk, file},
		Dir:  tmp,
		Env:  xenv,
	})
	if err != nil {
		err = &plankore.CheckFailedError{
			Plan:  p.String(),
			Check: op.Check.String(),
			Err:   err,
		}
		tr.CheckFailed(p, err)
		return err
	}
	return nil
}

func (r *Realizer) runIsolated(
	ctx context.Context,
	p *plankore.Plan,
	op *plankore.IsolatedOp,
	tmp, out string,
) error {
	refs := r.refPath(p)
	argv := make([]string, 0, len(op.Builder)+1)
	for _, a := range op.Builder {
		a, err := plankore.ReplaceRefs(a, refs)
		if err != nil {
			return err
		}
		argv = append(argv, a)
	}
	script, err := plankore.ReplaceRefs(op.Script, refs)
	if err != nil {
		return err
	}
	scriptPath := filepath.Join(tmp, scriptFile)
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return err
	}
	argv = append(argv, scriptPath)
	work := filepath.Join(tmp, workDir)
	if err := os.Mkdir(work, 0777); err != nil {
		return err
	}
	vars := make(map[string]string, len(op.Vars))
	for k, v := range op.Vars {
		v, err := plankore.ReplaceRefs(v, refs)
		if err != nil {
			return err
		}
		vars[k] = v
	}
	var env plankore.Env
	env.SetVarsMap(vars)
	env.SetVar("out", out)
	env.SetVar("TMPDIR", tmp)
	if _, ok := env.Var("HOME"); !ok {
		env.SetVar("HOME", work)
	}
	xenv, err := env.ExecEnv()
	if err != nil {
		return err
	}
	return r.Runner.Run(ctx, &Command{
		Plan: p,
		Argv: argv,
		Dir:  work,
		Env:  xenv,
	})
}
