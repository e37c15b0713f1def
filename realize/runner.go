package realize

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// Command is a process the realizer needs to run for Plan.
type Command struct {
	Plan *plankore.Plan
	Argv []string
	Dir  string
	Env  []string
}

type Runner interface {
	Run(ctx context.Context, cmd *Command) error
}

type RunnerFunc func(context.Context, *Command) error

func (f RunnerFunc) Run(ctx context.Context, cmd *Command) error { return f(ctx, cmd) }

// ExecRunner runs commands as OS processes. Each line of output is prefixed
// with the name of the plan.
type ExecRunner struct {
	// Defaults to os.Stderr
	Out   io.Writer
	Trace *plankore.Trace
}

func (r *ExecRunner) Run(ctx context.Context, cmd *Command) error {
	if len(cmd.Argv) == 0 {
		return errors.New("exec: empty command line")
	}
	out := r.Out
	if out == nil {
		out = os.Stderr
	}
	pw := newPrefixWriterString(out, cmd.Plan.Name()+"> ")
	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdout = pw
	c.Stderr = pw
	r.Trace.Debug("exec `cmd` in `dir`", `cmd`, c.String(), `dir`, c.Dir)
	err := c.Run()
	if pw.inLine {
		io.WriteString(out, "\n")
	}
	if err != nil {
		r.Trace.Warn("failed `cmd` in `dir` with `error`",
			`cmd`, c.String(),
			`dir`, c.Dir,
			`error`, err.Error(),
		)
	}
	return err
}
