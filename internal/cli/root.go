// Package cli implements the gomkw command line tool.
package cli

import (
	"context"
	"os"

	"git.fractalqb.de/fractalqb/gomkw"
	"git.fractalqb.de/fractalqb/gomkw/plankore"
	"github.com/spf13/cobra"
)

// NewRoot builds the top-level gomkw command.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "gomkw",
		Short:         "gomkw: build plans for generated executables",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().String("toolchain", "", "YAML toolchain file")
	root.PersistentFlags().StringSlice("env", nil, ".env files with GOMKW_* toolchain variables")
	root.PersistentFlags().String("trace", "warn", "trace level: off|warn|info|debug")
	root.PersistentFlags().StringP("format", "F", "", "output format: json|yaml|text")

	root.AddCommand(
		newPlanCmd(),
		newDotCmd(),
		newShowCmd(),
		newRealizeCmd(),
		newWritersCmd(),
	)
	return root
}

type session struct {
	trace   *plankore.Trace
	writers *gomkw.Writers
	written []Written
}

// openSession sets up tracing and writers from the root flags and writes all
// entries of the manifest file.
func openSession(cmd *cobra.Command, manifest string) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	tracer := &gomkw.WriteTracer{W: os.Stderr, Log: plankore.DefaultTraceLog}
	lvl, _ := flags.GetString("trace")
	if err := tracer.ParseLogFlag(lvl); err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s := &session{trace: plankore.NewTrace(ctx, tracer)}

	var (
		tc  gomkw.Toolchain
		err error
	)
	if file, _ := flags.GetString("toolchain"); file != "" {
		tc, err = gomkw.ReadToolchainFile(file)
	} else {
		envs, _ := flags.GetStringSlice("env")
		tc, err = gomkw.LoadToolchain(envs...)
	}
	if err != nil {
		return nil, err
	}
	s.writers, err = gomkw.New(gomkw.Config{Toolchain: &tc, Trace: s.trace})
	if err != nil {
		return nil, err
	}
	m, err := LoadManifest(manifest)
	if err != nil {
		return nil, err
	}
	if s.written, err = m.Write(s.writers); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) roots(names ...string) ([]*plankore.Plan, []Written, error) {
	ws, err := Lookup(s.written, names...)
	if err != nil {
		return nil, nil, err
	}
	ps := make([]*plankore.Plan, len(ws))
	for i, w := range ws {
		ps[i] = w.Artifact.Plan
	}
	return ps, ws, nil
}
