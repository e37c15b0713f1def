package cli

import (
	"fmt"
	"io"

	"git.fractalqb.de/fractalqb/gomkw/mkfs"
	"git.fractalqb.de/fractalqb/gomkw/realize"
	"github.com/spf13/cobra"
)

type realized struct {
	Entry string   `json:"entry" yaml:"entry"`
	Out   string   `json:"out" yaml:"out"`
	Path  string   `json:"path,omitempty" yaml:"path,omitempty"`
	Files []string `json:"files,omitempty" yaml:"files,omitempty"`
}

func newRealizeCmd() *cobra.Command {
	var (
		store string
		match []string
		depth int
	)
	cmd := &cobra.Command{
		Use:   "realize <manifest> [entry…]",
		Short: "Build manifest entries into a local store",
		Long: `Build manifest entries into a local store directory.

Plans are run one after the other on the local machine without any sandbox.
Outputs already in the store are not built again. This is meant for testing
writers and manifests.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			_, ws, err := s.roots(args[1:]...)
			if err != nil {
				return err
			}
			r, err := realize.New(store, s.trace)
			if err != nil {
				return err
			}
			r.Runner = &realize.ExecRunner{Out: cmd.ErrOrStderr(), Trace: s.trace}
			var res []realized
			for _, w := range ws {
				out, err := r.Realize(cmd.Context(), w.Artifact.Plan)
				if err != nil {
					return err
				}
				rz := realized{Entry: w.Entry.Name, Out: out, Path: w.Artifact.Path}
				if w.Artifact.Path != "" {
					rz.Files, err = mkfs.DirFiles(".", depth, match...).List(out)
					if err != nil {
						return err
					}
				}
				res = append(res, rz)
			}
			format, _ := cmd.Root().PersistentFlags().GetString("format")
			return output(cmd.OutOrStdout(), format, res, func(w io.Writer) error {
				for _, rz := range res {
					if rz.Path == "" {
						fmt.Fprintf(w, "%s\t%s\n", rz.Entry, rz.Out)
						continue
					}
					fmt.Fprintf(w, "%s\t%s/%s\n", rz.Entry, rz.Out, rz.Path)
					for _, f := range rz.Files {
						fmt.Fprintf(w, "  %s\n", f)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&store, "store", "gomkw-store", "store directory")
	cmd.Flags().StringSliceVar(&match, "match", nil, "list only output files whose names match one of the patterns")
	cmd.Flags().IntVar(&depth, "depth", 0, "list output files at most that many path elements deep")
	return cmd
}
