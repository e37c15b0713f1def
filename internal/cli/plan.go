package cli

import (
	"fmt"
	"io"
	"strings"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
	"github.com/spf13/cobra"
)

type planInfo struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Describe string   `json:"describe" yaml:"describe"`
	Inputs   []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Entry    string   `json:"entry,omitempty" yaml:"entry,omitempty"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
}

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <manifest> [entry…]",
		Short: "Print the plans of manifest entries and all their inputs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			_, ws, err := s.roots(args[1:]...)
			if err != nil {
				return err
			}
			entries := make(map[string]Written)
			for _, w := range ws {
				entries[w.Artifact.Plan.ID()] = w
			}
			var infos []planInfo
			seen := make(map[string]bool)
			for _, w := range ws {
				w.Artifact.Plan.Walk(func(p *plankore.Plan) error {
					if seen[p.ID()] {
						return nil
					}
					seen[p.ID()] = true
					info := planInfo{ID: p.ID(), Name: p.Name(), Describe: p.Describe()}
					for _, in := range p.Inputs() {
						info.Inputs = append(info.Inputs, in.ID())
					}
					if e, ok := entries[p.ID()]; ok {
						info.Entry = e.Entry.Name
						info.Path = e.Artifact.Path
					}
					infos = append(infos, info)
					return nil
				})
			}
			format, _ := cmd.Root().PersistentFlags().GetString("format")
			return output(cmd.OutOrStdout(), format, infos, func(w io.Writer) error {
				for _, info := range infos {
					mark := " "
					if info.Entry != "" {
						mark = "*"
					}
					fmt.Fprintf(w, "%s %s-%s\t%s\n", mark, info.ID[:12], info.Name, info.Describe)
					if len(info.Inputs) > 0 {
						short := make([]string, len(info.Inputs))
						for i, in := range info.Inputs {
							short[i] = in[:12]
						}
						fmt.Fprintf(w, "    <- %s\n", strings.Join(short, " "))
					}
				}
				return nil
			})
		},
	}
}

func newDotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dot <manifest> [entry…]",
		Short: "Write the plan graph in graphviz dot format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			roots, _, err := s.roots(args[1:]...)
			if err != nil {
				return err
			}
			_, err = plankore.WriteDot(cmd.OutOrStdout(), args[0], roots...)
			return err
		},
	}
}

func newWritersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "writers",
		Short: "List the writers usable in manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Root().PersistentFlags().GetString("format")
			ws := Writers()
			return output(cmd.OutOrStdout(), format, ws, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, strings.Join(ws, "\n"))
				return err
			})
		},
	}
}
