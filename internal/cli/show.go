package cli

import (
	"fmt"
	"io"
	"strings"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "show <manifest> <entry>",
		Short: "Show the generated texts of a manifest entry",
		Long: `Show the generated texts of a manifest entry.

For scripts this is the script itself. For compiled artifacts it is the
source and the build script. References to other plans are shown as
placeholders.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			_, ws, err := s.roots(args[1])
			if err != nil {
				return err
			}
			p := ws[0].Artifact.Plan
			out := cmd.OutOrStdout()
			colored := useColor(color, out)
			texts := showTexts(p)
			for i, t := range texts {
				if len(texts) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "# %s\n", t.plan)
				}
				if colored {
					err = highlight(out, t.name, t.text)
				} else {
					_, err = io.WriteString(out, t.text)
				}
				if err != nil {
					return err
				}
				if !strings.HasSuffix(t.text, "\n") {
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "auto", "highlight output: auto|always|never")
	return cmd
}

type shownText struct {
	plan *plankore.Plan
	name string
	text string
}

// showTexts returns the texts of p. For an isolated run these are the texts
// of its direct output inputs followed by its script.
func showTexts(p *plankore.Plan) (res []shownText) {
	switch op := p.Op().(type) {
	case *plankore.OutputOp:
		res = append(res, shownText{p, p.Name(), op.Text})
	case *plankore.IsolatedOp:
		for _, in := range p.Inputs() {
			if iop, ok := in.Op().(*plankore.OutputOp); ok && iop.Destination == "" && !iop.Executable {
				res = append(res, shownText{in, in.Name(), iop.Text})
			}
		}
		res = append(res, shownText{p, p.Name() + ".sh", op.Script})
	}
	return res
}
