package plankore

import (
	"fmt"
	"io"
	"strings"
)

func escDotID(id string) string {
	return strings.ReplaceAll(id, "\"", "\\\"")
}

// WriteDot writes the graph of the plans roots and all their inputs in the
// graphviz dot language to w.
func WriteDot(w io.Writer, name string, roots ...*Plan) (n int, err error) {
	defer func() {
		if p := recover(); p != nil {
			switch p := p.(type) {
			case error:
				err = p
			default:
				panic(p)
			}
		}
	}()
	akku := func(p int, err error) {
		n += p
		if err != nil {
			panic(err)
		}
	}
	isRoot := make(map[string]bool, len(roots))
	for _, r := range roots {
		isRoot[r.ID()] = true
	}
	seen := make(map[string]bool)
	akku(fmt.Fprintf(w, "digraph \"%s\" {\n\trankdir=\"LR\"\n", escDotID(name)))
	for _, root := range roots {
		root.Walk(func(p *Plan) error {
			if seen[p.ID()] {
				return nil
			}
			seen[p.ID()] = true
			var shape, style string
			switch op := p.Op().(type) {
			case *OutputOp:
				shape = "note"
				if op.Destination != "" {
					shape = "folder"
				}
			case *IsolatedOp:
				shape = "box"
			default:
				shape = "none"
			}
			if isRoot[p.ID()] {
				style = ",style=bold"
			}
			akku(fmt.Fprintf(w, "\t\"%s\" [shape=%s%s,label=\"%s\\n%s\"];\n",
				p.ID(),
				shape,
				style,
				escDotID(p.Name()),
				escDotID(p.Describe()),
			))
			for _, in := range p.Inputs() {
				var lb string
				if op, ok := p.Op().(*OutputOp); ok && op.Check == in {
					lb = " [label=check,style=dashed]"
				}
				akku(fmt.Fprintf(w, "\t\"%s\" -> \"%s\"%s;\n", in.ID(), p.ID(), lb))
			}
			return nil
		})
	}
	akku(fmt.Fprintln(w, "}"))
	return
}
