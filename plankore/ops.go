package plankore

import (
	"fmt"
	"hash"
	"maps"
	"slices"
	"strings"
)

// OutputOp writes Text to a single file. When Destination is empty the output
// of the plan is that file. Otherwise the output is a directory tree with the
// file at the relative path Destination.
type OutputOp struct {
	Text        string
	Executable  bool
	Destination string

	// The output is only considered to be built when Check, run with the
	// path of the written file as its only argument, succeeds. Check must
	// be a plan whose output is a single executable file.
	Check *Plan
}

var _ Operation = (*OutputOp)(nil)

func (op *OutputOp) Describe(p *Plan) string {
	var sb strings.Builder
	sb.WriteString("write")
	if op.Executable {
		sb.WriteString(" executable")
	}
	if p != nil {
		sb.WriteByte(' ')
		sb.WriteString(p.Name())
	}
	if op.Destination != "" {
		sb.WriteString(" to /")
		sb.WriteString(op.Destination)
	}
	if op.Check != nil {
		fmt.Fprintf(&sb, " checked by %s", op.Check.Name())
	}
	return sb.String()
}

func (op *OutputOp) WriteHash(h hash.Hash) error {
	hashString(h, "output")
	hashString(h, op.Text)
	if op.Executable {
		hashInt(h, 1)
	} else {
		hashInt(h, 0)
	}
	hashString(h, op.Destination)
	if op.Check == nil {
		hashString(h, "")
	} else {
		hashString(h, op.Check.ID())
	}
	return nil
}

func (op *OutputOp) Texts() []string { return []string{op.Text} }

// IsolatedOp runs Script with the command line Builder in an isolated
// environment. Only Vars and the variable "out" are set in the environment.
// The script must create its output at $out.
type IsolatedOp struct {
	Builder []string
	Script  string
	Vars    map[string]string
}

var _ Operation = (*IsolatedOp)(nil)

func (op *IsolatedOp) Describe(p *Plan) string {
	var sb strings.Builder
	sb.WriteString("run")
	if p != nil {
		sb.WriteByte(' ')
		sb.WriteString(p.Name())
	}
	if len(op.Builder) > 0 {
		fmt.Fprintf(&sb, " with %s", op.Builder[0])
	}
	return sb.String()
}

func (op *IsolatedOp) WriteHash(h hash.Hash) error {
	if len(op.Builder) == 0 {
		return fmt.Errorf("isolated run without builder")
	}
	hashString(h, "isolated")
	hashStrings(h, op.Builder)
	hashString(h, op.Script)
	keys := slices.Sorted(maps.Keys(op.Vars))
	hashInt(h, len(keys))
	for _, k := range keys {
		hashString(h, k)
		hashString(h, op.Vars[k])
	}
	return nil
}

func (op *IsolatedOp) Texts() []string {
	txts := make([]string, 0, 1+len(op.Builder)+len(op.Vars))
	txts = append(txts, op.Script)
	txts = append(txts, op.Builder...)
	for _, v := range op.Vars {
		txts = append(txts, v)
	}
	return txts
}
