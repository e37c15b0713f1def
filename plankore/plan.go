package plankore

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"regexp"
	"slices"
	"strings"
)

// A Plan is an immutable description of one output-producing unit. Its output
// is produced by its [Operation] once all input plans have been built. Each
// plan has a content address [Plan.ID] computed from its name, operation and
// the IDs of its inputs. Two plans with the same ID describe the same build.
//
// Plans are created by an [Orchestrator].
type Plan struct {
	name   string
	inputs []*Plan
	op     Operation
	id     string
}

func (p *Plan) Name() string { return p.name }

// Inputs returns the plans that must be built before p. The returned slice must
// not be modified.
func (p *Plan) Inputs() []*Plan { return p.inputs }

func (p *Plan) Op() Operation { return p.op }

// ID returns the hex encoded content address of p.
func (p *Plan) ID() string { return p.id }

func (p *Plan) String() string {
	if p == nil {
		return "<nil:Plan>"
	}
	return p.id[:12] + "-" + p.name
}

func (p *Plan) Describe() string {
	if p.op == nil {
		return "implicit:" + p.name
	}
	return p.op.Describe(p)
}

// Walk calls do for p and all plans p depends on. Each plan is visited once
// and after all of its inputs.
func (p *Plan) Walk(do func(*Plan) error) error {
	seen := make(map[string]bool)
	var walk func(*Plan) error
	walk = func(q *Plan) error {
		if seen[q.id] {
			return nil
		}
		seen[q.id] = true
		for _, in := range q.inputs {
			if err := walk(in); err != nil {
				return err
			}
		}
		return do(q)
	}
	return walk(p)
}

// Input returns the direct input of p with the given id.
func (p *Plan) Input(id string) *Plan {
	for _, in := range p.inputs {
		if in.id == id {
			return in
		}
	}
	return nil
}

// An Operation describes how a [Plan] produces its output.
type Operation interface {
	// The hint is optional
	Describe(planHint *Plan) string
	WriteHash(h hash.Hash) error

	// Texts returns all strings of the operation that may contain [Ref]
	// placeholders.
	Texts() []string
}

const (
	refPrefix = "@{gomkw:"
	refSuffix = "}"
)

var refRx = regexp.MustCompile(`@\{gomkw:([0-9a-f]{64})\}`)

// Ref returns a placeholder for the output path of p. The placeholder can be
// used in the texts of other plans that have p as input. An orchestrator
// replaces it with the actual output path of p when the depending plan is
// built.
func Ref(p *Plan) string { return refPrefix + p.id + refSuffix }

// RefIDs returns the IDs of all plans referenced in text in order of their
// first appearance.
func RefIDs(text string) (ids []string) {
	for _, m := range refRx.FindAllStringSubmatch(text, -1) {
		if !slices.Contains(ids, m[1]) {
			ids = append(ids, m[1])
		}
	}
	return ids
}

// ReplaceRefs replaces all placeholders in text with the result of path. The
// first error returned by path is returned.
func ReplaceRefs(text string, path func(id string) (string, error)) (string, error) {
	var err error
	res := refRx.ReplaceAllStringFunc(text, func(ref string) string {
		if err != nil {
			return ref
		}
		id := ref[len(refPrefix) : len(ref)-len(refSuffix)]
		var p string
		p, err = path(id)
		return p
	})
	return res, err
}

func newPlan(name string, inputs []*Plan, op Operation) (*Plan, error) {
	p := &Plan{name: name, op: op}
	for _, in := range inputs {
		if in != nil && p.Input(in.id) == nil {
			p.inputs = append(p.inputs, in)
		}
	}
	slices.SortFunc(p.inputs, func(a, b *Plan) int { return strings.Compare(a.id, b.id) })
	for _, txt := range op.Texts() {
		for _, id := range RefIDs(txt) {
			if p.Input(id) == nil {
				return nil, fmt.Errorf("plan %s: undeclared reference to plan %s", name, id)
			}
		}
	}
	h := sha256.New()
	hashString(h, name)
	if err := op.WriteHash(h); err != nil {
		return nil, fmt.Errorf("plan %s: %w", name, err)
	}
	hashInt(h, len(p.inputs))
	for _, in := range p.inputs {
		hashString(h, in.id)
	}
	p.id = hex.EncodeToString(h.Sum(nil))
	return p, nil
}

func hashString(h hash.Hash, s string) {
	hashInt(h, len(s))
	io.WriteString(h, s)
}

func hashInt(h hash.Hash, i int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(i))
	h.Write(buf[:])
}

func hashStrings(h hash.Hash, ss []string) {
	hashInt(h, len(ss))
	for _, s := range ss {
		hashString(h, s)
	}
}
