package plankore

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Orchestrator is what the writer library knows about the build system that
// eventually builds its plans.
type Orchestrator interface {
	// ConstructOutput returns a plan that writes a text to a file.
	ConstructOutput(name string, spec OutputSpec) (*Plan, error)

	// RunIsolated returns a plan that runs a script in an isolated
	// environment and captures the output tree the script creates at $out.
	RunIsolated(name string, env IsolatedEnv) (*Plan, error)
}

type OutputSpec struct {
	Text        string
	Executable  bool
	Destination string // Relative path in the output, empty for a single file
	Check       *Plan
	Inputs      []*Plan // Plans referenced from Text
}

type IsolatedEnv struct {
	Builder []string // Command line the path of the script is appended to
	Script  string
	Vars    map[string]string
	Inputs  []*Plan // Plans referenced from Builder, Script or Vars
}

// DefaultPlanCache is the number of plans a [Planner] keeps for interning.
const DefaultPlanCache = 4096

// Planner is the reference [Orchestrator]. It constructs plans without any
// side effects. Plans with equal IDs that are constructed while the first is
// still cached are returned as the same *Plan. Planner is safe for concurrent
// use.
type Planner struct {
	trace *Trace
	plans *lru.Cache[string, *Plan]
}

var _ Orchestrator = (*Planner)(nil)

func NewPlanner(tr *Trace, cacheSize int) (*Planner, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultPlanCache
	}
	cache, err := lru.New[string, *Plan](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("new planner: %w", err)
	}
	return &Planner{trace: tr, plans: cache}, nil
}

func (pl *Planner) Trace() *Trace { return pl.trace }

func (pl *Planner) ConstructOutput(name string, spec OutputSpec) (*Plan, error) {
	if !BareFilename.Match(name) {
		return nil, &InvalidNameError{Name: name, Expect: []Grammar{BareFilename}}
	}
	if spec.Destination != "" && !RelativePath.Match(spec.Destination) {
		return nil, &InvalidNameError{Name: spec.Destination, Expect: []Grammar{RelativePath}}
	}
	inputs := spec.Inputs
	if spec.Check != nil {
		if op, ok := spec.Check.Op().(*OutputOp); !ok || op.Destination != "" || !op.Executable {
			return nil, fmt.Errorf("output %s: check %s is not an executable file",
				name,
				spec.Check,
			)
		}
		inputs = append(slices.Clip(inputs), spec.Check)
	}
	p, err := newPlan(name, inputs, &OutputOp{
		Text:        spec.Text,
		Executable:  spec.Executable,
		Destination: spec.Destination,
		Check:       spec.Check,
	})
	if err != nil {
		return nil, err
	}
	return pl.intern(p), nil
}

func (pl *Planner) RunIsolated(name string, env IsolatedEnv) (*Plan, error) {
	if !BareFilename.Match(name) {
		return nil, &InvalidNameError{Name: name, Expect: []Grammar{BareFilename}}
	}
	if len(env.Builder) == 0 {
		return nil, errors.New("isolated run " + name + " without builder")
	}
	if _, ok := env.Vars["out"]; ok {
		return nil, fmt.Errorf("isolated run %s must not set variable 'out'", name)
	}
	for k := range env.Vars {
		if k == "" || !envKeyOK(k) {
			return nil, fmt.Errorf("isolated run %s: illegal variable name '%s'", name, k)
		}
	}
	p, err := newPlan(name, env.Inputs, &IsolatedOp{
		Builder: slices.Clone(env.Builder),
		Script:  env.Script,
		Vars:    maps.Clone(env.Vars),
	})
	if err != nil {
		return nil, err
	}
	return pl.intern(p), nil
}

func (pl *Planner) intern(p *Plan) *Plan {
	if prev, ok, _ := pl.plans.PeekOrAdd(p.ID(), p); ok {
		pl.trace.PlanInterned(prev)
		return prev
	}
	pl.trace.PlanConstructed(p)
	return p
}
