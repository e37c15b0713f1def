package plankore

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

type Tracer interface {
	Debug(t *Trace, msg string, args ...any)
	Info(t *Trace, msg string, args ...any)
	Warn(t *Trace, msg string, args ...any)

	PlanConstructed(t *Trace, p *Plan)
	PlanInterned(t *Trace, p *Plan)

	RealizeStart(t *Trace, p *Plan)
	RealizeDone(t *Trace, p *Plan, out string, dt time.Duration)
	PlanUpToDate(t *Trace, p *Plan, out string)
	CheckFailed(t *Trace, p *Plan, err error)
}

type TraceLog int

var DefaultTraceLog TraceLog = TraceWarn

const (
	TraceWarn TraceLog = (1 << iota)
	TraceInfo
	TraceDebug
)

// Trace carries a [Tracer] through the construction and realization of
// plans. A nil *Trace is valid and traces nothing.
type Trace struct {
	root *traceRoot
	up   *Trace
	obj  any
	id   uint64
}

func NewTrace(ctx context.Context, t Tracer) *Trace {
	if ctx == nil {
		ctx = context.Background()
	}
	root := &traceRoot{ctx: ctx, tr: t}
	return &Trace{root: root}
}

func (t *Trace) Ctx() context.Context {
	if t == nil {
		return context.Background()
	}
	return t.root.ctx
}

func (t *Trace) tracer() Tracer {
	if t == nil || t.root.tr == nil {
		return nopTracer{}
	}
	return t.root.tr
}

func (t *Trace) Debug(msg string, args ...any) { t.tracer().Debug(t, msg, args...) }
func (t *Trace) Info(msg string, args ...any)  { t.tracer().Info(t, msg, args...) }
func (t *Trace) Warn(msg string, args ...any)  { t.tracer().Warn(t, msg, args...) }

func (t *Trace) PlanConstructed(p *Plan) { t.tracer().PlanConstructed(t, p) }
func (t *Trace) PlanInterned(p *Plan)    { t.tracer().PlanInterned(t, p) }

func (t *Trace) RealizeStart(p *Plan) { t.tracer().RealizeStart(t, p) }

func (t *Trace) RealizeDone(p *Plan, out string, dt time.Duration) {
	t.tracer().RealizeDone(t, p, out, dt)
}

func (t *Trace) PlanUpToDate(p *Plan, out string) { t.tracer().PlanUpToDate(t, p, out) }
func (t *Trace) CheckFailed(p *Plan, err error)   { t.tracer().CheckFailed(t, p, err) }

// PushPlan returns a sub-trace for working on plan p.
func (t *Trace) PushPlan(p *Plan) *Trace {
	if t == nil {
		return nil
	}
	return &Trace{
		root: t.root,
		up:   t,
		obj:  p,
		id:   t.root.idSeq.Add(1),
	}
}

func (t *Trace) TopTag() string {
	if t == nil {
		return ""
	}
	switch t.obj.(type) {
	case *Plan:
		return fmt.Sprintf("[%d]", t.id)
	case nil:
		return ""
	}
	return fmt.Sprintf("!%T!", t.obj)
}

func (t *Trace) Path() string {
	var sb strings.Builder
	sb.WriteByte('<')
	for ; t != nil; t = t.up {
		sb.WriteString(t.TopTag())
	}
	sb.WriteByte('>')
	return sb.String()
}

func (t *Trace) String() string { return t.Path() }

type traceRoot struct {
	ctx   context.Context
	tr    Tracer
	idSeq atomic.Uint64
}

type nopTracer struct{}

func (nopTracer) Debug(*Trace, string, ...any)                     {}
func (nopTracer) Info(*Trace, string, ...any)                      {}
func (nopTracer) Warn(*Trace, string, ...any)                      {}
func (nopTracer) PlanConstructed(*Trace, *Plan)                    {}
func (nopTracer) PlanInterned(*Trace, *Plan)                       {}
func (nopTracer) RealizeStart(*Trace, *Plan)                       {}
func (nopTracer) RealizeDone(*Trace, *Plan, string, time.Duration) {}
func (nopTracer) PlanUpToDate(*Trace, *Plan, string)               {}
func (nopTracer) CheckFailed(*Trace, *Plan, error)                 {}
