package gomkw

import (
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// TestTracer logs all trace events to a test.
type TestTracer struct{ T testing.TB }

var _ plankore.Tracer = TestTracer{}

func (tr TestTracer) Debug(t *plankore.Trace, msg string, args ...any) {
	tr.T.Logf("gomkw-DEBUG: %s %v", msg, args)
}

func (tr TestTracer) Info(t *plankore.Trace, msg string, args ...any) {
	tr.T.Logf("gomkw-INFO: %s %v", msg, args)
}

func (tr TestTracer) Warn(t *plankore.Trace, msg string, args ...any) {
	tr.T.Logf("gomkw-WARN: %s %v", msg, args)
}

func (tr TestTracer) PlanConstructed(t *plankore.Trace, p *plankore.Plan) {
	tr.T.Logf("gomkw-PlanConstructed: %s", p)
}

func (tr TestTracer) PlanInterned(t *plankore.Trace, p *plankore.Plan) {
	tr.T.Logf("gomkw-PlanInterned: %s", p)
}

func (tr TestTracer) RealizeStart(t *plankore.Trace, p *plankore.Plan) {
	tr.T.Logf("gomkw-RealizeStart: %s", p)
}

func (tr TestTracer) RealizeDone(t *plankore.Trace, p *plankore.Plan, out string, dt time.Duration) {
	tr.T.Logf("gomkw-RealizeDone: %s -> %s %s", p, out, dt)
}

func (tr TestTracer) PlanUpToDate(t *plankore.Trace, p *plankore.Plan, out string) {
	tr.T.Logf("gomkw-PlanUpToDate: %s -> %s", p, out)
}

func (tr TestTracer) CheckFailed(t *plankore.Trace, p *plankore.Plan, err error) {
	tr.T.Logf("gomkw-CheckFailed: %s: %s", p, err)
}
