package gomkw

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
	"git.fractalqb.de/fractalqb/sllm/v3"
)

type WriteTracer struct {
	W   io.Writer
	Log plankore.TraceLog
}

var _ plankore.Tracer = (*WriteTracer)(nil)

func DefaultTracer() plankore.Tracer {
	return &WriteTracer{W: os.Stderr, Log: plankore.DefaultTraceLog}
}

func (tr *WriteTracer) ParseLogFlag(f string) error {
	switch f {
	case "":
		return nil
	case "off":
		tr.Log = 0
	case "warn", "w":
		tr.Log = plankore.TraceWarn
	case "info", "i":
		tr.Log = plankore.TraceWarn | plankore.TraceInfo
	case "debug", "d":
		tr.Log = plankore.TraceWarn | plankore.TraceInfo | plankore.TraceDebug
	default:
		return fmt.Errorf("write tracer: illegal log flag '%s'", f)
	}
	return nil
}

func (tr *WriteTracer) Debug(t *plankore.Trace, msg string, args ...any) {
	if tr.Log&plankore.TraceDebug == 0 {
		return
	}
	fmt.Fprintf(tr.W, "%s\t  DEBUG ", t.TopTag())
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr *WriteTracer) Info(t *plankore.Trace, msg string, args ...any) {
	if tr.Log&(plankore.TraceInfo|plankore.TraceDebug) == 0 {
		return
	}
	fmt.Fprintf(tr.W, "%s\t  INFO  ", t.TopTag())
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr *WriteTracer) Warn(t *plankore.Trace, msg string, args ...any) {
	if tr.Log&(plankore.TraceWarn|plankore.TraceInfo|plankore.TraceDebug) == 0 {
		return
	}
	fmt.Fprintf(tr.W, "%s\t  WARN  ", t.TopTag())
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr *WriteTracer) logPlans() bool {
	return tr.Log&(plankore.TraceInfo|plankore.TraceDebug) != 0
}

func (tr *WriteTracer) PlanConstructed(t *plankore.Trace, p *plankore.Plan) {
	if tr.Log&plankore.TraceDebug != 0 {
		fmt.Fprintf(tr.W, "%s\t+ [%s] %s\n", t.TopTag(), p, p.Describe())
	}
}

func (tr *WriteTracer) PlanInterned(t *plankore.Trace, p *plankore.Plan) {
	if tr.Log&plankore.TraceDebug != 0 {
		fmt.Fprintf(tr.W, "%s\t= [%s] already planned\n", t.TopTag(), p)
	}
}

func (tr *WriteTracer) RealizeStart(t *plankore.Trace, p *plankore.Plan) {
	if tr.logPlans() {
		fmt.Fprintf(tr.W, "%s\t{ realize [%s] %s\n", t.TopTag(), p, p.Describe())
	}
}

func (tr *WriteTracer) RealizeDone(t *plankore.Trace, p *plankore.Plan, out string, dt time.Duration) {
	if tr.logPlans() {
		fmt.Fprintf(tr.W, "%s\t} realized [%s] to %s took %s\n", t.TopTag(), p, out, dt)
	}
}

func (tr *WriteTracer) PlanUpToDate(t *plankore.Trace, p *plankore.Plan, out string) {
	if tr.Log&(plankore.TraceWarn|plankore.TraceInfo|plankore.TraceDebug) != 0 {
		fmt.Fprintf(tr.W, "%s\t. [%s] is up-to-date in %s\n", t.TopTag(), p, out)
	}
}

func (tr *WriteTracer) CheckFailed(t *plankore.Trace, p *plankore.Plan, err error) {
	if tr.Log != 0 {
		fmt.Fprintf(tr.W, "%s\t! check of [%s] failed: %s\n", t.TopTag(), p, err)
	}
}

type sllmArgs []any

func (as sllmArgs) append(buf []byte, _ int, n string) ([]byte, error) {
	for len(as) > 0 {
		switch k := as[0].(type) {
		case string:
			if len(as) == 1 {
				return buf, fmt.Errorf("no value for key '%s'", n)
			}
			if k == n {
				return sllm.AppendArg(buf, as[1]), nil
			}
			as = as[2:]
		case slog.Attr:
			if k.Key == n {
				return sllm.AppendArg(buf, k.Value), nil
			}
			as = as[1:]
		default:
			return buf, fmt.Errorf("illegal key type %T", k)
		}
	}
	return buf, fmt.Errorf("no key '%s'", n)
}
