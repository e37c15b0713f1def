// Package plankore implements the core model of gomkw for the representation
// of build plans. A [Plan] describes one output-producing unit: its name, the
// plans it takes as inputs and the [Operation] that produces its output. Plans
// are values. Nothing in this package runs a build; executing plans is up to
// an orchestrator. The two primitives an orchestrator offers to the writer
// library are captured by the [Orchestrator] interface, and [Planner] is a
// pure reference implementation of it.
//
// The package also holds the closed set of name grammars ([Grammar]) and
// error kinds shared by writers and realizers, an environment model for
// isolated runs ([Env]) and the tracing hooks ([Trace], [Tracer]).
package plankore
