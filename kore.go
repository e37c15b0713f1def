package gomkw

import (
	"errors"
	"fmt"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

type (
	Plan         = plankore.Plan
	Orchestrator = plankore.Orchestrator
	Trace        = plankore.Trace
	Tracer       = plankore.Tracer

	InvalidNameError          = plankore.InvalidNameError
	InvalidIdentifierError    = plankore.InvalidIdentifierError
	UnresolvedDependencyError = plankore.UnresolvedDependencyError
	CheckFailedError          = plankore.CheckFailedError
)

var (
	ErrInvalidName          = plankore.ErrInvalidName
	ErrInvalidIdentifier    = plankore.ErrInvalidIdentifier
	ErrUnresolvedDependency = plankore.ErrUnresolvedDependency
	ErrCheckFailed          = plankore.ErrCheckFailed
)

// Edit calls do with a wrapper of w that allows easy writing of many
// artifacts. Edit recovers from any panic and returns it as an error, so the
// idiomatic error handling within do can be skipped.
func Edit(w *Writers, do func(Ed)) (err error) {
	defer func() {
		if p := recover(); p != nil {
			switch p := p.(type) {
			case error:
				err = p
			case string:
				err = errors.New(p)
			default:
				err = fmt.Errorf("panic: %+v", p)
			}
		}
	}()
	do(Ed{w})
	return
}

func mustEd(err error) {
	if err != nil {
		panic(err)
	}
}

func mustRet[T any](v T, err error) T {
	mustEd(err)
	return v
}
