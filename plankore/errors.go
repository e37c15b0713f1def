package plankore

import (
	"fmt"
	"strings"
)

// ErrorKind enumerates the errors writers and realizers report about their
// inputs and checks. Other errors, e.g. I/O errors, have no kind.
type ErrorKind int

const (
	InvalidName ErrorKind = iota + 1
	InvalidIdentifier
	UnresolvedDependency
	CheckFailed
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidName:
		return "invalid name"
	case InvalidIdentifier:
		return "invalid identifier"
	case UnresolvedDependency:
		return "unresolved dependency"
	case CheckFailed:
		return "check failed"
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Sentinels to be used with errors.Is to test for the kind of an error.
var (
	ErrInvalidName          error = kindError(InvalidName)
	ErrInvalidIdentifier    error = kindError(InvalidIdentifier)
	ErrUnresolvedDependency error = kindError(UnresolvedDependency)
	ErrCheckFailed          error = kindError(CheckFailed)
)

type kindError ErrorKind

func (e kindError) Error() string { return ErrorKind(e).String() }

// KindOf returns the kind of err or 0 if err has no kind.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok {
			return k.Kind()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0
		}
		err = u.Unwrap()
	}
	return 0
}

// InvalidNameError is returned when a name matches none of the expected
// grammars.
type InvalidNameError struct {
	Name   string
	Expect []Grammar
}

func (e *InvalidNameError) Kind() ErrorKind { return InvalidName }

func (e *InvalidNameError) Error() string {
	if len(e.Expect) == 0 {
		return fmt.Sprintf("invalid name %q", e.Name)
	}
	exp := make([]string, len(e.Expect))
	for i, g := range e.Expect {
		exp[i] = g.Describe()
	}
	return fmt.Sprintf("invalid name %q, expect %s", e.Name, strings.Join(exp, " or "))
}

func (e *InvalidNameError) Is(target error) bool { return target == ErrInvalidName }

// InvalidIdentifierError is returned when an identifier, e.g. a module name,
// does not match its language-specific grammar.
type InvalidIdentifierError struct {
	Arg     string
	Value   string
	Grammar Grammar
}

func (e *InvalidIdentifierError) Kind() ErrorKind { return InvalidIdentifier }

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s %q, expect %s", e.Arg, e.Value, e.Grammar.Describe())
}

func (e *InvalidIdentifierError) Is(target error) bool { return target == ErrInvalidIdentifier }

// UnresolvedDependencyError is returned when a library cannot be resolved by a
// lookup tool such as pkg-config. Output is the tool's own error text.
type UnresolvedDependencyError struct {
	Library string
	Tool    string
	Output  string
	Err     error
}

func (e *UnresolvedDependencyError) Kind() ErrorKind { return UnresolvedDependency }

func (e *UnresolvedDependencyError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unresolved library '%s'", e.Library)
	if e.Tool != "" {
		fmt.Fprintf(&sb, " by %s", e.Tool)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		sb.WriteString(": ")
		sb.WriteString(out)
	} else if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *UnresolvedDependencyError) Unwrap() error { return e.Err }

func (e *UnresolvedDependencyError) Is(target error) bool {
	return target == ErrUnresolvedDependency
}

// CheckFailedError is returned when the check of an output fails. The output
// is never considered to be built then.
type CheckFailedError struct {
	Plan  string // the checked plan
	Check string // the plan that implements the check
	Err   error
}

func (e *CheckFailedError) Kind() ErrorKind { return CheckFailed }

func (e *CheckFailedError) Error() string {
	return fmt.Sprintf("check %s of %s failed: %s", e.Check, e.Plan, e.Err)
}

func (e *CheckFailedError) Unwrap() error { return e.Err }

func (e *CheckFailedError) Is(target error) bool { return target == ErrCheckFailed }
