package plankore

import (
	"regexp"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Grammar identifies one of the closed set of string grammars names and
// identifiers are checked against.
type Grammar uint

const (
	// A name without any path separator, e.g. "foo.sh".
	BareFilename Grammar = iota

	// A slash-separated path starting with '/', e.g. "/bin/foo". It is
	// interpreted relative to an output root.
	AbsolutePath

	// A slash-separated path not starting with '/', e.g. "lib/foo.so".
	RelativePath

	// A Haskell hierarchical module name, e.g. "Data.Foo".
	HaskellModule

	// A Cabal package name, e.g. "foo-bar".
	HaskellPackage

	// A Cabal package identifier <name>-<version>, e.g. "foo-bar-1.0.2".
	HaskellPackageID

	// A lint rule code as used by flake8, e.g. "E501" or "W".
	LintCode

	grammarNum
)

type validator struct {
	name string
	desc string
	ok   func(string) bool
}

var (
	haskellModRx = regexp.MustCompile(`^[A-Z][A-Za-z0-9_']*(\.[A-Z][A-Za-z0-9_']*)*$`)
	cabalNameRx  = regexp.MustCompile(`^[A-Za-z0-9]*[A-Za-z][A-Za-z0-9]*(-[A-Za-z0-9]*[A-Za-z][A-Za-z0-9]*)*$`)
	versionRx    = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)
	lintCodeRx   = regexp.MustCompile(`^[A-Z]+[0-9]*$`)
)

var validators = [grammarNum]validator{
	BareFilename: {
		name: "bare filename",
		desc: "non-empty, no '/', no NUL, not '.' or '..'",
		ok:   isBareFilename,
	},
	AbsolutePath: {
		name: "absolute pathname",
		desc: "'/' followed by '/'-separated bare filenames",
		ok: func(s string) bool {
			if len(s) < 2 || s[0] != '/' {
				return false
			}
			return isRelPath(s[1:])
		},
	},
	RelativePath: {
		name: "relative pathname",
		desc: "'/'-separated bare filenames",
		ok:   isRelPath,
	},
	HaskellModule: {
		name: "Haskell module name",
		desc: "'.'-separated identifiers starting with an upper case letter",
		ok:   haskellModRx.MatchString,
	},
	HaskellPackage: {
		name: "Cabal package name",
		desc: "'-'-separated alphanumeric words, each with at least one letter",
		ok:   cabalNameRx.MatchString,
	},
	HaskellPackageID: {
		name: "Cabal package identifier",
		desc: "<package name>-<version>, version being '.'-separated numbers",
		ok: func(s string) bool {
			_, _, ok := SplitPackageID(s)
			return ok
		},
	},
	LintCode: {
		name: "lint code",
		desc: "upper case letters optionally followed by digits",
		ok:   lintCodeRx.MatchString,
	},
}

func (g Grammar) Match(s string) bool {
	if g >= grammarNum {
		return false
	}
	return validators[g].ok(s)
}

func (g Grammar) String() string {
	if g >= grammarNum {
		return "unknown grammar"
	}
	return validators[g].name
}

// Describe returns a human-readable description of g that can be used in error
// messages.
func (g Grammar) Describe() string {
	if g >= grammarNum {
		return "unknown grammar"
	}
	return validators[g].name + " (" + validators[g].desc + ")"
}

// CheckIdentifier returns an [InvalidIdentifierError] if value does not match
// g. arg names the argument value was passed as.
func (g Grammar) CheckIdentifier(arg, value string) error {
	if g.Match(value) {
		return nil
	}
	return &InvalidIdentifierError{Arg: arg, Value: value, Grammar: g}
}

// GrammarSet is a set of grammars a name may match.
type GrammarSet struct{ bits *bitset.BitSet }

func Grammars(gs ...Grammar) GrammarSet {
	bits := bitset.New(uint(grammarNum))
	for _, g := range gs {
		if g < grammarNum {
			bits.Set(uint(g))
		}
	}
	return GrammarSet{bits}
}

// Match returns the first grammar in s that matches name.
func (s GrammarSet) Match(name string) (Grammar, bool) {
	if s.bits == nil {
		return grammarNum, false
	}
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		if g := Grammar(i); g.Match(name) {
			return g, true
		}
	}
	return grammarNum, false
}

func (s GrammarSet) Grammars() (gs []Grammar) {
	if s.bits == nil {
		return nil
	}
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		gs = append(gs, Grammar(i))
	}
	return gs
}

// Check returns the grammar that matches name or an [InvalidNameError] if
// there is none.
func (s GrammarSet) Check(name string) (Grammar, error) {
	if g, ok := s.Match(name); ok {
		return g, nil
	}
	return grammarNum, &InvalidNameError{Name: name, Expect: s.Grammars()}
}

// SplitPackageID splits a Cabal package identifier into name and version at
// the last '-' that is followed by a version.
func SplitPackageID(id string) (name, version string, ok bool) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 {
		return "", "", false
	}
	name, version = id[:i], id[i+1:]
	if !cabalNameRx.MatchString(name) || !versionRx.MatchString(version) {
		return "", "", false
	}
	return name, version, true
}

func isBareFilename(s string) bool {
	switch s {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsAny(s, "/\x00")
}

func isRelPath(s string) bool {
	if s == "" {
		return false
	}
	for _, elem := range strings.Split(s, "/") {
		if !isBareFilename(elem) {
			return false
		}
	}
	return true
}
