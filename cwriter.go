package gomkw

import (
	"fmt"
	"strings"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
)

// COptions are the options of [Writers.WriteC].
type COptions struct {
	// Absolute path of the binary in the output. When empty the binary is
	// placed according to the name.
	Destination string
	// Libraries maps pkg-config library names to the packages providing
	// them.
	Libraries map[string]Package
}

// WriteC compiles text as a C program with optimizations and all warnings
// enabled. The binary is stripped.
func (w *Writers) WriteC(name string, opts COptions, text string) (Artifact, error) {
	base, dest, err := outputName(name)
	if err != nil {
		return Artifact{}, err
	}
	if opts.Destination != "" {
		if !plankore.AbsolutePath.Match(opts.Destination) {
			return Artifact{}, &InvalidNameError{
				Name:   opts.Destination,
				Expect: []plankore.Grammar{plankore.AbsolutePath},
			}
		}
		dest = opts.Destination[1:]
	}
	var flags []string
	if len(opts.Libraries) > 0 {
		if flags, err = w.pkgc.Flags(opts.Libraries); err != nil {
			return Artifact{}, err
		}
	}
	src, err := w.WriteText(base+".c", text)
	if err != nil {
		return Artifact{}, err
	}
	exe := outPath(dest)
	var sb strings.Builder
	if dest != "" {
		fmt.Fprintf(&sb, "mkdir -p \"$(dirname %s)\"\n", exe)
	}
	fmt.Fprintf(&sb, "%s -O -Wall -x c -o %s %s", shQuote(w.tc.CC), exe, shQuote(src.Ref()))
	if len(flags) > 0 {
		sb.WriteString(" -x none ")
		sb.WriteString(shQuoteAll(flags))
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "%s -s %s\n", shQuote(w.tc.Strip), exe)
	inputs := append([]*Plan{src.Plan}, packagePlans(mapValues(opts.Libraries)...)...)
	p, err := w.runIsolated(base, sb.String(), nil, inputs...)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Plan: p, Path: dest}, nil
}

func (w *Writers) WriteCBin(name string, opts COptions, text string) (Artifact, error) {
	bin, err := binName(name)
	if err != nil {
		return Artifact{}, err
	}
	return w.WriteC(bin, opts, text)
}

func mapValues[K comparable, V any](m map[K]V) []V {
	vs := make([]V, 0, len(m))
	for _, v := range m {
		vs = append(vs, v)
	}
	return vs
}
