// Package gomkw is a library of writers that turn a name, some
// language-specific options and a source text into a build plan for an
// executable or library artifact. Writers exist for shell dialects, sed, jq,
// Python, JavaScript, Perl, C, Haskell and JSON.
//
// Writers never build anything. They construct [plankore.Plan] values through
// the two primitives of a [plankore.Orchestrator]: writing a text to a file
// and running a script in an isolated environment. All tools are taken from
// an explicit [Toolchain], all libraries from explicit options.
//
//	w, err := gomkw.New(gomkw.Config{})
//	if err != nil {
//		return err
//	}
//	hello, err := w.WriteBashBin("hello", "echo Hello\n")
//
// Names of artifacts are either bare filenames, then the artifact is the
// output of its plan, or absolute paths like "/bin/hello", then the artifact
// is placed at that path in an output tree. The ...Bin writers take a bare
// filename and place the artifact in [BinDir].
//
// A plan can be realized locally with package realize.
package gomkw
