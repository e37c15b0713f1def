package cli

import (
	"io"
	"os"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/term"
)

var chromaStyle = styles.Get("dracula")

var chromaFormatter = formatters.Get("terminal256")

func init() {
	if chromaStyle == nil {
		chromaStyle = styles.Fallback
	}
	if chromaFormatter == nil {
		chromaFormatter = formatters.Fallback
	}
}

// useColor resolves the --color flag value.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// lexerFor selects a lexer by the interpreter of a script, the file name or
// finally by analysing the text.
func lexerFor(name, text string) chroma.Lexer {
	var lexer chroma.Lexer
	if interp, ok := strings.CutPrefix(text, "#!"); ok {
		interp, _, _ = strings.Cut(interp, "\n")
		fields := strings.Fields(interp)
		for i := len(fields) - 1; i >= 0 && lexer == nil; i-- {
			if strings.HasPrefix(fields[i], "-") || strings.Contains(fields[i], "=") {
				continue
			}
			lexer = lexers.Get(interpreterLang(path.Base(fields[i])))
		}
	}
	if lexer == nil {
		lexer = lexers.Match(path.Base(name))
	}
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	return lexer
}

func interpreterLang(exe string) string {
	switch {
	case exe == "sh", exe == "dash", exe == "bash":
		return "bash"
	case strings.HasPrefix(exe, "python"):
		return "python"
	case exe == "node":
		return "javascript"
	}
	return exe
}

func highlight(w io.Writer, name, text string) error {
	lexer := lexerFor(name, text)
	if lexer == nil {
		_, err := io.WriteString(w, text)
		return err
	}
	lexer = chroma.Coalesce(lexer)
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		_, err = io.WriteString(w, text)
		return err
	}
	return chromaFormatter.Format(w, chromaStyle, iterator)
}
