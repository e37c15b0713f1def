package gomkw

import "fmt"

func (w *Writers) WriteBash(name, text string) (Artifact, error) {
	return w.ScriptWriter(w.tc.Bash, nil)(name, text)
}

func (w *Writers) WriteBashBin(name, text string) (Artifact, error) {
	return w.ScriptWriter(w.tc.Bash, nil).Bin(name, text)
}

func (w *Writers) WriteDash(name, text string) (Artifact, error) {
	return w.ScriptWriter(w.tc.Dash, nil)(name, text)
}

func (w *Writers) WriteDashBin(name, text string) (Artifact, error) {
	return w.ScriptWriter(w.tc.Dash, nil).Bin(name, text)
}

// WriteSed writes a sed script run with 'sed -f'.
func (w *Writers) WriteSed(name, text string) (Artifact, error) {
	return w.ScriptWriter(w.tc.Sed+" -f", nil)(name, text)
}

func (w *Writers) WriteSedBin(name, text string) (Artifact, error) {
	return w.ScriptWriter(w.tc.Sed+" -f", nil).Bin(name, text)
}

// WriteJq writes a jq program run with 'jq -f'. The program is checked by
// running it on empty input.
func (w *Writers) WriteJq(name, text string) (Artifact, error) {
	if _, _, err := outputName(name); err != nil {
		return Artifact{}, err
	}
	check, err := w.jqCheck()
	if err != nil {
		return Artifact{}, err
	}
	return w.ScriptWriter(w.tc.Jq+" -f", check)(name, text)
}

func (w *Writers) WriteJqBin(name, text string) (Artifact, error) {
	bin, err := binName(name)
	if err != nil {
		return Artifact{}, err
	}
	return w.WriteJq(bin, text)
}

func (w *Writers) jqCheck() (*Plan, error) {
	chk, err := w.WriteDash("jqcheck.sh",
		fmt.Sprintf("exec %s -f \"$1\" </dev/null\n", shQuote(w.tc.Jq)),
	)
	return chk.Plan, err
}
