package gomkw

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WriteJSON writes value as JSON formatted by jq. The serialization of value
// is an input of the formatting plan.
func (w *Writers) WriteJSON(name string, value any) (Artifact, error) {
	base, dest, err := outputName(name)
	if err != nil {
		return Artifact{}, err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return Artifact{}, fmt.Errorf("write json %s: %w", name, err)
	}
	raw, err := w.WriteText(base+"-raw", string(data))
	if err != nil {
		return Artifact{}, err
	}
	out := outPath(dest)
	var sb strings.Builder
	if dest != "" {
		fmt.Fprintf(&sb, "mkdir -p \"$(dirname %s)\"\n", out)
	}
	fmt.Fprintf(&sb, "%s . %s >%s\n", shQuote(w.tc.Jq), shQuote(raw.Ref()), out)
	p, err := w.runIsolated(base, sb.String(), nil, raw.Plan)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Plan: p, Path: dest}, nil
}
