package cli

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"git.fractalqb.de/fractalqb/gomkw"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed manifest.schema.json
var manifestSchemaJSON string

var (
	manifestSchema     *jsonschema.Schema
	manifestSchemaOnce sync.Once
	manifestSchemaErr  error
)

// Manifest lists the artifacts to write. It is read from YAML or JSON.
type Manifest struct {
	Entries []Entry `yaml:"entries"`
}

type Entry struct {
	Writer      string            `yaml:"writer"`
	Name        string            `yaml:"name"`
	Text        string            `yaml:"text"`
	Libraries   []Library         `yaml:"libraries"`
	Ignore      []string          `yaml:"ignore"`
	Destination string            `yaml:"destination"`
	Value       any               `yaml:"value"`
	GhcArgs     []string          `yaml:"ghcArgs"`
	NoThreaded  bool              `yaml:"noThreaded"`
	NoStrip     bool              `yaml:"noStrip"`
	Executables map[string]string `yaml:"executables"`
	Library     map[string]string `yaml:"library"`
}

// Library is a package with a pre-built Root or the artifact of an earlier
// manifest Entry.
type Library struct {
	Name  string `yaml:"name"`
	Root  string `yaml:"root"`
	Entry string `yaml:"entry"`
}

func ManifestSchema() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("manifest.schema.json", strings.NewReader(manifestSchemaJSON)); err != nil {
			manifestSchemaErr = fmt.Errorf("add manifest schema resource: %w", err)
			return
		}
		manifestSchema, manifestSchemaErr = compiler.Compile("manifest.schema.json")
	})
	return manifestSchema, manifestSchemaErr
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

func ParseManifest(data []byte) (*Manifest, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	norm, err := normalizeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize manifest: %w", err)
	}
	schema, err := ManifestSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(norm); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var res any
	err = json.Unmarshal(data, &res)
	return res, err
}

type writerFunc func(w *gomkw.Writers, e *Entry, libs []gomkw.Package) (gomkw.Artifact, error)

func scriptEntry(
	write func(*gomkw.Writers, string, string) (gomkw.Artifact, error),
) writerFunc {
	return func(w *gomkw.Writers, e *Entry, _ []gomkw.Package) (gomkw.Artifact, error) {
		return write(w, e.Name, e.Text)
	}
}

func pythonEntry(
	write func(*gomkw.Writers, string, gomkw.PythonOptions, string) (gomkw.Artifact, error),
) writerFunc {
	return func(w *gomkw.Writers, e *Entry, libs []gomkw.Package) (gomkw.Artifact, error) {
		return write(w, e.Name, gomkw.PythonOptions{Libraries: libs, Ignore: e.Ignore}, e.Text)
	}
}

func envEntry(
	write func(*gomkw.Writers, string, gomkw.EnvOptions, string) (gomkw.Artifact, error),
) writerFunc {
	return func(w *gomkw.Writers, e *Entry, libs []gomkw.Package) (gomkw.Artifact, error) {
		return write(w, e.Name, gomkw.EnvOptions{Libraries: libs}, e.Text)
	}
}

func cEntry(
	write func(*gomkw.Writers, string, gomkw.COptions, string) (gomkw.Artifact, error),
) writerFunc {
	return func(w *gomkw.Writers, e *Entry, libs []gomkw.Package) (gomkw.Artifact, error) {
		opts := gomkw.COptions{Destination: e.Destination}
		if len(libs) > 0 {
			opts.Libraries = make(map[string]gomkw.Package, len(libs))
			for _, l := range libs {
				opts.Libraries[l.Name] = l
			}
		}
		return write(w, e.Name, opts, e.Text)
	}
}

func haskellEntry(
	write func(*gomkw.Writers, string, gomkw.HaskellOptions, string) (gomkw.Artifact, error),
) writerFunc {
	return func(w *gomkw.Writers, e *Entry, libs []gomkw.Package) (gomkw.Artifact, error) {
		return write(w, e.Name, gomkw.HaskellOptions{
			Libraries:  libs,
			GhcArgs:    e.GhcArgs,
			NoThreaded: e.NoThreaded,
			NoStrip:    e.NoStrip,
		}, e.Text)
	}
}

var writers = map[string]writerFunc{
	"bash":        scriptEntry((*gomkw.Writers).WriteBash),
	"bash-bin":    scriptEntry((*gomkw.Writers).WriteBashBin),
	"dash":        scriptEntry((*gomkw.Writers).WriteDash),
	"dash-bin":    scriptEntry((*gomkw.Writers).WriteDashBin),
	"sed":         scriptEntry((*gomkw.Writers).WriteSed),
	"sed-bin":     scriptEntry((*gomkw.Writers).WriteSedBin),
	"jq":          scriptEntry((*gomkw.Writers).WriteJq),
	"jq-bin":      scriptEntry((*gomkw.Writers).WriteJqBin),
	"text":        scriptEntry((*gomkw.Writers).WriteText),
	"js":          envEntry((*gomkw.Writers).WriteJS),
	"js-bin":      envEntry((*gomkw.Writers).WriteJSBin),
	"perl":        envEntry((*gomkw.Writers).WritePerl),
	"perl-bin":    envEntry((*gomkw.Writers).WritePerlBin),
	"python2":     pythonEntry((*gomkw.Writers).WritePython2),
	"python2-bin": pythonEntry((*gomkw.Writers).WritePython2Bin),
	"python3":     pythonEntry((*gomkw.Writers).WritePython3),
	"python3-bin": pythonEntry((*gomkw.Writers).WritePython3Bin),
	"c":           cEntry((*gomkw.Writers).WriteC),
	"c-bin":       cEntry((*gomkw.Writers).WriteCBin),
	"haskell":     haskellEntry((*gomkw.Writers).WriteHaskell),
	"haskell-bin": haskellEntry((*gomkw.Writers).WriteHaskellBin),
	"haskell-package": func(w *gomkw.Writers, e *Entry, libs []gomkw.Package) (gomkw.Artifact, error) {
		return w.WriteHaskellPackage(e.Name, gomkw.HaskellPackageOptions{
			Executables: e.Executables,
			Library:     e.Library,
			Libraries:   libs,
			GhcOptions:  e.GhcArgs,
		})
	},
	"json": func(w *gomkw.Writers, e *Entry, _ []gomkw.Package) (gomkw.Artifact, error) {
		return w.WriteJSON(e.Name, e.Value)
	},
}

// Writers returns the names of all writers usable in manifests.
func Writers() []string { return slices.Sorted(maps.Keys(writers)) }

// Written is a manifest entry with its artifact.
type Written struct {
	Entry    *Entry
	Artifact gomkw.Artifact
}

// Write writes all entries of m in order. Libraries can refer to entries
// written before.
func (m *Manifest) Write(w *gomkw.Writers) ([]Written, error) {
	res := make([]Written, 0, len(m.Entries))
	byName := make(map[string]gomkw.Artifact)
	for i := range m.Entries {
		e := &m.Entries[i]
		write, ok := writers[e.Writer]
		if !ok {
			return res, fmt.Errorf("entry %d '%s': unknown writer '%s'", i, e.Name, e.Writer)
		}
		libs := make([]gomkw.Package, 0, len(e.Libraries))
		for _, l := range e.Libraries {
			pkg := gomkw.Package{Name: l.Name, Root: l.Root}
			if l.Entry != "" {
				a, ok := byName[l.Entry]
				if !ok {
					return res, fmt.Errorf("entry '%s': library %s refers to unknown entry '%s'",
						e.Name,
						l.Name,
						l.Entry,
					)
				}
				if a.Path == "" {
					return res, fmt.Errorf("entry '%s': library %s is not an output tree", e.Name, l.Name)
				}
				pkg.Plan = a.Plan
			}
			libs = append(libs, pkg)
		}
		a, err := write(w, e, libs)
		if err != nil {
			return res, fmt.Errorf("entry '%s': %w", e.Name, err)
		}
		byName[e.Name] = a
		res = append(res, Written{Entry: e, Artifact: a})
	}
	return res, nil
}

// Lookup returns the written entries with the given names, all if names is
// empty.
func Lookup(ws []Written, names ...string) ([]Written, error) {
	if len(names) == 0 {
		return ws, nil
	}
	res := make([]Written, 0, len(names))
	for _, n := range names {
		i := slices.IndexFunc(ws, func(w Written) bool { return w.Entry.Name == n })
		if i < 0 {
			return nil, fmt.Errorf("no manifest entry '%s'", n)
		}
		res = append(res, ws[i])
	}
	return res, nil
}
