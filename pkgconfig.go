package gomkw

import (
	"bytes"
	"errors"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"git.fractalqb.de/fractalqb/gomkw/plankore"
	"github.com/google/shlex"
	lru "github.com/hashicorp/golang-lru/v2"
)

// PkgConfig resolves the compiler and linker flags of C libraries. The keys
// of libs are the library names known to the lookup tool.
type PkgConfig interface {
	Flags(libs map[string]Package) ([]string, error)
}

type PkgConfigFunc func(map[string]Package) ([]string, error)

func (f PkgConfigFunc) Flags(libs map[string]Package) ([]string, error) { return f(libs) }

// StaticPkgConfig resolves libraries from a fixed table of flags.
type StaticPkgConfig map[string][]string

func (pc StaticPkgConfig) Flags(libs map[string]Package) (flags []string, err error) {
	for _, name := range slices.Sorted(maps.Keys(libs)) {
		fl, ok := pc[name]
		if !ok {
			return nil, &UnresolvedDependencyError{
				Library: name,
				Tool:    "static pkg-config",
				Err:     errors.New("unknown library"),
			}
		}
		flags = append(flags, fl...)
	}
	return flags, nil
}

// ExecPkgConfig runs the pkg-config tool. The pkgconfig directories of the
// package roots are put into PKG_CONFIG_PATH. Results are cached.
type ExecPkgConfig struct {
	Tool  string
	trace *plankore.Trace
	cache *lru.Cache[string, []string]
}

const DefaultPkgConfigCache = 256

func NewExecPkgConfig(tool string, tr *plankore.Trace, cacheSize int) (*ExecPkgConfig, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultPkgConfigCache
	}
	cache, err := lru.New[string, []string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &ExecPkgConfig{Tool: tool, trace: tr, cache: cache}, nil
}

func (pc *ExecPkgConfig) Flags(libs map[string]Package) (flags []string, err error) {
	for _, name := range slices.Sorted(maps.Keys(libs)) {
		fl, err := pc.lookup(name, libs[name])
		if err != nil {
			return nil, err
		}
		flags = append(flags, fl...)
	}
	return flags, nil
}

func (pc *ExecPkgConfig) lookup(name string, pkg Package) ([]string, error) {
	if pkg.Root == "" && pkg.Plan != nil {
		return nil, &UnresolvedDependencyError{
			Library: name,
			Tool:    pc.Tool,
			Err:     errors.New("package is not built yet, need a package root"),
		}
	}
	key := name + "\x00" + pkg.Root
	if fl, ok := pc.cache.Get(key); ok {
		return fl, nil
	}
	cmd := exec.CommandContext(pc.trace.Ctx(), pc.Tool, "--cflags", "--libs", name)
	cmd.Env = os.Environ()
	if pkg.Root != "" {
		cmd.Env = append(cmd.Env, "PKG_CONFIG_PATH="+strings.Join([]string{
			filepath.Join(pkg.Root, "lib", "pkgconfig"),
			filepath.Join(pkg.Root, "share", "pkgconfig"),
		}, string(filepath.ListSeparator)))
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	pc.trace.Debug("exec `cmd`", `cmd`, cmd.String())
	out, err := cmd.Output()
	if err != nil {
		return nil, &UnresolvedDependencyError{
			Library: name,
			Tool:    pc.Tool,
			Output:  stderr.String(),
			Err:     err,
		}
	}
	fl, err := shlex.Split(string(out))
	if err != nil {
		return nil, &UnresolvedDependencyError{
			Library: name,
			Tool:    pc.Tool,
			Output:  string(out),
			Err:     err,
		}
	}
	pc.cache.Add(key, fl)
	return fl, nil
}
