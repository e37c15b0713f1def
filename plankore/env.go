package plankore

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
)

// Env is a set of environment variables for running the operations of
// plans. Envs can be stacked with [Env.Sub], which allows to set variables
// without changing the parent.
type Env struct {
	vars    map[string]string
	xenv    []string
	xenvErr error
	parent  *Env
}

// OSEnv returns an Env with the variables of the current process. If keep is
// not empty, only the listed variables are taken.
func OSEnv(tr *Trace, keep ...string) *Env {
	env := &Env{vars: make(map[string]string)}
	for _, evar := range os.Environ() {
		k, v, _ := strings.Cut(evar, "=")
		if k == "" {
			tr.Warn("ignoring OS `env`", `env`, evar)
			continue
		}
		if len(keep) > 0 && !slices.Contains(keep, k) {
			continue
		}
		env.vars[k] = v
	}
	return env
}

// Sub returns an empty Env that inherits all variables from e.
func (e *Env) Sub() *Env { return &Env{parent: e} }

func (e *Env) Var(key string) (string, bool) {
	for e != nil {
		if v, ok := e.vars[key]; ok {
			return v, true
		}
		e = e.parent
	}
	return "", false
}

func (e *Env) SetVar(key, val string) {
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	e.vars[key] = val
	e.clearXEnv()
}

func (e *Env) SetVarsMap(vars map[string]string) {
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	maps.Copy(e.vars, vars)
	e.clearXEnv()
}

type NonXEnvKeys []string

func (e NonXEnvKeys) Error() string {
	return fmt.Sprintf("illegal exec env keys: %s", strings.Join(e, ", "))
}

func (NonXEnvKeys) Is(target error) bool {
	_, ok := target.(NonXEnvKeys)
	return ok
}

// ExecEnv returns the variables of e in the form required by
// [os/exec.Cmd.Env], sorted by key. Variables with keys that cannot be passed
// to a process are left out and reported with a [NonXEnvKeys] error.
func (e *Env) ExecEnv() ([]string, error) {
	if e.xenv == nil {
		var errKeys []string
		vars := e.mergedVars()
		for _, k := range slices.Sorted(maps.Keys(vars)) {
			if !envKeyOK(k) {
				errKeys = append(errKeys, fmt.Sprintf("%q", k))
				continue
			}
			e.xenv = append(e.xenv, k+"="+vars[k])
		}
		if len(errKeys) > 0 {
			e.xenvErr = NonXEnvKeys(errKeys)
		}
	}
	return e.xenv, e.xenvErr
}

func (e *Env) clearXEnv() {
	e.xenv = nil
	e.xenvErr = nil
}

func (e *Env) mergedVars() map[string]string {
	if e.parent == nil {
		if e.vars == nil {
			return make(map[string]string)
		}
		return maps.Clone(e.vars)
	}
	mvs := e.parent.mergedVars()
	maps.Copy(mvs, e.vars)
	return mvs
}

func envKeyOK(k string) bool {
	return k != "" && !strings.ContainsAny(k, "=\x00")
}
