package gomkw

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/shlex"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Toolchain holds the paths of all tools the writers put into generated
// scripts and build plans. Writers never look up tools on their own.
type Toolchain struct {
	// Command line that runs the scripts of isolated runs. It is split
	// into words like a shell would do.
	Shell string `yaml:"shell"`
	// PATH of isolated runs. Generated scripts use common tools like
	// mkdir, ln and cp from there.
	Path string `yaml:"path"`

	Bash string `yaml:"bash"`
	Dash string `yaml:"dash"`
	Sed  string `yaml:"sed"`
	Jq   string `yaml:"jq"`
	Env  string `yaml:"env"`
	Node string `yaml:"node"`
	Perl string `yaml:"perl"`

	Python2 Runtime `yaml:"python2"`
	Python3 Runtime `yaml:"python3"`

	CC        string `yaml:"cc"`
	Strip     string `yaml:"strip"`
	PkgConfig string `yaml:"pkg-config"`

	Ghc    string `yaml:"ghc"`
	GhcPkg string `yaml:"ghc-pkg"`
	Runghc string `yaml:"runghc"`
}

// Runtime describes an interpreter that can be augmented with libraries.
type Runtime struct {
	Path string `yaml:"path"`
	// Version of the runtime, empty if unknown
	Version string `yaml:"version"`
	// Directory relative to a package root that holds the package's
	// libraries, e.g. "lib/python3.12/site-packages".
	SitePackages string `yaml:"site-packages"`
	Flake8       string `yaml:"flake8"`
}

// DefaultToolchain returns a toolchain with the usual paths of a Debian-like
// system.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Shell: "/bin/sh -e",
		Path:  "/usr/bin:/bin",
		Bash:  "/bin/bash",
		Dash:  "/bin/dash",
		Sed:   "/bin/sed",
		Jq:    "/usr/bin/jq",
		Env:   "/usr/bin/env",
		Node:  "/usr/bin/node",
		Perl:  "/usr/bin/perl",
		Python2: Runtime{
			Path:         "/usr/bin/python2",
			SitePackages: "lib/python2.7/site-packages",
			Flake8:       "/usr/bin/flake8",
		},
		Python3: Runtime{
			Path:         "/usr/bin/python3",
			SitePackages: "lib/python3/site-packages",
			Flake8:       "/usr/bin/flake8",
		},
		CC:        "/usr/bin/cc",
		Strip:     "/usr/bin/strip",
		PkgConfig: "/usr/bin/pkg-config",
		Ghc:       "/usr/bin/ghc",
		GhcPkg:    "/usr/bin/ghc-pkg",
		Runghc:    "/usr/bin/runghc",
	}
}

// EnvPrefix is the prefix of environment variables that override the
// toolchain in [LoadToolchain].
const EnvPrefix = "GOMKW_"

func (tc *Toolchain) envVars() map[string]*string {
	return map[string]*string{
		"SHELL":           &tc.Shell,
		"PATH":            &tc.Path,
		"BASH":            &tc.Bash,
		"DASH":            &tc.Dash,
		"SED":             &tc.Sed,
		"JQ":              &tc.Jq,
		"ENV":             &tc.Env,
		"NODE":            &tc.Node,
		"PERL":            &tc.Perl,
		"PYTHON2":         &tc.Python2.Path,
		"PYTHON2_VERSION": &tc.Python2.Version,
		"PYTHON2_SITE":    &tc.Python2.SitePackages,
		"PYTHON2_FLAKE8":  &tc.Python2.Flake8,
		"PYTHON3":         &tc.Python3.Path,
		"PYTHON3_VERSION": &tc.Python3.Version,
		"PYTHON3_SITE":    &tc.Python3.SitePackages,
		"PYTHON3_FLAKE8":  &tc.Python3.Flake8,
		"CC":              &tc.CC,
		"STRIP":           &tc.Strip,
		"PKG_CONFIG":      &tc.PkgConfig,
		"GHC":             &tc.Ghc,
		"GHC_PKG":         &tc.GhcPkg,
		"RUNGHC":          &tc.Runghc,
	}
}

// LoadToolchain starts with [DefaultToolchain] and overrides it with the
// GOMKW_* variables from the .env files and then from the process
// environment.
func LoadToolchain(envFiles ...string) (tc Toolchain, err error) {
	tc = DefaultToolchain()
	if len(envFiles) > 0 {
		fvars, err := godotenv.Read(envFiles...)
		if err != nil {
			return tc, fmt.Errorf("load toolchain: %w", err)
		}
		tc.setVars(func(k string) (string, bool) {
			v, ok := fvars[k]
			return v, ok
		})
	}
	tc.setVars(os.LookupEnv)
	return tc, tc.Check()
}

func (tc *Toolchain) setVars(lookup func(string) (string, bool)) {
	for k, p := range tc.envVars() {
		if v, ok := lookup(EnvPrefix + k); ok {
			*p = v
		}
	}
}

// ReadToolchainFile reads a YAML toolchain file. Tools not set in the file
// keep their defaults.
func ReadToolchainFile(name string) (tc Toolchain, err error) {
	tc = DefaultToolchain()
	data, err := os.ReadFile(name)
	if err != nil {
		return tc, err
	}
	if err = yaml.Unmarshal(data, &tc); err != nil {
		return tc, fmt.Errorf("toolchain file %s: %w", name, err)
	}
	return tc, tc.Check()
}

// Check verifies that tc can be used by writers. Declared runtime versions
// must fit the language version of the runtime.
func (tc *Toolchain) Check() error {
	var errs []error
	if _, err := tc.Builder(); err != nil {
		errs = append(errs, err)
	}
	if err := tc.Python2.checkVersion("python2", "^2"); err != nil {
		errs = append(errs, err)
	}
	if err := tc.Python3.checkVersion("python3", ">= 3.0.0-0"); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Builder returns the command line of isolated runs.
func (tc *Toolchain) Builder() ([]string, error) {
	argv, err := shlex.Split(tc.Shell)
	if err != nil {
		return nil, fmt.Errorf("toolchain shell '%s': %w", tc.Shell, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("toolchain has no shell")
	}
	return argv, nil
}

func (rt *Runtime) checkVersion(name, constraint string) error {
	if rt.Version == "" {
		return nil
	}
	v, err := semver.NewVersion(strings.TrimSpace(rt.Version))
	if err != nil {
		return fmt.Errorf("%s version '%s': %w", name, rt.Version, err)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%s version %s does not satisfy '%s'", name, v, constraint)
	}
	return nil
}
