package gomkw

// Ed is used with [Edit]. It has a method for each writer of [Writers] that
// panics instead of returning an error.
type Ed struct{ w *Writers }

func (ed Ed) Writers() *Writers { return ed.w }

func (ed Ed) Bash(name, text string) Artifact    { return mustRet(ed.w.WriteBash(name, text)) }
func (ed Ed) BashBin(name, text string) Artifact { return mustRet(ed.w.WriteBashBin(name, text)) }
func (ed Ed) Dash(name, text string) Artifact    { return mustRet(ed.w.WriteDash(name, text)) }
func (ed Ed) DashBin(name, text string) Artifact { return mustRet(ed.w.WriteDashBin(name, text)) }
func (ed Ed) Sed(name, text string) Artifact     { return mustRet(ed.w.WriteSed(name, text)) }
func (ed Ed) SedBin(name, text string) Artifact  { return mustRet(ed.w.WriteSedBin(name, text)) }
func (ed Ed) Jq(name, text string) Artifact      { return mustRet(ed.w.WriteJq(name, text)) }
func (ed Ed) JqBin(name, text string) Artifact   { return mustRet(ed.w.WriteJqBin(name, text)) }

func (ed Ed) Python2(name string, opts PythonOptions, text string) Artifact {
	return mustRet(ed.w.WritePython2(name, opts, text))
}

func (ed Ed) Python2Bin(name string, opts PythonOptions, text string) Artifact {
	return mustRet(ed.w.WritePython2Bin(name, opts, text))
}

func (ed Ed) Python3(name string, opts PythonOptions, text string) Artifact {
	return mustRet(ed.w.WritePython3(name, opts, text))
}

func (ed Ed) Python3Bin(name string, opts PythonOptions, text string) Artifact {
	return mustRet(ed.w.WritePython3Bin(name, opts, text))
}

func (ed Ed) JS(name string, opts EnvOptions, text string) Artifact {
	return mustRet(ed.w.WriteJS(name, opts, text))
}

func (ed Ed) JSBin(name string, opts EnvOptions, text string) Artifact {
	return mustRet(ed.w.WriteJSBin(name, opts, text))
}

func (ed Ed) Perl(name string, opts EnvOptions, text string) Artifact {
	return mustRet(ed.w.WritePerl(name, opts, text))
}

func (ed Ed) PerlBin(name string, opts EnvOptions, text string) Artifact {
	return mustRet(ed.w.WritePerlBin(name, opts, text))
}

func (ed Ed) C(name string, opts COptions, text string) Artifact {
	return mustRet(ed.w.WriteC(name, opts, text))
}

func (ed Ed) CBin(name string, opts COptions, text string) Artifact {
	return mustRet(ed.w.WriteCBin(name, opts, text))
}

func (ed Ed) Haskell(name string, opts HaskellOptions, text string) Artifact {
	return mustRet(ed.w.WriteHaskell(name, opts, text))
}

func (ed Ed) HaskellBin(name string, opts HaskellOptions, text string) Artifact {
	return mustRet(ed.w.WriteHaskellBin(name, opts, text))
}

func (ed Ed) HaskellPackage(id string, opts HaskellPackageOptions) Artifact {
	return mustRet(ed.w.WriteHaskellPackage(id, opts))
}

func (ed Ed) JSON(name string, value any) Artifact { return mustRet(ed.w.WriteJSON(name, value)) }

func (ed Ed) Text(name, text string) Artifact { return mustRet(ed.w.WriteText(name, text)) }

func (ed Ed) Tree(name string, entries map[string]Artifact) Artifact {
	return mustRet(ed.w.Tree(name, entries))
}
