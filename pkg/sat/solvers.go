package sat

func NewKissatSolver() SATSolver {
	return &executableSolver{name: "kissat", configKey: "kissatPath", args: []string{"-q", "--relaxed"}, input: stdinInput, output: stdoutOutput}
}

func NewCadicalSolver() SATSolver {
	return &executableSolver{name: "cadical", configKey: "cadicalPath", args: []string{"-q"}, input: stdinInput, output: stdoutOutput}
}

func NewCryptominisatSolver() SATSolver {
	return &executableSolver{name: "cryptominisat5", configKey: "cryptominisatPath", args: []string{"--verb=0"}, input: stdinInput, output: stdoutOutput}
}

func NewMinisatSolver() SATSolver {
	return &executableSolver{name: "minisat", configKey: "minisatPath", args: []string{"-verb=0"}, input: fileInput, output: fileOutput}
}

func NewGlucoseSimpSolver() SATSolver {
	return &executableSolver{name: "glucose-simp", configKey: "glucoseSimpPath", args: []string{"-verb=0"}, input: fileInput, output: fileOutput}
}

func NewSlimeSolver() SATSolver {
	return &executableSolver{name: "slime", configKey: "slimePath", input: fileInput, output: stdoutOutput}
}

func NewOrtoolsatSolver() SATSolver {
	return &executableSolver{name: "ortoolsat", configKey: "ortoolsatPath", input: fileInput, output: stdoutOutput}
}
