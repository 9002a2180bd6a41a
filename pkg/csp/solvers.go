package csp

import (
	"fmt"
	"slices"

	"github.com/limaJavier/scheduler/pkg/sat"
	"github.com/samber/lo"
)

// Gophersat names the in-process backend
const Gophersat = "gophersat"

// SolverNames lists the in-process backend followed by the external SAT solvers
func SolverNames() []string {
	names := lo.Keys(sat.Solvers)
	slices.Sort(names)
	return append([]string{Gophersat}, names...)
}

// NewGophersatSolver returns the in-process backend: the CNF encoding solved by gophersat
func NewGophersatSolver() *CNFSolver {
	return NewCNFSolver(sat.NewGophersatSolver())
}

// NewSolver returns the backend with the given name; every backend solves the CNF encoding
func NewSolver(name string) (Solver, error) {
	if name == Gophersat {
		return NewGophersatSolver(), nil
	}
	constructor, ok := sat.Solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver %q, allowed values are %v", name, SolverNames())
	}
	return NewCNFSolver(constructor()), nil
}

// SolverAvailable reports whether the backend can run on this machine
func SolverAvailable(name string) bool {
	return name == Gophersat || sat.Available(name)
}
