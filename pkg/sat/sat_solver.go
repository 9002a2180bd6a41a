package sat

import "context"

type SATSolver interface {
	// Returns a solution of the SAT instance if satisfiable, else returns nil (these are valid outputs where error shall be nil).
	// Cancelling the context aborts the solver and returns the context's error.
	Solve(ctx context.Context, instance SAT) (SATSolution, error)
}

// Solvers lists the supported external solvers by name
var Solvers = map[string]func() SATSolver{
	"kissat":        NewKissatSolver,
	"cadical":       NewCadicalSolver,
	"cryptominisat": NewCryptominisatSolver,
	"minisat":       NewMinisatSolver,
	"glucosesimp":   NewGlucoseSimpSolver,
	"slime":         NewSlimeSolver,
	"ortoolsat":     NewOrtoolsatSolver,
}
