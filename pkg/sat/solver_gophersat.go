package sat

import (
	"context"

	"github.com/crillab/gophersat/solver"
)

// gophersat keeps package-level scratch state, so at most one search runs per process.
// An abandoned search holds the slot until it finishes.
var gophersatSlot = make(chan struct{}, 1)

type gophersatSolver struct{}

// NewGophersatSolver returns an in-process CDCL solver backed by gophersat
func NewGophersatSolver() SATSolver {
	return gophersatSolver{}
}

func (gophersatSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	clauses := make([][]int, len(instance.Clauses))
	for i, clause := range instance.Clauses {
		clauses[i] = make([]int, len(clause))
		for j, literal := range clause {
			clauses[i][j] = int(literal)
		}
	}

	if len(clauses) == 0 {
		solution := make(SATSolution, 0, instance.Variables)
		for variable := int64(1); variable <= int64(instance.Variables); variable++ {
			solution = append(solution, -variable)
		}
		return solution, nil
	}

	select {
	case gophersatSlot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	done := make(chan []bool, 1)
	go func() {
		defer func() { <-gophersatSlot }()
		cdcl := solver.New(solver.ParseSliceNb(clauses, int(instance.Variables)))
		if cdcl.Solve() != solver.Sat {
			done <- nil
			return
		}
		done <- cdcl.Model()
	}()

	select {
	case model := <-done:
		if model == nil {
			return nil, nil
		}
		solution := make(SATSolution, len(model))
		for i, value := range model {
			solution[i] = int64(i + 1)
			if !value {
				solution[i] = -solution[i]
			}
		}
		return solution, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
