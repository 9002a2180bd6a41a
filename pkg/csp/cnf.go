package csp

import (
	"context"
	"errors"
	"fmt"

	"github.com/limaJavier/scheduler/pkg/sat"
)

// CNFSolver encodes models into CNF and hands them to a SAT solver.
// The objective is maximized by linear search: every improvement is required by a new cardinality
// constraint until the instance becomes unsatisfiable.
type CNFSolver struct {
	satSolver sat.SATSolver
}

func NewCNFSolver(satSolver sat.SATSolver) *CNFSolver {
	return &CNFSolver{satSolver: satSolver}
}

func (cnf *CNFSolver) Solve(ctx context.Context, model *Model) (Result, error) {
	constraints, feasible := model.reduce()
	if !feasible {
		return Result{Status: Infeasible}, nil
	}

	base := newEncoder(model.Variables())
	for _, constraint := range constraints {
		base.constraint(constraint)
	}

	solution, err := cnf.solve(ctx, base.instance(), model.Variables())
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Result{Status: TimedOut}, nil
	} else if err != nil {
		return Result{}, err
	} else if solution == nil {
		return Result{Status: Infeasible}, nil
	}

	best := Result{Status: Optimal, Solution: solution, Objective: model.Evaluate(solution)}
	objective := newObjectiveBound(model.terms())
	for {
		target, reachable := objective.above(best.Objective)
		if !reachable {
			return best, nil
		}

		bounded := base.clone()
		bounded.atLeast(objective.lits, target)

		solution, err := cnf.solve(ctx, bounded.instance(), model.Variables())
		if err != nil {
			// The incumbent stays valid when a refinement cannot finish
			best.Status = Feasible
			return best, nil
		} else if solution == nil {
			return best, nil
		}

		best.Solution = solution
		best.Objective = model.Evaluate(solution)
	}
}

func (cnf *CNFSolver) solve(ctx context.Context, instance sat.SAT, variables int) (Solution, error) {
	satSolution, err := cnf.satSolver.Solve(ctx, instance)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	} else if err != nil {
		return nil, fmt.Errorf("sat solver failed: %w", err)
	} else if satSolution == nil {
		return nil, nil
	} else if !instance.Satisfies(satSolution) {
		return nil, fmt.Errorf("sat solver returned an assignment that does not satisfy the instance")
	}

	solution := make(Solution, variables+1)
	for variable := range satSolution.Positives() {
		if variable <= uint64(variables) {
			solution[variable] = true
		}
	}
	return solution, nil
}

// objectiveBound rewrites sum(w*x) as offset + g*sum(lits) where lits repeat each literal |w|/g times
type objectiveBound struct {
	lits   []int64
	offset int
	unit   int
}

func newObjectiveBound(terms []Term) objectiveBound {
	unit := 0
	for _, term := range terms {
		unit = gcd(unit, abs(term.Weight))
	}

	bound := objectiveBound{unit: max(unit, 1)}
	for _, term := range terms {
		lit := int64(term.Variable)
		if term.Weight < 0 {
			lit = -lit
			bound.offset += term.Weight
		}
		for range abs(term.Weight) / bound.unit {
			bound.lits = append(bound.lits, lit)
		}
	}
	return bound
}

// above returns how many literals must hold for the objective to exceed value
func (bound objectiveBound) above(value int) (target int, reachable bool) {
	needed := value + 1 - bound.offset
	target = (needed + bound.unit - 1) / bound.unit
	if needed <= 0 {
		target = 0
	}
	return target, target <= len(bound.lits) && len(bound.lits) > 0
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
