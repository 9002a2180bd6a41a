package csp

import (
	"context"
	"fmt"
	"slices"
)

type Status int

const (
	Optimal Status = iota
	Feasible
	Infeasible
	TimedOut
)

func (status Status) String() string {
	switch status {
	case Optimal:
		return "optimal"
	case Feasible:
		return "feasible"
	case Infeasible:
		return "infeasible"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("status(%d)", int(status))
	}
}

// Solved reports whether the status carries an assignment
func (status Status) Solved() bool {
	return status == Optimal || status == Feasible
}

type Relation int

const (
	AtMost Relation = iota
	AtLeast
	Exactly
)

func (relation Relation) String() string {
	switch relation {
	case AtMost:
		return "<="
	case AtLeast:
		return ">="
	default:
		return "=="
	}
}

// Constraint bounds how many of its variables are true
type Constraint struct {
	Name      string
	Variables []int
	Relation  Relation
	Bound     int
}

func (constraint Constraint) String() string {
	return fmt.Sprintf("%v: sum of %d variables %v %d", constraint.Name, len(constraint.Variables), constraint.Relation, constraint.Bound)
}

// Holds reports whether the constraint is satisfied by the given number of true variables
func (constraint Constraint) Holds(count int) bool {
	switch constraint.Relation {
	case AtMost:
		return count <= constraint.Bound
	case AtLeast:
		return count >= constraint.Bound
	default:
		return count == constraint.Bound
	}
}

// trivial tells whether the constraint holds for every assignment (true, _) or for none (_, true)
func (constraint Constraint) trivial() (always bool, never bool) {
	n := len(constraint.Variables)
	switch constraint.Relation {
	case AtMost:
		return constraint.Bound >= n, constraint.Bound < 0
	case AtLeast:
		return constraint.Bound <= 0, constraint.Bound > n
	default:
		return false, constraint.Bound < 0 || constraint.Bound > n
	}
}

// Term is a weighted variable of the objective
type Term struct {
	Variable int
	Weight   int
}

// Model is a pseudo-boolean problem over 0/1 variables indexed from 1 (DIMACS convention)
type Model struct {
	variables   int
	constraints []Constraint
	objective   []Term
}

func NewModel(variables int) *Model {
	return &Model{variables: max(variables, 0)}
}

func (model *Model) Variables() int {
	return model.variables
}

func (model *Model) Constraints() []Constraint {
	return model.constraints
}

func (model *Model) Objective() []Term {
	return model.objective
}

// Add appends constraints; it panics on variables outside the model since that is a programming error
func (model *Model) Add(constraints ...Constraint) {
	for _, constraint := range constraints {
		for _, variable := range constraint.Variables {
			model.mustContain(variable)
		}
		model.constraints = append(model.constraints, constraint)
	}
}

// Maximize adds weighted terms to the objective
func (model *Model) Maximize(terms ...Term) {
	for _, term := range terms {
		model.mustContain(term.Variable)
		model.objective = append(model.objective, term)
	}
}

func (model *Model) mustContain(variable int) {
	if variable < 1 || variable > model.variables {
		panic(fmt.Sprintf("variable %d is out of range [1, %d]", variable, model.variables))
	}
}

// Evaluate computes the objective value of a solution
func (model *Model) Evaluate(solution Solution) int {
	value := 0
	for _, term := range model.objective {
		if solution.Value(term.Variable) {
			value += term.Weight
		}
	}
	return value
}

// Check returns the first constraint violated by the solution
func (model *Model) Check(solution Solution) error {
	for _, constraint := range model.constraints {
		count := 0
		for _, variable := range constraint.Variables {
			if solution.Value(variable) {
				count++
			}
		}
		if !constraint.Holds(count) {
			return fmt.Errorf("constraint %v violated with %d true variables", constraint, count)
		}
	}
	return nil
}

// reduce drops the constraints that always hold; feasible is false when some constraint never holds
func (model *Model) reduce() (constraints []Constraint, feasible bool) {
	constraints = make([]Constraint, 0, len(model.constraints))
	for _, constraint := range model.constraints {
		always, never := constraint.trivial()
		if never {
			return nil, false
		} else if !always {
			constraints = append(constraints, constraint)
		}
	}
	return constraints, true
}

// terms merges the objective by variable, dropping zero weights, in variable order
func (model *Model) terms() []Term {
	weights := make(map[int]int, len(model.objective))
	for _, term := range model.objective {
		weights[term.Variable] += term.Weight
	}

	terms := make([]Term, 0, len(weights))
	for variable, weight := range weights {
		if weight != 0 {
			terms = append(terms, Term{Variable: variable, Weight: weight})
		}
	}
	slices.SortFunc(terms, func(a, b Term) int { return a.Variable - b.Variable })
	return terms
}

// Solution assigns a truth value to every variable; index 0 is unused
type Solution []bool

func (solution Solution) Value(variable int) bool {
	return variable > 0 && variable < len(solution) && solution[variable]
}

type Result struct {
	Status    Status
	Solution  Solution
	Objective int
}

// Solver explores the model until the context is done.
// Infeasible and TimedOut are results, not errors; errors report a broken backend.
type Solver interface {
	Solve(ctx context.Context, model *Model) (Result, error)
}
