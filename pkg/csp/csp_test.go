package csp

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"testing"

	"github.com/limaJavier/scheduler/pkg/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dpllSolver is a small complete SAT solver used as test double for external executables
type dpllSolver struct{}

func (dpllSolver) Solve(ctx context.Context, instance sat.SAT) (sat.SATSolution, error) {
	assigned := make(map[int64]bool)
	if !dpll(instance.Clauses, assigned) {
		return nil, nil
	}

	solution := make(sat.SATSolution, 0, instance.Variables)
	for variable := int64(1); variable <= int64(instance.Variables); variable++ {
		if assigned[variable] {
			solution = append(solution, variable)
		} else {
			solution = append(solution, -variable)
		}
	}
	return solution, nil
}

func dpll(clauses [][]int64, assigned map[int64]bool) bool {
	for {
		unit := int64(0)
		for _, clause := range clauses {
			satisfied, unassigned, last := false, 0, int64(0)
			for _, lit := range clause {
				value, ok := assigned[abs64(lit)]
				if !ok {
					unassigned++
					last = lit
				} else if value == (lit > 0) {
					satisfied = true
					break
				}
			}
			if satisfied {
				continue
			} else if unassigned == 0 {
				return false
			} else if unassigned == 1 {
				unit = last
				break
			}
		}
		if unit == 0 {
			break
		}
		assigned[abs64(unit)] = unit > 0
	}

	for _, clause := range clauses {
		for _, lit := range clause {
			if _, ok := assigned[abs64(lit)]; ok {
				continue
			}
			for _, value := range []bool{true, false} {
				attempt := maps.Clone(assigned)
				attempt[abs64(lit)] = value
				if dpll(clauses, attempt) {
					maps.Copy(assigned, attempt)
					return true
				}
			}
			return false
		}
	}
	return true
}

func abs64(value int64) int64 {
	if value < 0 {
		return -value
	}
	return value
}

type failingSolver struct{}

func (failingSolver) Solve(context.Context, sat.SAT) (sat.SATSolution, error) {
	return nil, errors.New("solver crashed")
}

type lyingSolver struct{}

func (lyingSolver) Solve(_ context.Context, instance sat.SAT) (sat.SATSolution, error) {
	solution := make(sat.SATSolution, 0, instance.Variables)
	for variable := int64(1); variable <= int64(instance.Variables); variable++ {
		solution = append(solution, -variable)
	}
	return solution, nil
}

func TestCardinalityEncodings(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for k := 0; k <= n; k++ {
			for _, relation := range []Relation{AtMost, AtLeast, Exactly} {
				constraint := Constraint{Name: "card", Relation: relation, Bound: k}
				for variable := 1; variable <= n; variable++ {
					constraint.Variables = append(constraint.Variables, variable)
				}

				t.Run(fmt.Sprintf("n=%d %v %d", n, relation, k), func(t *testing.T) {
					for mask := 0; mask < 1<<n; mask++ {
						//** Arrange
						encoder := newEncoder(n)
						encoder.constraint(constraint)
						count := 0
						for variable := 1; variable <= n; variable++ {
							if mask&(1<<(variable-1)) != 0 {
								encoder.add(int64(variable))
								count++
							} else {
								encoder.add(-int64(variable))
							}
						}

						//** Act
						satisfiable := dpll(encoder.clauses, map[int64]bool{})

						//** Assert
						assert.Equal(t, constraint.Holds(count), satisfiable, "assignment %b", mask)
					}
				})
			}
		}
	}
}

func TestObjectiveBound(t *testing.T) {
	//** Arrange
	terms := []Term{{Variable: 1, Weight: 10}, {Variable: 2, Weight: 10}, {Variable: 3, Weight: -5}}

	//** Act
	bound := newObjectiveBound(terms)

	//** Assert
	assert.Equal(t, 5, bound.unit)
	assert.Equal(t, -5, bound.offset)
	assert.Equal(t, []int64{1, 1, 2, 2, -3}, bound.lits)

	target, reachable := bound.above(10) // 10 + 1 + 5 = 16 -> 4 units of 5
	assert.Equal(t, 4, target)
	assert.True(t, reachable)

	_, reachable = bound.above(20)
	assert.False(t, reachable)
}

func TestModel(t *testing.T) {
	t.Run("Variables out of range panic", func(t *testing.T) {
		model := NewModel(2)
		assert.Panics(t, func() {
			model.Add(Constraint{Variables: []int{3}, Relation: AtMost, Bound: 1})
		})
		assert.Panics(t, func() {
			model.Maximize(Term{Variable: 0, Weight: 10})
		})
	})

	t.Run("Reduce drops trivial constraints", func(t *testing.T) {
		//** Arrange
		model := NewModel(3)
		model.Add(
			Constraint{Name: "loose", Variables: []int{1, 2}, Relation: AtMost, Bound: 2},
			Constraint{Name: "empty", Variables: []int{1, 2, 3}, Relation: AtLeast, Bound: 0},
			Constraint{Name: "kept", Variables: []int{1, 2, 3}, Relation: Exactly, Bound: 1},
		)

		//** Act
		constraints, feasible := model.reduce()

		//** Assert
		assert.True(t, feasible)
		require.Len(t, constraints, 1)
		assert.Equal(t, "kept", constraints[0].Name)
	})

	t.Run("Reduce detects impossible constraints", func(t *testing.T) {
		model := NewModel(2)
		model.Add(Constraint{Name: "impossible", Variables: []int{1, 2}, Relation: AtLeast, Bound: 3})

		_, feasible := model.reduce()
		assert.False(t, feasible)
	})

	t.Run("Check reports violations", func(t *testing.T) {
		model := NewModel(2)
		model.Add(Constraint{Name: "one", Variables: []int{1, 2}, Relation: Exactly, Bound: 1})

		assert.NoError(t, model.Check(Solution{false, true, false}))
		assert.Error(t, model.Check(Solution{false, true, true}))
	})

	t.Run("Terms merge by variable", func(t *testing.T) {
		model := NewModel(3)
		model.Maximize(Term{Variable: 2, Weight: 10}, Term{Variable: 1, Weight: 4}, Term{Variable: 2, Weight: -10})

		assert.Equal(t, []Term{{Variable: 1, Weight: 4}}, model.terms())
	})
}

func TestGophersatSolver(t *testing.T) {
	solverContract(t, NewGophersatSolver())
}

func TestCNFSolver(t *testing.T) {
	solverContract(t, NewCNFSolver(dpllSolver{}))

	t.Run("Backend errors are returned", func(t *testing.T) {
		model := NewModel(2)
		model.Add(Constraint{Variables: []int{1, 2}, Relation: Exactly, Bound: 1})

		_, err := NewCNFSolver(failingSolver{}).Solve(context.Background(), model)
		assert.Error(t, err)
	})

	t.Run("Wrong assignments are rejected", func(t *testing.T) {
		model := NewModel(2)
		model.Add(Constraint{Variables: []int{1, 2}, Relation: Exactly, Bound: 1})

		_, err := NewCNFSolver(lyingSolver{}).Solve(context.Background(), model)
		assert.Error(t, err)
	})
}

func solverContract(t *testing.T, solver Solver) {
	t.Run("Feasibility", func(t *testing.T) {
		//** Arrange
		model := NewModel(4)
		model.Add(Constraint{Name: "two", Variables: []int{1, 2, 3, 4}, Relation: Exactly, Bound: 2})

		//** Act
		result, err := solver.Solve(context.Background(), model)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, Optimal, result.Status)
		assert.NoError(t, model.Check(result.Solution))
	})

	t.Run("Infeasible", func(t *testing.T) {
		model := NewModel(2)
		model.Add(
			Constraint{Name: "at most one", Variables: []int{1, 2}, Relation: AtMost, Bound: 1},
			Constraint{Name: "both", Variables: []int{1, 2}, Relation: AtLeast, Bound: 2},
		)

		result, err := solver.Solve(context.Background(), model)
		require.NoError(t, err)
		assert.Equal(t, Infeasible, result.Status)
	})

	t.Run("Trivially infeasible", func(t *testing.T) {
		model := NewModel(2)
		model.Add(Constraint{Name: "three of two", Variables: []int{1, 2}, Relation: AtLeast, Bound: 3})

		result, err := solver.Solve(context.Background(), model)
		require.NoError(t, err)
		assert.Equal(t, Infeasible, result.Status)
	})

	t.Run("Maximization", func(t *testing.T) {
		//** Arrange
		model := NewModel(4)
		model.Add(Constraint{Name: "two", Variables: []int{1, 2, 3, 4}, Relation: AtMost, Bound: 2})
		model.Maximize(Term{Variable: 1, Weight: 10}, Term{Variable: 2, Weight: 3}, Term{Variable: 3, Weight: 7})

		//** Act
		result, err := solver.Solve(context.Background(), model)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, Optimal, result.Status)
		assert.Equal(t, 17, result.Objective)
		assert.True(t, result.Solution.Value(1))
		assert.True(t, result.Solution.Value(3))
		assert.NoError(t, model.Check(result.Solution))
	})

	t.Run("Unconstrained objective variables", func(t *testing.T) {
		model := NewModel(3)
		model.Add(Constraint{Name: "one", Variables: []int{1, 2}, Relation: Exactly, Bound: 1})
		model.Maximize(Term{Variable: 3, Weight: 10})

		result, err := solver.Solve(context.Background(), model)
		require.NoError(t, err)
		assert.Equal(t, Optimal, result.Status)
		assert.Equal(t, 10, result.Objective)
		assert.True(t, result.Solution.Value(3))
	})

	t.Run("Negative weights", func(t *testing.T) {
		model := NewModel(2)
		model.Add(Constraint{Name: "some", Variables: []int{1, 2}, Relation: AtLeast, Bound: 1})
		model.Maximize(Term{Variable: 1, Weight: -5})

		result, err := solver.Solve(context.Background(), model)
		require.NoError(t, err)
		assert.Equal(t, Optimal, result.Status)
		assert.Equal(t, 0, result.Objective)
		assert.False(t, result.Solution.Value(1))
		assert.True(t, result.Solution.Value(2))
	})

	t.Run("Empty model", func(t *testing.T) {
		result, err := solver.Solve(context.Background(), NewModel(0))
		require.NoError(t, err)
		assert.Equal(t, Optimal, result.Status)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		//** Arrange
		model := NewModel(2)
		model.Add(Constraint{Name: "one", Variables: []int{1, 2}, Relation: Exactly, Bound: 1})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		//** Act
		result, err := solver.Solve(ctx, model)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, TimedOut, result.Status)
	})
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "optimal", Optimal.String())
	assert.Equal(t, "timed_out", TimedOut.String())
	assert.True(t, Feasible.Solved())
	assert.False(t, Infeasible.Solved())
}

func TestNewSolver(t *testing.T) {
	tests := []struct {
		name    string
		solver  string
		want    any
		wantErr bool
	}{
		{"in-process", Gophersat, &CNFSolver{}, false},
		{"external", "kissat", &CNFSolver{}, false},
		{"unknown", "z3", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solver, err := NewSolver(tt.solver)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSolver() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				assert.IsType(t, tt.want, solver)
			}
		})
	}

	t.Run("names", func(t *testing.T) {
		names := SolverNames()
		assert.Equal(t, Gophersat, names[0])
		assert.Contains(t, names, "kissat")
		assert.True(t, SolverAvailable(Gophersat))
		assert.False(t, SolverAvailable("z3"))
	})
}
