package csp

import (
	"slices"

	"github.com/limaJavier/scheduler/pkg/sat"
	"github.com/samber/lo"
)

// encoder translates cardinality constraints into clauses with sequential counters (Sinz, 2005).
// Auxiliary variables are allocated after the model's own variables.
type encoder struct {
	variables int64
	clauses   [][]int64
}

func newEncoder(variables int) *encoder {
	return &encoder{variables: int64(variables)}
}

func (e *encoder) clone() *encoder {
	return &encoder{variables: e.variables, clauses: slices.Clone(e.clauses)}
}

func (e *encoder) fresh() int64 {
	e.variables++
	return e.variables
}

func (e *encoder) add(clause ...int64) {
	e.clauses = append(e.clauses, clause)
}

func (e *encoder) instance() sat.SAT {
	return sat.SAT{Variables: uint64(e.variables), Clauses: e.clauses}
}

func negate(lits []int64) []int64 {
	return lo.Map(lits, func(lit int64, _ int) int64 { return -lit })
}

func (e *encoder) constraint(constraint Constraint) {
	lits := lo.Map(constraint.Variables, func(variable int, _ int) int64 { return int64(variable) })
	switch constraint.Relation {
	case AtMost:
		e.atMost(lits, constraint.Bound)
	case AtLeast:
		e.atLeast(lits, constraint.Bound)
	case Exactly:
		e.atMost(lits, constraint.Bound)
		e.atLeast(lits, constraint.Bound)
	}
}

// atMost requires k >= 0
func (e *encoder) atMost(lits []int64, k int) {
	n := len(lits)
	switch {
	case k >= n:
	case k == 0:
		for _, lit := range lits {
			e.add(-lit)
		}
	case k > n/2:
		// At most k true is at least n-k false
		e.sequentialAtLeast(negate(lits), n-k)
	default:
		e.sequentialAtMost(lits, k)
	}
}

// atLeast requires k <= len(lits)
func (e *encoder) atLeast(lits []int64, k int) {
	n := len(lits)
	switch {
	case k <= 0:
	case k == n:
		for _, lit := range lits {
			e.add(lit)
		}
	case k == 1:
		e.add(slices.Clone(lits)...)
	case k > n/2:
		// At least k true is at most n-k false
		e.sequentialAtMost(negate(lits), n-k)
	default:
		e.sequentialAtLeast(lits, k)
	}
}

// sequentialAtMost encodes sum(lits) <= k for 1 <= k < len(lits).
// counter[j] of step i is implied by "at least j of the first i literals are true".
func (e *encoder) sequentialAtMost(lits []int64, k int) {
	n := len(lits)
	previous := make([]int64, k+1)
	for i := 1; i < n; i++ {
		lit := lits[i-1]
		current := make([]int64, k+1)
		for j := 1; j <= k; j++ {
			current[j] = e.fresh()
		}

		e.add(-lit, current[1])
		if i == 1 {
			for j := 2; j <= k; j++ {
				e.add(-current[j])
			}
		} else {
			e.add(-previous[1], current[1])
			for j := 2; j <= k; j++ {
				e.add(-lit, -previous[j-1], current[j])
				e.add(-previous[j], current[j])
			}
			e.add(-lit, -previous[k])
		}
		previous = current
	}
	e.add(-lits[n-1], -previous[k])
}

// sequentialAtLeast encodes sum(lits) >= k for 1 <= k <= len(lits).
// counter[j] of step i implies "at least j of the first i literals are true"; zero stands for false.
func (e *encoder) sequentialAtLeast(lits []int64, k int) {
	n := len(lits)
	previous := make([]int64, k+1)
	for i := 1; i <= n; i++ {
		lit := lits[i-1]
		current := make([]int64, k+1)
		for j := 1; j <= min(i, k); j++ {
			counter := e.fresh()
			current[j] = counter

			// Either j were already reached or this literal is the j-th
			clause := []int64{-counter, lit}
			if previous[j] != 0 {
				clause = append(clause, previous[j])
			}
			e.add(clause...)

			if j > 1 {
				clause := []int64{-counter, previous[j-1]}
				if previous[j] != 0 {
					clause = append(clause, previous[j])
				}
				e.add(clause...)
			}
		}
		previous = current
	}
	e.add(previous[k])
}
