package sat

import (
	"fmt"
	"strings"
)

type SATSolution []int64

type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Satisfies checks that the solution has no contradictions and satisfies every clause
func (s SAT) Satisfies(solution SATSolution) bool {
	// Make sure there are no duplicates nor contradictions
	literals := make(map[int64]bool, len(solution))
	for _, literal := range solution {
		if literals[literal] || literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	// Check that all clauses are satisfied
	for _, clause := range s.Clauses {
		satisfied := false
		for _, literal := range clause {
			if literals[literal] {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}

	return true
}

// Positives returns the set of variables assigned to true
func (solution SATSolution) Positives() map[uint64]bool {
	positives := make(map[uint64]bool, len(solution))
	for _, literal := range solution {
		if literal > 0 {
			positives[uint64(literal)] = true
		}
	}
	return positives
}
