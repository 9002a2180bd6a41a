package scheduler

import "github.com/limaJavier/scheduler/pkg/csp"

// PreferenceWeight is earned by every session of a preferred (class, faculty, subject) triple
const PreferenceWeight = 10

func preferenceObjective(problem *Problem) []csp.Term {
	terms := make([]csp.Term, 0)
	for class := range problem.Classes {
		for faculty := range problem.Faculties {
			for subject := range problem.Subjects {
				if !problem.Prefers(class, faculty, subject) {
					continue
				}
				for day := range problem.Days {
					for slot := range problem.Slots {
						terms = append(terms, csp.Term{
							Variable: problem.indexer.Index(class, day, slot, subject, faculty),
							Weight:   PreferenceWeight,
						})
					}
				}
			}
		}
	}
	return terms
}
