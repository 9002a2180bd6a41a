package scheduler

import (
	"fmt"

	"github.com/limaJavier/scheduler/pkg/csp"
	"github.com/limaJavier/scheduler/pkg/model"
)

// constraintFamily generates every constraint of one kind
type constraintFamily func(problem *Problem) []csp.Constraint

var constraintFamilies = []constraintFamily{
	classSlotConstraints,
	facultyConstraints,
	hoursConstraints,
	coverageConstraints,
	repeatConstraints,
	offeringConstraints,
}

// buildModel generates the constraint families on different goroutines and adds them to the model
// in the order of constraintFamilies, so that the model does not depend on scheduling
func buildModel(problem *Problem) *csp.Model {
	type generated struct {
		position    int
		constraints []csp.Constraint
	}

	constraintsChannel := make(chan generated) // Channel to collect constraints
	for position, family := range constraintFamilies {
		go func() {
			constraintsChannel <- generated{position: position, constraints: family(problem)}
		}()
	}

	families := make([][]csp.Constraint, len(constraintFamilies))
	for range constraintFamilies {
		collected := <-constraintsChannel
		families[collected.position] = collected.constraints
	}

	cspModel := csp.NewModel(problem.Variables())
	for _, constraints := range families {
		cspModel.Add(constraints...)
	}
	cspModel.Maximize(preferenceObjective(problem)...)
	return cspModel
}

// A class takes at most one session per (day, slot)
func classSlotConstraints(problem *Problem) []csp.Constraint {
	constraints := make([]csp.Constraint, 0, len(problem.Classes)*problem.Days*problem.Slots)
	for class := range problem.Classes {
		for day := range problem.Days {
			for slot := range problem.Slots {
				variables := make([]int, 0, len(problem.Subjects)*len(problem.Faculties))
				for subject := range problem.Subjects {
					for faculty := range problem.Faculties {
						variables = append(variables, problem.indexer.Index(class, day, slot, subject, faculty))
					}
				}
				constraints = append(constraints, csp.Constraint{
					Name:      fmt.Sprintf("class %q holds one session on %v %v", problem.Classes[class], model.Day(day), model.Slot(slot)),
					Variables: variables,
					Relation:  csp.AtMost,
					Bound:     1,
				})
			}
		}
	}
	return constraints
}

// A faculty teaches at most one class per (day, slot)
func facultyConstraints(problem *Problem) []csp.Constraint {
	constraints := make([]csp.Constraint, 0, len(problem.Faculties)*problem.Days*problem.Slots)
	for faculty := range problem.Faculties {
		for day := range problem.Days {
			for slot := range problem.Slots {
				variables := make([]int, 0, len(problem.Classes)*len(problem.Subjects))
				for class := range problem.Classes {
					for subject := range problem.Subjects {
						variables = append(variables, problem.indexer.Index(class, day, slot, subject, faculty))
					}
				}
				constraints = append(constraints, csp.Constraint{
					Name:      fmt.Sprintf("faculty %q teaches once on %v %v", problem.Faculties[faculty], model.Day(day), model.Slot(slot)),
					Variables: variables,
					Relation:  csp.AtMost,
					Bound:     1,
				})
			}
		}
	}
	return constraints
}

// A required subject is taught exactly its weekly hours
func hoursConstraints(problem *Problem) []csp.Constraint {
	constraints := make([]csp.Constraint, 0, len(problem.requirements))
	for class := range problem.Classes {
		for subject := range problem.Subjects {
			hours, ok := problem.Requirement(class, subject)
			if !ok {
				continue
			}
			variables := make([]int, 0, problem.Days*problem.Slots*len(problem.Faculties))
			for day := range problem.Days {
				for slot := range problem.Slots {
					for faculty := range problem.Faculties {
						variables = append(variables, problem.indexer.Index(class, day, slot, subject, faculty))
					}
				}
			}
			constraints = append(constraints, csp.Constraint{
				Name:      fmt.Sprintf("class %q takes %v for %d hours", problem.Classes[class], problem.Subjects[subject].Name, hours),
				Variables: variables,
				Relation:  csp.Exactly,
				Bound:     hours,
			})
		}
	}
	return constraints
}

// A class fills at least its minimum coverage over the week
func coverageConstraints(problem *Problem) []csp.Constraint {
	constraints := make([]csp.Constraint, 0, len(problem.Classes))
	for class := range problem.Classes {
		variables := make([]int, 0, problem.Days*problem.Slots*len(problem.Subjects)*len(problem.Faculties))
		for day := range problem.Days {
			for slot := range problem.Slots {
				for subject := range problem.Subjects {
					for faculty := range problem.Faculties {
						variables = append(variables, problem.indexer.Index(class, day, slot, subject, faculty))
					}
				}
			}
		}
		constraints = append(constraints, csp.Constraint{
			Name:      fmt.Sprintf("class %q fills at least %d slots", problem.Classes[class], problem.Coverage(class)),
			Variables: variables,
			Relation:  csp.AtLeast,
			Bound:     problem.Coverage(class),
		})
	}
	return constraints
}

// A class takes a subject at most MaxDailyRepeats times a day
func repeatConstraints(problem *Problem) []csp.Constraint {
	constraints := make([]csp.Constraint, 0, len(problem.Classes)*problem.Days*len(problem.Subjects))
	for class := range problem.Classes {
		for day := range problem.Days {
			for subject := range problem.Subjects {
				variables := make([]int, 0, problem.Slots*len(problem.Faculties))
				for slot := range problem.Slots {
					for faculty := range problem.Faculties {
						variables = append(variables, problem.indexer.Index(class, day, slot, subject, faculty))
					}
				}
				constraints = append(constraints, csp.Constraint{
					Name:      fmt.Sprintf("class %q takes %v at most %d times on %v", problem.Classes[class], problem.Subjects[subject].Name, MaxDailyRepeats, model.Day(day)),
					Variables: variables,
					Relation:  csp.AtMost,
					Bound:     MaxDailyRepeats,
				})
			}
		}
	}
	return constraints
}

// A class only takes the subjects offered to it
func offeringConstraints(problem *Problem) []csp.Constraint {
	constraints := make([]csp.Constraint, 0, len(problem.offered))
	for class := range problem.Classes {
		if _, restricted := problem.offered[class]; !restricted {
			continue
		}
		variables := make([]int, 0)
		for subject := range problem.Subjects {
			if problem.Offers(class, subject) {
				continue
			}
			for day := range problem.Days {
				for slot := range problem.Slots {
					for faculty := range problem.Faculties {
						variables = append(variables, problem.indexer.Index(class, day, slot, subject, faculty))
					}
				}
			}
		}
		if len(variables) == 0 {
			continue
		}
		constraints = append(constraints, csp.Constraint{
			Name:      fmt.Sprintf("class %q only takes offered subjects", problem.Classes[class]),
			Variables: variables,
			Relation:  csp.AtMost,
			Bound:     0,
		})
	}
	return constraints
}
