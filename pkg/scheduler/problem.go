package scheduler

import (
	"slices"

	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// MaxDailyRepeats caps the sessions of a subject a class takes in a single day
const MaxDailyRepeats = 2

type pair struct {
	class, subject int
}

type triple struct {
	class, faculty, subject int
}

// Problem is the normalized input of a scheduling run: index spaces, requirements and preferences
// resolved to positions, and the bounds derived from them
type Problem struct {
	Classes   []string
	Subjects  []model.Subject
	Faculties []string
	Rooms     []model.Room
	Days      int
	Slots     int

	// Exact weekly hours per (class, subject)
	requirements map[pair]int
	// Preferred (class, faculty, subject) triples
	preferences map[triple]bool
	// Subjects allowed per class; a missing class allows every subject
	offered map[int]map[int]bool
	// Minimum number of filled slots per class
	coverage []int

	indexer indexer
}

// NewProblem resolves names case-insensitively; entries that cannot be resolved are ignored
func NewProblem(dataset model.Dataset, config model.Config, logger *zap.Logger) *Problem {
	if logger == nil {
		logger = zap.NewNop()
	}

	problem := &Problem{
		Classes:      lo.Uniq(dataset.Classes),
		Subjects:     lo.UniqBy(lo.Map(dataset.Subjects, func(subject model.Subject, _ int) model.Subject { return subject.Normalize() }), func(subject model.Subject) string { return model.FoldName(subject.Name) }),
		Faculties:    lo.Uniq(lo.Map(dataset.Faculties, func(faculty model.Faculty, _ int) string { return faculty.Name })),
		Rooms:        slices.Clone(dataset.Rooms),
		Days:         len(model.Days),
		Slots:        config.Lectures(),
		requirements: make(map[pair]int),
		preferences:  make(map[triple]bool),
		offered:      make(map[int]map[int]bool),
	}
	if len(problem.Faculties) == 0 {
		problem.Faculties = []string{model.TBD}
	}

	classes := positions(problem.Classes, func(class string) string { return class })
	subjects := positions(problem.Subjects, func(subject model.Subject) string { return subject.Name })
	faculties := positions(problem.Faculties, func(faculty string) string { return faculty })

	for _, requirement := range config.Requirements() {
		class, classOk := classes[model.FoldName(requirement.ClassID)]
		subject, subjectOk := subjects[model.FoldName(requirement.Subject)]
		if !classOk || !subjectOk || requirement.HoursPerWeek <= 0 {
			logger.Debug("Ignoring lesson requirement",
				zap.String("class", requirement.ClassID),
				zap.String("subject", requirement.Subject),
				zap.Int("hours", requirement.HoursPerWeek))
			continue
		}
		problem.requirements[pair{class, subject}] = requirement.HoursPerWeek
	}

	for _, preference := range append(config.Preferences(), dataset.Preferences...) {
		class, classOk := classes[model.FoldName(preference.ClassID)]
		faculty, facultyOk := faculties[model.FoldName(preference.Faculty)]
		if !classOk || !facultyOk {
			logger.Debug("Ignoring faculty preference",
				zap.String("faculty", preference.Faculty),
				zap.String("class", preference.ClassID))
			continue
		}
		for _, name := range preference.Subjects {
			if subject, ok := subjects[model.FoldName(name)]; ok {
				problem.preferences[triple{class, faculty, subject}] = true
			}
		}
	}

	for className, names := range dataset.SubjectsByClass {
		class, ok := classes[model.FoldName(className)]
		if !ok {
			continue
		}
		allowed := make(map[int]bool)
		for _, name := range names {
			if subject, ok := subjects[model.FoldName(name)]; ok {
				allowed[subject] = true
			}
		}
		if len(allowed) == 0 {
			continue
		}
		// A required subject is always offered to its class
		for key := range problem.requirements {
			if key.class == class {
				allowed[key.subject] = true
			}
		}
		problem.offered[class] = allowed
	}

	problem.coverage = make([]int, len(problem.Classes))
	for class := range problem.Classes {
		problem.coverage[class] = problem.minimumCoverage(class)
	}

	problem.indexer = newIndexer(len(problem.Classes), problem.Days, problem.Slots, len(problem.Subjects), len(problem.Faculties))
	return problem
}

// positions maps the folded name of every element to its first position
func positions[T any](elements []T, name func(T) string) map[string]int {
	result := make(map[string]int, len(elements))
	for position, element := range elements {
		folded := model.FoldName(name(element))
		if _, ok := result[folded]; !ok {
			result[folded] = position
		}
	}
	return result
}

// Degenerate reports whether there is nothing to schedule
func (problem *Problem) Degenerate() bool {
	return len(problem.Classes) == 0 || len(problem.Subjects) == 0
}

// Variables returns the number of decision variables
func (problem *Problem) Variables() int {
	if problem.Degenerate() {
		return 0
	}
	return problem.indexer.Size()
}

// Offers reports whether the subject may be placed for the class
func (problem *Problem) Offers(class, subject int) bool {
	allowed, restricted := problem.offered[class]
	return !restricted || allowed[subject]
}

// Requirement returns the exact weekly hours of a subject for a class, if any
func (problem *Problem) Requirement(class, subject int) (int, bool) {
	hours, ok := problem.requirements[pair{class, subject}]
	return hours, ok
}

// Prefers reports whether the faculty declared the subject as preferred for the class
func (problem *Problem) Prefers(class, faculty, subject int) bool {
	return problem.preferences[triple{class, faculty, subject}]
}

// Coverage returns the minimum number of filled slots of a class
func (problem *Problem) Coverage(class int) int {
	return problem.coverage[class]
}

// minimumCoverage is half of the week, bounded by what the class can actually fill:
// required subjects count their hours, other offered subjects the daily repeat cap of every day
func (problem *Problem) minimumCoverage(class int) int {
	week := problem.Days * problem.Slots
	capacity := 0
	for subject := range problem.Subjects {
		if !problem.Offers(class, subject) {
			continue
		}
		if hours, ok := problem.Requirement(class, subject); ok {
			capacity += hours
		} else {
			capacity += problem.Days * MaxDailyRepeats
		}
	}
	return min(week/2, capacity, week)
}

// EmptyTimetable returns the timetable of the problem's shape with every cell empty
func (problem *Problem) EmptyTimetable() *model.Timetable {
	return model.NewTimetable(problem.Classes, problem.Slots)
}
