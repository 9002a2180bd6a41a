package scheduler

import (
	"fmt"

	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/samber/lo"
)

// Verify checks that a timetable has the problem's shape and satisfies every hard constraint.
// It returns the first violation found.
func Verify(timetable *model.Timetable, problem *Problem) error {
	if timetable == nil {
		return fmt.Errorf("timetable is missing")
	} else if timetable.LecturesPerDay() != problem.Slots || len(timetable.Classes()) != len(problem.Classes) {
		return fmt.Errorf("timetable shape %d classes x %d slots differs from %d classes x %d slots",
			len(timetable.Classes()), timetable.LecturesPerDay(), len(problem.Classes), problem.Slots)
	}

	// Names are the problem's own, so they are looked up exactly
	classes := lo.SliceToMap(lo.Range(len(problem.Classes)), func(i int) (string, int) { return problem.Classes[i], i })
	subjects := lo.SliceToMap(lo.Range(len(problem.Subjects)), func(i int) (string, int) { return problem.Subjects[i].Name, i })
	faculties := lo.SliceToMap(lo.Range(len(problem.Faculties)), func(i int) (string, int) { return problem.Faculties[i], i })

	//** Initialize counters
	facultyAssistance := make(map[[3]int]string) // (faculty, day, slot) -> class
	hours := make(map[pair]int)
	daily := make(map[[3]int]int) // (class, day, subject) -> sessions
	filled := make([]int, len(problem.Classes))

	var violation error
	timetable.Each(func(key model.Key, assignment *model.Assignment) {
		if violation != nil || assignment == nil {
			return
		}

		class, ok := classes[key.Class]
		if !ok {
			violation = fmt.Errorf("unknown class %q", key.Class)
			return
		}
		subject, ok := subjects[assignment.Subject]
		if !ok {
			violation = fmt.Errorf("%v: unknown subject %q", key, assignment.Subject)
			return
		}
		faculty, ok := faculties[assignment.Faculty]
		if !ok {
			violation = fmt.Errorf("%v: unknown faculty %q", key, assignment.Faculty)
			return
		}

		// Check that:
		// - The faculty is not already teaching in the day and slot
		// - The subject is offered to the class
		// - The subject is not taught more than MaxDailyRepeats times in the day
		assistanceKey := [3]int{faculty, int(key.Day), int(key.Slot)}
		if other, busy := facultyAssistance[assistanceKey]; busy {
			violation = fmt.Errorf("%v: faculty %q already teaches %q", key, assignment.Faculty, other)
			return
		} else if !problem.Offers(class, subject) {
			violation = fmt.Errorf("%v: subject %q is not offered to the class", key, assignment.Subject)
			return
		}

		dailyKey := [3]int{class, int(key.Day), subject}
		if daily[dailyKey]++; daily[dailyKey] > MaxDailyRepeats {
			violation = fmt.Errorf("%v: subject %q is taught more than %d times in the day", key, assignment.Subject, MaxDailyRepeats)
			return
		}

		facultyAssistance[assistanceKey] = key.Class // Store faculty assistance
		hours[pair{class, subject}]++                // Store lesson taught
		filled[class]++
	})
	if violation != nil {
		return violation
	}

	// Check whether the hours taught match the requirements and every class reaches its coverage
	for class := range problem.Classes {
		for subject := range problem.Subjects {
			if required, ok := problem.Requirement(class, subject); ok && hours[pair{class, subject}] != required {
				return fmt.Errorf("class %q takes %q for %d hours instead of %d",
					problem.Classes[class], problem.Subjects[subject].Name, hours[pair{class, subject}], required)
			}
		}
		if filled[class] < problem.Coverage(class) {
			return fmt.Errorf("class %q fills %d slots, less than %d", problem.Classes[class], filled[class], problem.Coverage(class))
		}
	}
	return nil
}
