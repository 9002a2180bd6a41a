package scheduler

import "github.com/limaJavier/scheduler/pkg/model"

// fallbackTimetable fills every slot round-robin: for each class, days then slots, the i-th slot gets
// subject i mod |subjects| and faculty i mod |faculties|. Rooms are TBD and no constraint is enforced.
func fallbackTimetable(problem *Problem) *model.Timetable {
	timetable := problem.EmptyTimetable()
	if problem.Degenerate() {
		return timetable
	}

	for _, class := range problem.Classes {
		i := 0
		for _, day := range model.Days {
			for _, slot := range model.Slots(problem.Slots) {
				assignment := &model.Assignment{
					Subject: problem.Subjects[i%len(problem.Subjects)].Name,
					Faculty: problem.Faculties[i%len(problem.Faculties)],
					Room:    model.TBD,
				}
				_ = timetable.Set(model.Key{Class: class, Day: day, Slot: slot}, assignment) // Keys come from the timetable's own shape
				i++
			}
		}
	}
	return timetable
}
