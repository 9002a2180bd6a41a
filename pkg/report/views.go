package report

import "github.com/limaJavier/scheduler/pkg/model"

type FacultySession struct {
	Subject string `json:"subject"`
	Class   string `json:"class"`
	Room    string `json:"room,omitempty"`
}

// FacultySchedule maps day and slot to the session a faculty teaches
type FacultySchedule map[model.Day]map[model.Slot]FacultySession

type RoomSession struct {
	Subject string `json:"subject"`
	Class   string `json:"class"`
	Faculty string `json:"faculty"`
}

// RoomSchedule maps day and slot to the session held in a room
type RoomSchedule map[model.Day]map[model.Slot]RoomSession

// FacultyView projects the sessions taught by a faculty, matched case-insensitively
func FacultyView(timetable *model.Timetable, faculty string) FacultySchedule {
	view := FacultySchedule{}
	timetable.Each(func(key model.Key, assignment *model.Assignment) {
		if assignment == nil || !model.SameName(facultyOf(assignment), faculty) {
			return
		}
		if _, ok := view[key.Day]; !ok {
			view[key.Day] = make(map[model.Slot]FacultySession)
		}
		view[key.Day][key.Slot] = FacultySession{Subject: assignment.Subject, Class: key.Class, Room: assignment.Room}
	})
	return view
}

// RoomView projects the sessions held in a room, matched case-insensitively
func RoomView(timetable *model.Timetable, room string) RoomSchedule {
	view := RoomSchedule{}
	timetable.Each(func(key model.Key, assignment *model.Assignment) {
		if assignment == nil || !model.SameName(assignment.Room, room) {
			return
		}
		if _, ok := view[key.Day]; !ok {
			view[key.Day] = make(map[model.Slot]RoomSession)
		}
		view[key.Day][key.Slot] = RoomSession{Subject: assignment.Subject, Class: key.Class, Faculty: facultyOf(assignment)}
	})
	return view
}

// facultyOf reads an unassigned faculty as TBD
func facultyOf(assignment *model.Assignment) string {
	if assignment.Faculty == "" {
		return model.TBD
	}
	return assignment.Faculty
}
