package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownCell = errors.New("cell is outside of the timetable")

// Assignment is the content of a filled cell
type Assignment struct {
	Subject string `json:"subject"`
	Faculty string `json:"faculty"`
	Room    string `json:"room"`
}

// Key addresses a cell of a timetable
type Key struct {
	Class string
	Day   Day
	Slot  Slot
}

func (key Key) String() string {
	return fmt.Sprintf("%v/%v/%v", key.Class, key.Day, key.Slot)
}

// Timetable maps every (class, day, slot) to an assignment or to nothing.
// All cells exist from construction on; a nil cell stands for an empty slot.
type Timetable struct {
	classes        []string
	positions      map[string]int
	lecturesPerDay int
	cells          [][][]*Assignment // class -> day -> slot
}

// NewTimetable builds an empty timetable for the given classes; repeated class names are kept once
func NewTimetable(classes []string, lecturesPerDay int) *Timetable {
	timetable := &Timetable{
		classes:        make([]string, 0, len(classes)),
		positions:      make(map[string]int, len(classes)),
		lecturesPerDay: max(lecturesPerDay, 0),
	}

	for _, class := range classes {
		if _, ok := timetable.positions[class]; ok {
			continue
		}
		timetable.positions[class] = len(timetable.classes)
		timetable.classes = append(timetable.classes, class)

		days := make([][]*Assignment, len(Days))
		for day := range days {
			days[day] = make([]*Assignment, timetable.lecturesPerDay)
		}
		timetable.cells = append(timetable.cells, days)
	}

	return timetable
}

func (timetable *Timetable) Classes() []string {
	if timetable == nil {
		return nil
	}
	return slices.Clone(timetable.classes)
}

func (timetable *Timetable) LecturesPerDay() int {
	if timetable == nil {
		return 0
	}
	return timetable.lecturesPerDay
}

func (timetable *Timetable) Slots() []Slot {
	return Slots(timetable.LecturesPerDay())
}

// Size returns the number of cells, filled or not
func (timetable *Timetable) Size() int {
	if timetable == nil {
		return 0
	}
	return len(timetable.classes) * len(Days) * timetable.lecturesPerDay
}

func (timetable *Timetable) Contains(key Key) bool {
	if timetable == nil {
		return false
	}
	_, ok := timetable.positions[key.Class]
	return ok && key.Day.Valid() && key.Slot >= 0 && int(key.Slot) < timetable.lecturesPerDay
}

// Set stores a copy of the assignment in the cell; a nil assignment empties it
func (timetable *Timetable) Set(key Key, assignment *Assignment) error {
	if !timetable.Contains(key) {
		return fmt.Errorf("%w: %v", ErrUnknownCell, key)
	}

	var cell *Assignment
	if assignment != nil {
		copied := *assignment
		cell = &copied
	}
	timetable.cells[timetable.positions[key.Class]][key.Day][key.Slot] = cell
	return nil
}

// Get returns a copy of the cell's assignment, nil when the slot is empty
func (timetable *Timetable) Get(key Key) (*Assignment, error) {
	if !timetable.Contains(key) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCell, key)
	}

	cell := timetable.cells[timetable.positions[key.Class]][key.Day][key.Slot]
	if cell == nil {
		return nil, nil
	}
	copied := *cell
	return &copied, nil
}

// Each visits every cell by class, day and slot order
func (timetable *Timetable) Each(visit func(key Key, assignment *Assignment)) {
	if timetable == nil {
		return
	}
	for position, class := range timetable.classes {
		for _, day := range Days {
			for slot, cell := range timetable.cells[position][day] {
				var assignment *Assignment
				if cell != nil {
					copied := *cell
					assignment = &copied
				}
				visit(Key{Class: class, Day: day, Slot: Slot(slot)}, assignment)
			}
		}
	}
}

// Filled counts the non-empty cells
func (timetable *Timetable) Filled() int {
	filled := 0
	timetable.Each(func(_ Key, assignment *Assignment) {
		if assignment != nil {
			filled++
		}
	})
	return filled
}

// SubjectHours counts the weekly sessions of a subject for a class
func (timetable *Timetable) SubjectHours(class, subject string) int {
	hours := 0
	timetable.Each(func(key Key, assignment *Assignment) {
		if key.Class == class && assignment != nil && SameName(assignment.Subject, subject) {
			hours++
		}
	})
	return hours
}

func (timetable *Timetable) Clone() *Timetable {
	if timetable == nil {
		return nil
	}
	clone := NewTimetable(timetable.classes, timetable.lecturesPerDay)
	timetable.Each(func(key Key, assignment *Assignment) {
		_ = clone.Set(key, assignment)
	})
	return clone
}

// MarshalJSON writes the persisted shape {class: {day: {slot: assignment|null}}} keeping the order
// of classes, days and slots
func (timetable *Timetable) MarshalJSON() ([]byte, error) {
	if timetable == nil {
		return []byte("null"), nil
	}

	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for position, class := range timetable.classes {
		if position > 0 {
			buffer.WriteByte(',')
		}
		if err := writeJsonKey(&buffer, class); err != nil {
			return nil, err
		}

		buffer.WriteByte('{')
		for _, day := range Days {
			if day > Monday {
				buffer.WriteByte(',')
			}
			if err := writeJsonKey(&buffer, day.String()); err != nil {
				return nil, err
			}

			buffer.WriteByte('{')
			for slot, cell := range timetable.cells[position][day] {
				if slot > 0 {
					buffer.WriteByte(',')
				}
				if err := writeJsonKey(&buffer, Slot(slot).String()); err != nil {
					return nil, err
				}
				value, err := json.Marshal(cell)
				if err != nil {
					return nil, err
				}
				buffer.Write(value)
			}
			buffer.WriteByte('}')
		}
		buffer.WriteByte('}')
	}
	buffer.WriteByte('}')

	return buffer.Bytes(), nil
}

func writeJsonKey(buffer *bytes.Buffer, key string) error {
	encoded, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buffer.Write(encoded)
	buffer.WriteByte(':')
	return nil
}

// UnmarshalJSON reads the persisted shape and rejects documents that miss any cell
func (timetable *Timetable) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return err
	} else if delimiter, ok := token.(json.Delim); !ok || delimiter != '{' {
		return fmt.Errorf("timetable must be a JSON object")
	}

	classes := make([]string, 0)
	schedules := make([]map[string]map[string]*Assignment, 0)
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		class := token.(string) // Object keys are always strings

		var schedule map[string]map[string]*Assignment
		if err := decoder.Decode(&schedule); err != nil {
			return fmt.Errorf("class %q: %w", class, err)
		}
		classes = append(classes, class)
		schedules = append(schedules, schedule)
	}
	if _, err := decoder.Token(); err != nil {
		return err
	}

	lecturesPerDay := 0
	if len(schedules) > 0 {
		for _, slots := range schedules[0] {
			lecturesPerDay = len(slots)
			break
		}
	}

	decoded := NewTimetable(classes, lecturesPerDay)
	if len(decoded.classes) != len(classes) {
		return fmt.Errorf("timetable has repeated classes")
	}

	for i, class := range classes {
		schedule := schedules[i]
		if len(schedule) != len(Days) {
			return fmt.Errorf("class %q must have exactly %d days, got %d", class, len(Days), len(schedule))
		}

		seenDays := make(map[Day]bool, len(Days))
		for dayName, slots := range schedule {
			day, err := ParseDay(dayName)
			if err != nil {
				return fmt.Errorf("class %q: %w", class, err)
			} else if seenDays[day] {
				return fmt.Errorf("class %q has %v more than once", class, day)
			} else if len(slots) != lecturesPerDay {
				return fmt.Errorf("class %q on %v must have %d slots, got %d", class, day, lecturesPerDay, len(slots))
			}

			seenDays[day] = true

			seenSlots := make(map[Slot]bool, len(slots))
			for label, assignment := range slots {
				slot, err := ParseSlot(label)
				if err != nil {
					return fmt.Errorf("class %q on %v: %w", class, day, err)
				} else if seenSlots[slot] {
					return fmt.Errorf("class %q on %v has %v more than once", class, day, slot)
				}
				seenSlots[slot] = true
				// Distinct in-range labels, as many as lecturesPerDay, cover L1..Ln
				if err := decoded.Set(Key{Class: class, Day: day, Slot: slot}, assignment); err != nil {
					return err
				}
			}
		}
	}

	*timetable = *decoded
	return nil
}
