package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Day is one of the five teaching weekdays
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Days holds the teaching week in its fixed order
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func (day Day) String() string {
	if day < Monday || day > Friday {
		return fmt.Sprintf("Day(%d)", int(day))
	}
	return dayNames[day]
}

func (day Day) Valid() bool {
	return day >= Monday && day <= Friday
}

func (day Day) MarshalText() ([]byte, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("invalid day: %d", int(day))
	}
	return []byte(day.String()), nil
}

func (day *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*day = parsed
	return nil
}

// ParseDay accepts a weekday name regardless of its case
func ParseDay(name string) (Day, error) {
	for i, dayName := range dayNames {
		if strings.EqualFold(dayName, name) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", name)
}

// Slot is the zero-based index of a teaching period within a day; its label is L1..Ln
type Slot int

func (slot Slot) String() string {
	return "L" + strconv.Itoa(int(slot)+1)
}

func (slot Slot) MarshalText() ([]byte, error) {
	if slot < 0 {
		return nil, fmt.Errorf("invalid slot: %d", int(slot))
	}
	return []byte(slot.String()), nil
}

func (slot *Slot) UnmarshalText(text []byte) error {
	parsed, err := ParseSlot(string(text))
	if err != nil {
		return err
	}
	*slot = parsed
	return nil
}

// ParseSlot converts a label such as "L3" into its slot index
func ParseSlot(label string) (Slot, error) {
	if len(label) < 2 || (label[0] != 'L' && label[0] != 'l') {
		return 0, fmt.Errorf("invalid slot label %q", label)
	}
	number, err := strconv.Atoi(label[1:])
	if err != nil || number < 1 {
		return 0, fmt.Errorf("invalid slot label %q", label)
	}
	return Slot(number - 1), nil
}

// Slots returns the ordered slots of a day with the given number of lectures
func Slots(lecturesPerDay int) []Slot {
	slots := make([]Slot, 0, max(lecturesPerDay, 0))
	for i := range max(lecturesPerDay, 0) {
		slots = append(slots, Slot(i))
	}
	return slots
}
