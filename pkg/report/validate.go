package report

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/samber/lo"
)

const (
	ConflictNoData  = "no_data"
	ConflictFaculty = "faculty_conflict"

	WarningUnevenWorkload = "uneven_workload"
	WarningLowFillRate    = "low_fill_rate"
)

const (
	// A faculty is overloaded above this multiple of the mean assignments
	UnevenWorkloadFactor = 1.5
	// Timetables filled below this ratio are reported
	LowFillRate = 0.5
)

type Conflict struct {
	Type    string   `json:"type"`
	Message string   `json:"message,omitempty"`
	Faculty string   `json:"faculty,omitempty"`
	Day     string   `json:"day,omitempty"`
	Slot    string   `json:"slot,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

// MarshalJSON writes the no-data conflict as its bare message
func (conflict Conflict) MarshalJSON() ([]byte, error) {
	if conflict.Type == ConflictNoData {
		return json.Marshal(conflict.Message)
	}
	type plain Conflict
	return json.Marshal(plain(conflict))
}

func (conflict *Conflict) UnmarshalJSON(data []byte) error {
	var message string
	if err := json.Unmarshal(data, &message); err == nil {
		*conflict = Conflict{Type: ConflictNoData, Message: message}
		return nil
	}
	type plain Conflict
	return json.Unmarshal(data, (*plain)(conflict))
}

type Warning struct {
	Type        string  `json:"type"`
	Message     string  `json:"message,omitempty"`
	Faculty     string  `json:"faculty,omitempty"`
	Assignments int     `json:"assignments,omitempty"`
	Average     float64 `json:"average,omitempty"`
	FillRate    float64 `json:"fillRate,omitempty"`
}

type Stats struct {
	TotalSlots         int            `json:"totalSlots"`
	FilledSlots        int            `json:"filledSlots"`
	EmptySlots         int            `json:"emptySlots"`
	Classes            int            `json:"classes"`
	FacultyAssignments map[string]int `json:"facultyAssignments"`
	// Percentage of filled slots rounded to one decimal
	FillRate float64 `json:"fillRate"`
}

type Report struct {
	Valid     bool       `json:"valid"`
	Conflicts []Conflict `json:"conflicts"`
	Warnings  []Warning  `json:"warnings"`
	Stats     Stats      `json:"stats"`
}

// Validate analyses a timetable however it was produced. Findings are data: it never fails and
// returns the same report for the same timetable.
func Validate(timetable *model.Timetable) Report {
	report := Report{
		Conflicts: []Conflict{},
		Warnings:  []Warning{},
		Stats:     Stats{FacultyAssignments: map[string]int{}},
	}
	if timetable == nil || len(timetable.Classes()) == 0 {
		report.Conflicts = append(report.Conflicts, Conflict{Type: ConflictNoData, Message: "No timetable data"})
		return report
	}

	report.Stats.Classes = len(timetable.Classes())
	schedule := make(map[[2]int]map[string]string) // (day, slot) -> faculty -> first class

	timetable.Each(func(key model.Key, assignment *model.Assignment) {
		report.Stats.TotalSlots++
		if assignment == nil {
			report.Stats.EmptySlots++
			return
		}
		report.Stats.FilledSlots++

		faculty := facultyOf(assignment)
		report.Stats.FacultyAssignments[faculty]++

		// Check for faculty conflicts (same faculty, same time, different class)
		timeKey := [2]int{int(key.Day), int(key.Slot)}
		if _, ok := schedule[timeKey]; !ok {
			schedule[timeKey] = make(map[string]string)
		}
		if other, busy := schedule[timeKey][faculty]; !busy {
			schedule[timeKey][faculty] = key.Class
		} else if other != key.Class && faculty != model.TBD {
			report.Conflicts = append(report.Conflicts, Conflict{
				Type:    ConflictFaculty,
				Faculty: faculty,
				Day:     key.Day.String(),
				Slot:    key.Slot.String(),
				Classes: []string{key.Class, other},
			})
		}
	})

	// Check for uneven workload distribution
	if len(report.Stats.FacultyAssignments) > 0 {
		faculties := lo.Keys(report.Stats.FacultyAssignments)
		slices.Sort(faculties)

		average := float64(lo.Sum(lo.Values(report.Stats.FacultyAssignments))) / float64(len(faculties))
		for _, faculty := range faculties {
			count := report.Stats.FacultyAssignments[faculty]
			if faculty != model.TBD && float64(count) > average*UnevenWorkloadFactor {
				report.Warnings = append(report.Warnings, Warning{
					Type:        WarningUnevenWorkload,
					Faculty:     faculty,
					Assignments: count,
					Average:     round(average, 1),
				})
			}
		}
	}

	// Check fill rate
	if report.Stats.TotalSlots > 0 {
		fillRate := float64(report.Stats.FilledSlots) / float64(report.Stats.TotalSlots)
		report.Stats.FillRate = round(fillRate*100, 1)
		if fillRate < LowFillRate {
			report.Warnings = append(report.Warnings, Warning{
				Type:     WarningLowFillRate,
				Message:  "Less than 50% of slots are filled",
				FillRate: report.Stats.FillRate,
			})
		}
	}

	report.Valid = len(report.Conflicts) == 0
	return report
}

func round(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(value*scale) / scale
}
