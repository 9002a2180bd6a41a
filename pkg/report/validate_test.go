package report

import (
	"encoding/json"
	"testing"

	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(t *testing.T, timetable *model.Timetable, class string, day model.Day, slot model.Slot, subject, faculty, room string) {
	t.Helper()
	require.NoError(t, timetable.Set(model.Key{Class: class, Day: day, Slot: slot}, &model.Assignment{Subject: subject, Faculty: faculty, Room: room}))
}

func TestValidate(t *testing.T) {
	t.Run("Empty timetable", func(t *testing.T) {
		for _, timetable := range []*model.Timetable{nil, model.NewTimetable(nil, 6)} {
			//** Act
			report := Validate(timetable)

			//** Assert
			assert.False(t, report.Valid)
			require.Len(t, report.Conflicts, 1)
			assert.Equal(t, "No timetable data", report.Conflicts[0].Message)
			assert.Empty(t, report.Warnings)
			assert.Equal(t, Stats{FacultyAssignments: map[string]int{}}, report.Stats)
		}
	})

	t.Run("No-data conflict encodes as its message", func(t *testing.T) {
		//** Act
		encoded, err := json.Marshal(Validate(nil))
		require.NoError(t, err)

		//** Assert
		var decoded struct {
			Conflicts []any `json:"conflicts"`
		}
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.Equal(t, []any{"No timetable data"}, decoded.Conflicts)

		var report Report
		require.NoError(t, json.Unmarshal(encoded, &report))
		assert.Equal(t, []Conflict{{Type: ConflictNoData, Message: "No timetable data"}}, report.Conflicts)

		facultyConflict, err := json.Marshal(Conflict{Type: ConflictFaculty, Faculty: "Prof X", Classes: []string{"BE A", "BE B"}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type": "faculty_conflict", "faculty": "Prof X", "classes": ["BE A", "BE B"]}`, string(facultyConflict))
	})

	t.Run("Single class with three sessions", func(t *testing.T) {
		//** Arrange
		timetable := model.NewTimetable([]string{"BE A"}, 6)
		set(t, timetable, "BE A", model.Monday, 0, "ML", "Prof X", "101")
		set(t, timetable, "BE A", model.Wednesday, 2, "ML", "Prof X", "101")
		set(t, timetable, "BE A", model.Friday, 5, "ML", "Prof X", "101")

		//** Act
		report := Validate(timetable)

		//** Assert
		assert.True(t, report.Valid)
		assert.Empty(t, report.Conflicts)
		assert.Equal(t, 30, report.Stats.TotalSlots)
		assert.Equal(t, 3, report.Stats.FilledSlots)
		assert.Equal(t, 27, report.Stats.EmptySlots)
		assert.Equal(t, 1, report.Stats.Classes)
		assert.Equal(t, map[string]int{"Prof X": 3}, report.Stats.FacultyAssignments)
		assert.Equal(t, 10.0, report.Stats.FillRate)
		require.Len(t, report.Warnings, 1)
		assert.Equal(t, WarningLowFillRate, report.Warnings[0].Type)
		assert.Equal(t, 10.0, report.Warnings[0].FillRate)
	})

	t.Run("Faculty conflicts", func(t *testing.T) {
		//** Arrange
		timetable := model.NewTimetable([]string{"BE A", "BE B", "BE C"}, 1)
		set(t, timetable, "BE A", model.Monday, 0, "ML", "Prof X", "")
		set(t, timetable, "BE B", model.Monday, 0, "DS", "Prof X", "")
		set(t, timetable, "BE C", model.Monday, 0, "OS", model.TBD, "")
		set(t, timetable, "BE A", model.Tuesday, 0, "OS", model.TBD, "")

		//** Act
		report := Validate(timetable)

		//** Assert
		assert.False(t, report.Valid)
		require.Len(t, report.Conflicts, 1)
		assert.Equal(t, Conflict{
			Type:    ConflictFaculty,
			Faculty: "Prof X",
			Day:     "Monday",
			Slot:    "L1",
			Classes: []string{"BE B", "BE A"},
		}, report.Conflicts[0])
	})

	t.Run("Uneven workload", func(t *testing.T) {
		//** Arrange
		timetable := model.NewTimetable([]string{"BE A", "BE B"}, 6)
		for slot := range model.Slot(6) {
			set(t, timetable, "BE A", model.Monday, slot, "ML", "Prof X", "")
		}
		set(t, timetable, "BE B", model.Monday, 0, "DS", "Prof Y", "")
		set(t, timetable, "BE B", model.Tuesday, 0, "DS", "Prof Z", "")
		for slot := range model.Slot(6) {
			set(t, timetable, "BE B", model.Friday, slot, "OS", model.TBD, "")
		}

		//** Act
		report := Validate(timetable)

		//** Assert
		require.Len(t, report.Warnings, 2)
		// Mean over Prof X, Prof Y, Prof Z and TBD is 3.5, so only Prof X exceeds 5.25
		assert.Equal(t, Warning{Type: WarningUnevenWorkload, Faculty: "Prof X", Assignments: 6, Average: 3.5}, report.Warnings[0])
		assert.Equal(t, WarningLowFillRate, report.Warnings[1].Type)
	})

	t.Run("Validate is pure", func(t *testing.T) {
		//** Arrange
		timetable := model.NewTimetable([]string{"BE A", "BE B"}, 2)
		set(t, timetable, "BE A", model.Monday, 0, "ML", "Prof X", "")
		set(t, timetable, "BE B", model.Monday, 0, "ML", "Prof X", "")
		set(t, timetable, "BE B", model.Monday, 1, "DS", "Prof Y", "")
		before := timetable.Clone()

		//** Act
		first, second := Validate(timetable), Validate(timetable)

		//** Assert
		assert.Equal(t, first, second)
		assert.Equal(t, before, timetable)
		assert.Equal(t, 15.0, first.Stats.FillRate)
	})

	t.Run("Fill rate rounding", func(t *testing.T) {
		timetable := model.NewTimetable([]string{"BE A"}, 6)
		set(t, timetable, "BE A", model.Monday, 0, "ML", "Prof X", "")

		assert.Equal(t, 3.3, Validate(timetable).Stats.FillRate)
	})
}
