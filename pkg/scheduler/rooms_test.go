package scheduler

import (
	"testing"

	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func roomsProblem(rooms []model.Room) *Problem {
	return NewProblem(model.Dataset{
		Classes:   []string{"BE A", "BE B", "BE C"},
		Subjects:  []model.Subject{{Name: "ML"}, {Name: "ML Lab"}},
		Faculties: []model.Faculty{{Name: "Prof X"}, {Name: "Prof Y"}, {Name: "Prof Z"}},
		Rooms:     rooms,
	}, model.DefaultConfig(), nil)
}

func TestAllocateRooms(t *testing.T) {
	t.Run("No rooms", func(t *testing.T) {
		//** Arrange
		problem := roomsProblem(nil)
		sessions := []session{{class: 0, subject: 0, faculty: 0}, {class: 1, subject: 0, faculty: 1}}

		//** Act
		labels := allocateRooms(problem, sessions, zap.NewNop())

		//** Assert
		assert.Equal(t, []string{model.TBD, model.TBD}, labels)
	})

	t.Run("Simultaneous sessions get distinct rooms", func(t *testing.T) {
		//** Arrange
		problem := roomsProblem([]model.Room{{Label: "101"}, {Label: "102"}, {Label: "103"}})
		sessions := []session{
			{class: 0, day: 0, slot: 0, subject: 0, faculty: 0},
			{class: 1, day: 0, slot: 0, subject: 0, faculty: 1},
			{class: 2, day: 0, slot: 0, subject: 0, faculty: 2},
			{class: 0, day: 0, slot: 1, subject: 0, faculty: 0},
		}

		//** Act
		labels := allocateRooms(problem, sessions, zap.NewNop())

		//** Assert
		require.Len(t, labels, 4)
		assert.ElementsMatch(t, []string{"101", "102", "103"}, labels[:3])
		assert.NotEmpty(t, labels[3])
	})

	t.Run("Lab subjects use lab rooms", func(t *testing.T) {
		//** Arrange
		problem := roomsProblem([]model.Room{{Label: "101", Kind: "classroom"}, {Label: "L1", Kind: "Computer Lab"}})
		sessions := []session{
			{class: 0, day: 2, slot: 3, subject: 1, faculty: 0},
			{class: 1, day: 2, slot: 3, subject: 0, faculty: 1},
		}

		//** Act
		labels := allocateRooms(problem, sessions, zap.NewNop())

		//** Assert
		assert.Equal(t, []string{"L1", "101"}, labels)
	})

	t.Run("Unmatched sessions share the first room", func(t *testing.T) {
		//** Arrange
		problem := roomsProblem([]model.Room{{Label: "101"}})
		sessions := []session{
			{class: 0, subject: 0, faculty: 0},
			{class: 1, subject: 0, faculty: 1},
		}

		//** Act
		labels := allocateRooms(problem, sessions, zap.NewNop())

		//** Assert
		assert.Equal(t, []string{"101", "101"}, labels)
	})
}

func TestAssignRooms(t *testing.T) {
	t.Run("Perfect matching", func(t *testing.T) {
		// Session 0 only fits room 0, so session 1 must take room 1
		compatible := func(session, room int) bool { return session == 1 || room == 0 }

		assignments, err := assignRooms([]int{0, 1}, []int{0, 1}, compatible)

		require.NoError(t, err)
		assert.Equal(t, map[int]int{0: 0, 1: 1}, assignments)
	})

	t.Run("Partial matching", func(t *testing.T) {
		compatible := func(session, room int) bool { return room == 0 }

		assignments, err := assignRooms([]int{0, 1}, []int{0, 1}, compatible)

		assert.ErrorIs(t, err, unassignableError{})
		assert.Len(t, assignments, 1)
	})
}
