package scheduler

import (
	"cmp"
	"errors"
	"slices"

	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type unassignableError struct {
}

func (err unassignableError) Error() string {
	return "not all sessions can be assigned a room"
}

// session is a decision variable set to true by the solver
type session struct {
	class, day, slot, subject, faculty int
}

// allocateRooms gives every session a room label. Simultaneous sessions are matched to distinct
// compatible rooms; sessions left out of the matching share the first room.
func allocateRooms(problem *Problem, sessions []session, logger *zap.Logger) []string {
	labels := make([]string, len(sessions))
	if len(problem.Rooms) == 0 {
		for i := range labels {
			labels[i] = model.TBD
		}
		return labels
	}

	simultaneous := lo.GroupBy(lo.Range(len(sessions)), func(i int) [2]int {
		return [2]int{sessions[i].day, sessions[i].slot}
	})
	keys := lo.Keys(simultaneous)
	slices.SortFunc(keys, func(a, b [2]int) int {
		return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
	})

	rooms := lo.Range(len(problem.Rooms))
	for _, key := range keys {
		members := simultaneous[key]
		compatible := func(member, room int) bool {
			return problem.compatible(sessions[member].subject, room)
		}

		assignments, err := assignRooms(members, rooms, compatible)
		if errors.As(err, &unassignableError{}) {
			logger.Debug("Rooms are shared by simultaneous sessions",
				zap.Stringer("day", model.Day(key[0])),
				zap.Stringer("slot", model.Slot(key[1])),
				zap.Int("sessions", len(members)),
				zap.Int("rooms", len(assignments)))
		} else if err != nil {
			logger.Warn("Cannot match rooms", zap.Error(err))
		}

		for _, member := range members {
			room, ok := assignments[member]
			if !ok {
				room = 0
			}
			labels[member] = problem.Rooms[room].Label
		}
	}
	return labels
}

// compatible pairs lab subjects with lab rooms and other subjects with other rooms.
// A subject without any room of its kind may use every room.
func (problem *Problem) compatible(subject, room int) bool {
	wantsLab := problem.Subjects[subject].Kind == model.Lab
	if !lo.SomeBy(problem.Rooms, func(candidate model.Room) bool { return candidate.IsLab() == wantsLab }) {
		return true
	}
	return problem.Rooms[room].IsLab() == wantsLab
}

// assignRooms returns a maximum matching of sessions to rooms; when it leaves sessions out the
// partial matching comes with an unassignableError
func assignRooms(sessions []int, rooms []int, compatible func(session, room int) bool) (map[int]int, error) {
	// Build neighbors predicate based on compatibility
	neighbors := func(sessionAny any, roomAny any) (bool, error) {
		return compatible(sessionAny.(int), roomAny.(int)), nil
	}

	// Transform sessions and rooms to slices of any
	sessionsAny, roomsAny := lo.Map(sessions, func(session int, _ int) any { return session }), lo.Map(rooms, func(room int, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(sessionsAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	assignments := make(map[int]int, len(matching))
	for _, edge := range matching {
		sessionIndex, roomIndex := edge.Node1, edge.Node2-len(sessions)
		assignments[sessions[sessionIndex]] = rooms[roomIndex]
	}

	// Check the matching is a maximum one
	if len(matching) < len(sessions) {
		return assignments, unassignableError{}
	}
	return assignments, nil
}
