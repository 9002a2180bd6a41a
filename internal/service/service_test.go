package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/limaJavier/scheduler/internal/store"
	"github.com/limaJavier/scheduler/pkg/csp"
	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/limaJavier/scheduler/pkg/report"
	"github.com/limaJavier/scheduler/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	repository := store.New(store.NewMemoryBackend())
	service := New(repository, scheduler.New(csp.NewGophersatSolver(), scheduler.WithTimeLimit(10*time.Second)), nil)
	return service, repository
}

func seed(t *testing.T, repository *store.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repository.SaveDataset(ctx, model.Dataset{
		Classes:   []string{"BE A", "BE B"},
		Subjects:  []model.Subject{{Name: "ML"}, {Name: "DBMS"}},
		Faculties: []model.Faculty{{Name: "Prof X"}, {Name: "Prof Y"}},
		Rooms:     []model.Room{{Label: "101"}, {Label: "102"}},
	}))

	config := model.DefaultConfig()
	config.LecturesPerDay = 2
	config.LessonHours = map[string][]model.LessonHours{
		"BE A": {{Subject: "ML", Hours: 3}, {Subject: "DBMS", Hours: 2}},
		"BE B": {{Subject: "ML", Hours: 2}},
	}
	config.FacultyChoices = map[string]map[string][]string{
		"Prof X": {"BE A": {"ML"}},
	}
	require.NoError(t, repository.SaveConfig(ctx, config))
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Stored dataset is scheduled and persisted", func(t *testing.T) {
		//** Arrange
		service, repository := newService(t)
		seed(t, repository)

		//** Act
		generated, run, err := service.Generate(ctx)

		//** Assert
		require.NoError(t, err)
		require.Equal(t, scheduler.OutcomeOptimal, generated.Outcome, generated.Reason)
		assert.Equal(t, "optimal", run.Status)
		assert.Equal(t, generated.Timetable.Filled(), run.Filled)

		stored, err := service.Timetable(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"BE A", "BE B"}, stored.Classes())
		assert.Equal(t, 3, stored.SubjectHours("BE A", "ML"))
		assert.Equal(t, 2, stored.SubjectHours("BE A", "DBMS"))
		assert.Equal(t, 2, stored.SubjectHours("BE B", "ML"))

		lastRun, err := service.LastRun(ctx)
		require.NoError(t, err)
		assert.Equal(t, run.ID, lastRun.ID)
	})

	t.Run("Missing dataset and config generate an empty timetable", func(t *testing.T) {
		service, _ := newService(t)

		generated, run, err := service.Generate(ctx)

		require.NoError(t, err)
		assert.Equal(t, scheduler.OutcomeEmpty, generated.Outcome)
		assert.Equal(t, "empty", run.Outcome)
		stored, err := service.Timetable(ctx)
		require.NoError(t, err)
		assert.NotNil(t, stored)
		assert.Empty(t, stored.Classes())
	})

	t.Run("Concurrent generations leave one complete timetable", func(t *testing.T) {
		//** Arrange
		service, repository := newService(t)
		seed(t, repository)

		//** Act
		var wg sync.WaitGroup
		runs := make([]store.Run, 4)
		for i := range runs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, run, err := service.Generate(ctx)
				assert.NoError(t, err)
				runs[i] = run
			}()
		}
		wg.Wait()

		//** Assert
		lastRun, err := service.LastRun(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, lastRun)

		stored, err := service.Timetable(ctx)
		require.NoError(t, err)
		assert.Equal(t, lastRun.Filled, stored.Filled())
		assert.True(t, report.Validate(stored).Valid)
	})
}

type failingRepository struct {
	*store.Store
}

func (failingRepository) SaveTimetable(context.Context, *model.Timetable) error {
	return errors.New("connection reset")
}

func TestGenerate_StoreFailure(t *testing.T) {
	repository := failingRepository{store.New(store.NewMemoryBackend())}
	service := New(repository, scheduler.New(csp.NewGophersatSolver()), nil)

	_, _, err := service.Generate(context.Background())

	assert.ErrorContains(t, err, "connection reset")
}

func TestQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("Without a stored timetable", func(t *testing.T) {
		service, _ := newService(t)

		validation, err := service.Validate(ctx)
		require.NoError(t, err)
		assert.False(t, validation.Valid)
		assert.Equal(t, report.ConflictNoData, validation.Conflicts[0].Type)

		facultyView, err := service.FacultyView(ctx, "Prof X")
		require.NoError(t, err)
		assert.Empty(t, facultyView)

		roomView, err := service.RoomView(ctx, "101")
		require.NoError(t, err)
		assert.Empty(t, roomView)
	})

	t.Run("Views read the stored timetable", func(t *testing.T) {
		//** Arrange
		service, repository := newService(t)
		timetable := model.NewTimetable([]string{"BE A"}, 1)
		require.NoError(t, timetable.Set(
			model.Key{Class: "BE A", Day: model.Monday, Slot: 0},
			&model.Assignment{Subject: "ML", Faculty: "Prof X", Room: "101"},
		))
		require.NoError(t, repository.SaveTimetable(ctx, timetable))

		//** Act
		facultyView, err := service.FacultyView(ctx, "prof x")
		require.NoError(t, err)
		roomView, err := service.RoomView(ctx, "101")
		require.NoError(t, err)
		validation, err := service.Validate(ctx)
		require.NoError(t, err)

		//** Assert
		assert.Equal(t, report.FacultySchedule{
			model.Monday: {0: {Subject: "ML", Class: "BE A", Room: "101"}},
		}, facultyView)
		assert.Equal(t, report.RoomSchedule{
			model.Monday: {0: {Subject: "ML", Class: "BE A", Faculty: "Prof X"}},
		}, roomView)
		assert.Equal(t, 1, validation.Stats.FilledSlots)
	})
}
