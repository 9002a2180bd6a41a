// Package service runs generations against a store and answers timetable queries.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/limaJavier/scheduler/internal/store"
	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/limaJavier/scheduler/pkg/report"
	"github.com/limaJavier/scheduler/pkg/scheduler"
	"go.uber.org/zap"
)

// Repository is everything the service reads and writes
type Repository interface {
	store.DataProvider
	store.ConfigProvider
	store.TimetableStore
	store.RunLog
}

type Service struct {
	repository Repository
	scheduler  *scheduler.Scheduler
	logger     *zap.Logger
	now        func() time.Time
	// Serializes load, compute and store of concurrent generations
	mutex sync.Mutex
}

func New(repository Repository, scheduler *scheduler.Scheduler, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repository: repository,
		scheduler:  scheduler,
		logger:     logger,
		now:        time.Now,
	}
}

// Generate builds a timetable from the stored dataset and config and persists it with its run.
// A missing dataset schedules nothing and a missing config uses the defaults.
func (service *Service) Generate(ctx context.Context) (scheduler.Generated, store.Run, error) {
	service.mutex.Lock()
	defer service.mutex.Unlock()

	dataset, err := service.repository.Dataset(ctx)
	if errors.Is(err, store.ErrNotFound) {
		service.logger.Warn("no dataset stored, generating an empty timetable")
		dataset = model.Dataset{}.Normalize()
	} else if err != nil {
		return scheduler.Generated{}, store.Run{}, err
	}

	config, err := service.repository.Config(ctx)
	if errors.Is(err, store.ErrNotFound) {
		config = model.DefaultConfig()
	} else if err != nil {
		return scheduler.Generated{}, store.Run{}, err
	}

	generated := service.scheduler.Generate(ctx, dataset, config)
	run := store.NewRun(generated, service.now())

	if err := service.repository.SaveTimetable(ctx, generated.Timetable); err != nil {
		return generated, run, err
	}
	if err := service.repository.SaveRun(ctx, run); err != nil {
		return generated, run, err
	}

	service.logger.Info("timetable generated",
		zap.String("run", run.ID.String()),
		zap.String("outcome", run.Outcome),
		zap.String("status", run.Status),
		zap.Int("filled", run.Filled),
		zap.Duration("elapsed", generated.Elapsed),
	)
	return generated, run, nil
}

// Timetable returns the last stored timetable, nil when none was generated
func (service *Service) Timetable(ctx context.Context) (*model.Timetable, error) {
	return service.repository.LoadTimetable(ctx)
}

func (service *Service) LastRun(ctx context.Context) (store.Run, error) {
	return service.repository.LastRun(ctx)
}

// Validate reports on the stored timetable; with none stored it reports the no-data conflict
func (service *Service) Validate(ctx context.Context) (report.Report, error) {
	timetable, err := service.repository.LoadTimetable(ctx)
	if err != nil {
		return report.Report{}, err
	}
	return report.Validate(timetable), nil
}

// FacultyView projects the stored timetable; with none stored the view is empty
func (service *Service) FacultyView(ctx context.Context, faculty string) (report.FacultySchedule, error) {
	timetable, err := service.repository.LoadTimetable(ctx)
	if err != nil {
		return nil, err
	}
	return report.FacultyView(timetable, faculty), nil
}

func (service *Service) RoomView(ctx context.Context, room string) (report.RoomSchedule, error) {
	timetable, err := service.repository.LoadTimetable(ctx)
	if err != nil {
		return nil, err
	}
	return report.RoomView(timetable, room), nil
}
