// Package store persists the dataset, the scheduling config, the generated timetable and the last run
// as JSON documents over a pluggable key-value backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/limaJavier/scheduler/pkg/scheduler"
	"github.com/samber/lo"
)

var ErrNotFound = errors.New("document not found")

// Document keys
const (
	DatasetKey   = "dataset"
	ConfigKey    = "config"
	TimetableKey = "timetable"
	LastRunKey   = "last_run"
)

type DataProvider interface {
	Dataset(ctx context.Context) (model.Dataset, error)
	SaveDataset(ctx context.Context, dataset model.Dataset) error
}

type ConfigProvider interface {
	Config(ctx context.Context) (model.Config, error)
	SaveConfig(ctx context.Context, config model.Config) error
}

type TimetableStore interface {
	SaveTimetable(ctx context.Context, timetable *model.Timetable) error
	// LoadTimetable returns nil when no timetable was saved yet
	LoadTimetable(ctx context.Context) (*model.Timetable, error)
}

type RunLog interface {
	SaveRun(ctx context.Context, run Run) error
	LastRun(ctx context.Context) (Run, error)
}

// Backend stores whole JSON documents by key. Put replaces the document in a single write.
// Get returns ErrNotFound for missing keys.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, document []byte) error
}

// Run describes one generation
type Run struct {
	ID          uuid.UUID `json:"id"`
	Outcome     string    `json:"outcome"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	Objective   int       `json:"objective"`
	Variables   int       `json:"variables"`
	Constraints int       `json:"constraints"`
	Filled      int       `json:"filled"`
	Elapsed     Duration  `json:"elapsed"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewRun(generated scheduler.Generated, createdAt time.Time) Run {
	return Run{
		ID:          uuid.New(),
		Outcome:     string(generated.Outcome),
		Status:      generated.Status.String(),
		Reason:      generated.Reason,
		Objective:   generated.Objective,
		Variables:   generated.Variables,
		Constraints: generated.Constraints,
		Filled:      generated.Timetable.Filled(),
		Elapsed:     Duration(generated.Elapsed),
		CreatedAt:   createdAt.UTC(),
	}
}

// Duration is written as a Go duration string ("1.5s")
type Duration time.Duration

func (duration Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(duration).String()), nil
}

func (duration *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*duration = Duration(parsed)
	return nil
}

// Store implements the providers over a Backend
type Store struct {
	backend Backend
}

var (
	_ DataProvider   = (*Store)(nil)
	_ ConfigProvider = (*Store)(nil)
	_ TimetableStore = (*Store)(nil)
	_ RunLog         = (*Store)(nil)
)

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (store *Store) Dataset(ctx context.Context) (model.Dataset, error) {
	document, err := store.backend.Get(ctx, DatasetKey)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("loading dataset: %w", err)
	}
	dataset, err := model.ParseDataset(document)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("loading dataset: %w", err)
	}
	return dataset, nil
}

// SaveDataset writes the dataset in the shape Dataset reads back; nil lists are written as empty ones
func (store *Store) SaveDataset(ctx context.Context, dataset model.Dataset) error {
	dataset = dataset.Normalize()
	if dataset.Classes == nil {
		dataset.Classes = []string{}
	}
	if dataset.Subjects == nil {
		dataset.Subjects = []model.Subject{}
	}
	if dataset.Faculties == nil {
		dataset.Faculties = []model.Faculty{}
	}
	if dataset.Rooms == nil {
		dataset.Rooms = []model.Room{}
	}
	dataset.Preferences = lo.Map(dataset.Preferences, func(preference model.FacultyPreference, _ int) model.FacultyPreference {
		if preference.Subjects == nil {
			preference.Subjects = []string{}
		}
		return preference
	})
	dataset.SubjectsByClass = lo.MapValues(dataset.SubjectsByClass, emptyIfNil)
	dataset.Batches = lo.MapValues(dataset.Batches, emptyIfNil)
	return store.put(ctx, DatasetKey, dataset)
}

func emptyIfNil(names []string, _ string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

func (store *Store) Config(ctx context.Context) (model.Config, error) {
	config := model.DefaultConfig()
	if err := store.get(ctx, ConfigKey, &config); err != nil {
		return model.Config{}, err
	}
	if config.LessonHours == nil {
		config.LessonHours = map[string][]model.LessonHours{}
	}
	if config.FacultyChoices == nil {
		config.FacultyChoices = map[string]map[string][]string{}
	}
	return config, nil
}

func (store *Store) SaveConfig(ctx context.Context, config model.Config) error {
	return store.put(ctx, ConfigKey, config)
}

func (store *Store) SaveTimetable(ctx context.Context, timetable *model.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("saving timetable: timetable is nil")
	}
	return store.put(ctx, TimetableKey, timetable)
}

func (store *Store) LoadTimetable(ctx context.Context) (*model.Timetable, error) {
	timetable := new(model.Timetable)
	if err := store.get(ctx, TimetableKey, timetable); errors.Is(err, ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return timetable, nil
}

func (store *Store) SaveRun(ctx context.Context, run Run) error {
	return store.put(ctx, LastRunKey, run)
}

func (store *Store) LastRun(ctx context.Context) (Run, error) {
	var run Run
	if err := store.get(ctx, LastRunKey, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

func (store *Store) put(ctx context.Context, key string, value any) error {
	document, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %v: %w", key, err)
	}
	if err := store.backend.Put(ctx, key, document); err != nil {
		return fmt.Errorf("saving %v: %w", key, err)
	}
	return nil
}

func (store *Store) get(ctx context.Context, key string, value any) error {
	document, err := store.backend.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("loading %v: %w", key, err)
	}
	if err := json.Unmarshal(document, value); err != nil {
		return fmt.Errorf("decoding %v: %w", key, err)
	}
	return nil
}
