package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const DefaultLecturesPerDay = 6

// LessonHours is a single weekly-hours entry of a class
type LessonHours struct {
	Subject string `json:"subject" yaml:"subject" mapstructure:"subject"`
	Hours   int    `json:"hours" yaml:"hours" mapstructure:"hours"`
}

// Config carries the scheduling parameters of a run
type Config struct {
	LecturesPerDay int                            `json:"lectures_per_day" yaml:"lectures_per_day" mapstructure:"lectures_per_day"`
	LessonHours    map[string][]LessonHours       `json:"lesson_hours" yaml:"lesson_hours" mapstructure:"lesson_hours"`
	FacultyChoices map[string]map[string][]string `json:"faculty_choices" yaml:"faculty_choices" mapstructure:"faculty_choices"`
}

func DefaultConfig() Config {
	return Config{
		LecturesPerDay: DefaultLecturesPerDay,
		LessonHours:    map[string][]LessonHours{},
		FacultyChoices: map[string]map[string][]string{},
	}
}

// Lectures returns the configured lectures per day, or the default one when unset
func (config Config) Lectures() int {
	if config.LecturesPerDay <= 0 {
		return DefaultLecturesPerDay
	}
	return config.LecturesPerDay
}

// Requirements flattens LessonHours into requirements ordered by class and declaration
func (config Config) Requirements() []LessonRequirement {
	classes := lo.Keys(config.LessonHours)
	slices.Sort(classes)

	requirements := make([]LessonRequirement, 0)
	for _, class := range classes {
		for _, lesson := range config.LessonHours[class] {
			requirements = append(requirements, LessonRequirement{
				ClassID:      class,
				Subject:      lesson.Subject,
				HoursPerWeek: lesson.Hours,
			})
		}
	}
	return requirements
}

// Preferences flattens FacultyChoices into preferences ordered by faculty and class
func (config Config) Preferences() []FacultyPreference {
	faculties := lo.Keys(config.FacultyChoices)
	slices.Sort(faculties)

	preferences := make([]FacultyPreference, 0)
	for _, faculty := range faculties {
		classes := lo.Keys(config.FacultyChoices[faculty])
		slices.Sort(classes)
		for _, class := range classes {
			preferences = append(preferences, FacultyPreference{
				Faculty:  faculty,
				ClassID:  class,
				Subjects: config.FacultyChoices[faculty][class],
			})
		}
	}
	return preferences
}

// ConfigFromFile reads a scheduling config written in YAML (.yaml, .yml) or JSON
func ConfigFromFile(file string) (Config, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &config)
	default:
		err = json.Unmarshal(bytes, &config)
	}
	if err != nil {
		return Config{}, fmt.Errorf("cannot parse config file %v: %w", file, err)
	}

	if config.LessonHours == nil {
		config.LessonHours = map[string][]LessonHours{}
	}
	if config.FacultyChoices == nil {
		config.FacultyChoices = map[string]map[string][]string{}
	}
	return config, nil
}
