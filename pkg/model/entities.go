package model

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// TBD names the placeholder faculty (or room) used when none is available
const TBD = "TBD"

type SubjectKind string

const (
	Lecture SubjectKind = "lecture"
	Lab     SubjectKind = "lab"
	Project SubjectKind = "project"
)

const (
	MinDurationSlots = 1
	MaxDurationSlots = 4
)

var (
	labKeywords     = []string{"lab", "laboratory", "practical", "workshop", "hands-on"}
	projectKeywords = []string{"project", "capstone", "thesis"}
)

type Subject struct {
	Name          string      `json:"name" yaml:"name" mapstructure:"name"`
	ShortName     string      `json:"short,omitempty" yaml:"short,omitempty" mapstructure:"short"`
	Kind          SubjectKind `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	DurationSlots int         `json:"duration_slots,omitempty" yaml:"duration_slots,omitempty" mapstructure:"duration_slots"`
}

type Faculty struct {
	Name      string `json:"name" yaml:"name" mapstructure:"name"`
	ShortName string `json:"short,omitempty" yaml:"short,omitempty" mapstructure:"short"`
	Position  string `json:"position,omitempty" yaml:"position,omitempty" mapstructure:"position"`
}

type Room struct {
	Label string `json:"room" yaml:"room" mapstructure:"room"`
	Kind  string `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
}

// IsLab reports whether the room is meant for lab sessions
func (room Room) IsLab() bool {
	return strings.Contains(FoldName(room.Kind), "lab")
}

// LessonRequirement states how many sessions of a subject a class takes per week
type LessonRequirement struct {
	ClassID      string `json:"class" yaml:"class" mapstructure:"class"`
	Subject      string `json:"subject" yaml:"subject" mapstructure:"subject"`
	HoursPerWeek int    `json:"hours" yaml:"hours" mapstructure:"hours"`
}

// FacultyPreference lists the subjects a faculty would like to teach to a class
type FacultyPreference struct {
	Faculty  string   `json:"faculty" yaml:"faculty" mapstructure:"faculty"`
	ClassID  string   `json:"class" yaml:"class" mapstructure:"class"`
	Subjects []string `json:"subjects" yaml:"subjects" mapstructure:"subjects"`
}

// InferSubjectKind guesses the kind and duration of a subject from keywords in its name
func InferSubjectKind(name string) (SubjectKind, int) {
	folded := FoldName(name)
	for _, keyword := range labKeywords {
		if strings.Contains(folded, keyword) {
			return Lab, 2
		}
	}
	for _, keyword := range projectKeywords {
		if strings.Contains(folded, keyword) {
			return Project, 2
		}
	}
	return Lecture, 1
}

// Normalize fills an unknown kind from the subject's name and keeps the duration within bounds
func (subject Subject) Normalize() Subject {
	kind, duration := InferSubjectKind(subject.Name)
	switch subject.Kind {
	case Lecture, Lab, Project:
	default:
		subject.Kind = kind
	}
	if subject.DurationSlots < MinDurationSlots || subject.DurationSlots > MaxDurationSlots {
		subject.DurationSlots = duration
	}
	if subject.ShortName == "" {
		subject.ShortName = subject.Name
	}
	return subject
}

// BatchNames names the n batches of a class: "BE A" with 2 batches gives "BE A1", "BE A2"
func BatchNames(classID string, n int) []string {
	names := make([]string, 0, max(n, 0))
	for i := range max(n, 0) {
		names = append(names, classID+strconv.Itoa(i+1))
	}
	return names
}

// FoldName maps a name to its case-folded form so that names can be compared regardless of case
func FoldName(name string) string {
	// A Caser keeps state, so one is built per call to stay safe across goroutines
	return cases.Fold().String(name)
}

// SameName compares two names case-insensitively
func SameName(a, b string) bool {
	return FoldName(a) == FoldName(b)
}
