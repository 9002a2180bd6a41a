package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"
)

// Dataset holds the entities of a scheduling run as supplied by the data provider
type Dataset struct {
	Classes         []string            `json:"classes" mapstructure:"classes"`
	Subjects        []Subject           `json:"subjects" mapstructure:"subjects"`
	Faculties       []Faculty           `json:"faculties" mapstructure:"faculties"`
	Rooms           []Room              `json:"rooms" mapstructure:"rooms"`
	SubjectsByClass map[string][]string `json:"subjects_by_class,omitempty" mapstructure:"subjects_by_class"`
	Batches         map[string][]string `json:"batches,omitempty" mapstructure:"batches"`
	Preferences     []FacultyPreference `json:"faculty_preferences,omitempty" mapstructure:"faculty_preferences"`
}

const datasetSchema = `{
	"type": "object",
	"properties": {
		"classes": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"subjects": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"short": {"type": "string"},
					"type": {"enum": ["lecture", "lab", "project", ""]},
					"duration_slots": {"type": "integer", "minimum": 1, "maximum": 4}
				}
			}
		},
		"faculties": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"short": {"type": "string"},
					"position": {"type": "string"}
				}
			}
		},
		"rooms": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["room"],
				"properties": {
					"room": {"type": "string", "minLength": 1},
					"type": {"type": "string"}
				}
			}
		},
		"subjects_by_class": {
			"type": "object",
			"additionalProperties": {"type": "array", "items": {"type": "string"}}
		},
		"batches": {
			"type": "object",
			"additionalProperties": {"type": "array", "items": {"type": "string"}}
		},
		"faculty_preferences": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["faculty", "class"],
				"properties": {
					"faculty": {"type": "string"},
					"class": {"type": "string"},
					"subjects": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

func DatasetFromJson(file string) (Dataset, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Dataset{}, fmt.Errorf("cannot read dataset file: %w", err)
	}
	return ParseDataset(bytes)
}

// ParseDataset validates a JSON document against the dataset schema and decodes it
func ParseDataset(bytes []byte) (Dataset, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(datasetSchema),
		gojsonschema.NewBytesLoader(bytes),
	)
	if err != nil {
		return Dataset{}, fmt.Errorf("cannot validate dataset: %w", err)
	} else if !result.Valid() {
		messages := lo.Map(result.Errors(), func(resultError gojsonschema.ResultError, _ int) string {
			return resultError.String()
		})
		return Dataset{}, fmt.Errorf("invalid dataset: %v", strings.Join(messages, "; "))
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Dataset{}, err
	}

	var dataset Dataset
	if err := mapstructure.Decode(inputJson, &dataset); err != nil {
		return Dataset{}, fmt.Errorf("cannot decode dataset: %w", err)
	}
	return dataset.Normalize(), nil
}

// Normalize infers missing subject kinds and names the batches of every class
func (dataset Dataset) Normalize() Dataset {
	dataset.Subjects = lo.Map(dataset.Subjects, func(subject Subject, _ int) Subject {
		return subject.Normalize()
	})
	if dataset.Batches == nil {
		dataset.Batches = map[string][]string{}
	}
	if dataset.SubjectsByClass == nil {
		dataset.SubjectsByClass = map[string][]string{}
	}
	return dataset
}

// WithBatches assigns n generated batch names to a class
func (dataset Dataset) WithBatches(classID string, n int) Dataset {
	batches := make(map[string][]string, len(dataset.Batches)+1)
	for class, names := range dataset.Batches {
		batches[class] = names
	}
	batches[classID] = BatchNames(classID, n)
	dataset.Batches = batches
	return dataset
}
