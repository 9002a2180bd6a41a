package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetJson = `{
	"classes": ["BE A", "BE B"],
	"subjects": [{"name": "ML"}, {"name": "DBMS"}],
	"faculties": [{"name": "Prof X"}, {"name": "Prof Y"}],
	"rooms": [{"room": "101"}, {"room": "102"}]
}`

const configYaml = `
lectures_per_day: 3
lesson_hours:
  BE A:
    - subject: ML
      hours: 3
faculty_choices:
  Prof X:
    BE A: [ML]
`

func writeFile(t *testing.T, directory, name, content string) string {
	t.Helper()
	file := filepath.Join(directory, name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestRun(t *testing.T) {
	t.Run("Files are scheduled and written", func(t *testing.T) {
		//** Arrange
		directory := t.TempDir()
		t.Chdir(directory)
		out := filepath.Join(directory, "timetable.json")
		xlsx := filepath.Join(directory, "timetable.xlsx")

		//** Act
		code := run(options{
			dataset: writeFile(t, directory, "dataset.json", datasetJson),
			config:  writeFile(t, directory, "config.yaml", configYaml),
			solver:  "gophersat",
			out:     out,
			xlsx:    xlsx,
		})

		//** Assert
		require.Equal(t, exitConstrained, code)

		written, err := os.ReadFile(out)
		require.NoError(t, err)
		var timetable model.Timetable
		require.NoError(t, json.Unmarshal(written, &timetable))
		assert.Equal(t, []string{"BE A", "BE B"}, timetable.Classes())
		assert.Equal(t, 3, timetable.LecturesPerDay())
		assert.Equal(t, 3, timetable.SubjectHours("BE A", "ML"))

		assert.FileExists(t, xlsx)
	})

	t.Run("Missing dataset", func(t *testing.T) {
		t.Chdir(t.TempDir())
		assert.Equal(t, exitError, run(options{solver: "gophersat"}))
	})

	t.Run("Unknown solver", func(t *testing.T) {
		directory := t.TempDir()
		t.Chdir(directory)
		code := run(options{dataset: writeFile(t, directory, "dataset.json", datasetJson), solver: "z3"})
		assert.Equal(t, exitError, code)
	})

	t.Run("Invalid dataset", func(t *testing.T) {
		directory := t.TempDir()
		t.Chdir(directory)
		code := run(options{dataset: writeFile(t, directory, "dataset.json", `{"classes": [1]}`), solver: "gophersat"})
		assert.Equal(t, exitError, code)
	})
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("", "a", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "", firstNonEmpty())
}
