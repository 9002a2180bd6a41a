package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "scheduler", cfg.Store.Namespace)
	assert.Equal(t, 10, cfg.Store.MaxConns)
	assert.Equal(t, "gophersat", cfg.Solver.Backend)
	assert.Equal(t, 30*time.Second, cfg.Solver.TimeLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	//** Arrange
	file := filepath.Join(t.TempDir(), "scheduler.yaml")
	content := `
store:
  backend: postgres
  postgres_url: postgres://user:pass@db:5432/timetables
solver:
  backend: kissat
  time_limit: 5s
log:
  format: console
data:
  dataset_file: dataset.json
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	t.Setenv("SCHEDULER_SOLVER_TIME_LIMIT", "1m")
	t.Setenv("SCHEDULER_LOG_LEVEL", "debug")

	//** Act
	cfg, err := Load(file)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "postgres://user:pass@db:5432/timetables", cfg.Store.PostgresURL)
	assert.Equal(t, "kissat", cfg.Solver.Backend)
	assert.Equal(t, time.Minute, cfg.Solver.TimeLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "dataset.json", cfg.Data.DatasetFile)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:  StoreConfig{Backend: "redis", Namespace: "scheduler"},
			Solver: SolverConfig{Backend: "gophersat", TimeLimit: time.Second},
			Log:    LogConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{"valid", func(cfg *Config) {}, false},
		{"unknown backend", func(cfg *Config) { cfg.Store.Backend = "sqlite" }, true},
		{"empty namespace", func(cfg *Config) { cfg.Store.Namespace = "" }, true},
		{"empty solver", func(cfg *Config) { cfg.Solver.Backend = "" }, true},
		{"zero time limit", func(cfg *Config) { cfg.Solver.TimeLimit = 0 }, true},
		{"unknown log format", func(cfg *Config) { cfg.Log.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
