package sat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// ConfigPath points to a JSON file mapping solver keys (e.g. "kissatPath") to executables.
// Solvers missing from it are looked up in PATH.
var ConfigPath = "config.json"

// parseSolution reads the "v" lines printed by competition-style solvers
func parseSolution(solverOutput string) (SATSolution, error) {
	lines := lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
		return len(line) > 0 && line[0] == 'v'
	})
	fields := lo.FlatMap(lines, func(line string, _ int) []string {
		return strings.Fields(line[1:])
	})
	return parseLiterals(fields)
}

// parseModelFile reads the model written by minisat-like solvers: a "SAT" header followed by the literals
func parseModelFile(solverOutput string) (SATSolution, error) {
	fields := strings.Fields(solverOutput)
	if len(fields) > 0 && fields[0] == "SAT" {
		fields = fields[1:]
	} else if len(fields) > 0 && fields[0] == "UNSAT" {
		return nil, nil
	}
	return parseLiterals(fields)
}

func parseLiterals(fields []string) (SATSolution, error) {
	solution := make(SATSolution, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		} else if value == 0 { // Terminator
			continue
		}
		solution = append(solution, value)
	}
	return solution, nil
}

func getExecutablePath(configKey, executable string) (string, error) {
	bytes, err := os.ReadFile(ConfigPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("cannot read solvers config file: %w", err)
	}

	if err == nil {
		var configJson map[string]any
		if err := json.Unmarshal(bytes, &configJson); err != nil {
			return "", fmt.Errorf("cannot parse solvers config file: %w", err)
		}

		var config map[string]string
		if err := mapstructure.Decode(configJson, &config); err != nil {
			return "", fmt.Errorf("cannot decode solvers config file: %w", err)
		}

		if path, ok := config[configKey]; ok && path != "" {
			return path, nil
		}
	}

	path, err := exec.LookPath(executable)
	if err != nil {
		return "", fmt.Errorf("solver %q is neither configured nor in PATH: %w", executable, err)
	}
	return path, nil
}

// Available reports whether the named solver can be executed
func Available(name string) bool {
	constructor, ok := Solvers[name]
	if !ok {
		return false
	}
	solver, ok := constructor().(*executableSolver)
	if !ok {
		return true
	}
	_, err := getExecutablePath(solver.configKey, solver.name)
	return err == nil
}
