package sat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
)

type inputMode int

const (
	stdinInput inputMode = iota // DIMACS is fed through the standard input
	fileInput                   // DIMACS is written to a temporary file passed as argument
)

type outputMode int

const (
	stdoutOutput outputMode = iota // Model is printed as "v" lines
	fileOutput                     // Model is written to a file passed as the last argument
)

// Exit-code of 10 stands for satisfiable and exit-code 20 stands for unsatisfiable
const (
	exitSatisfiable   = 10
	exitUnsatisfiable = 20
)

// executableSolver runs a SAT solver binary that follows the SAT-competition conventions
type executableSolver struct {
	name      string
	configKey string
	args      []string
	input     inputMode
	output    outputMode
}

func (solver *executableSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	executablePath, err := getExecutablePath(solver.configKey, solver.name)
	if err != nil {
		return nil, err
	}

	dimacs := instance.ToDIMACS() // Transform SAT into DIMACS-CNF string format
	args := slices.Clone(solver.args)

	var stdin io.Reader
	switch solver.input {
	case stdinInput:
		stdin = strings.NewReader(dimacs)
	case fileInput:
		inputTempFile, err := os.CreateTemp("", "dimacs-*.cnf")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary file: %w", err)
		}
		defer os.Remove(inputTempFile.Name()) // Ensure the file is removed after execution

		if _, err := inputTempFile.WriteString(dimacs); err != nil {
			inputTempFile.Close()
			return nil, fmt.Errorf("failed to write DIMACS to temporary file: %w", err)
		}
		if err := inputTempFile.Close(); err != nil {
			return nil, fmt.Errorf("failed to close temporary file: %w", err)
		}
		args = append(args, inputTempFile.Name())
	}

	var outputFileName string
	if solver.output == fileOutput {
		outputTempFile, err := os.CreateTemp("", solver.name+"_output-*.txt")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary file: %w", err)
		}
		outputFileName = outputTempFile.Name()
		outputTempFile.Close()
		defer os.Remove(outputFileName)
		args = append(args, outputFileName)
	}

	cmd := exec.CommandContext(ctx, executablePath, args...)
	cmd.Stdin = stdin

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	} else if cmd.ProcessState == nil {
		return nil, fmt.Errorf("cannot start %v: %w", solver.name, err)
	}

	switch exitCode := cmd.ProcessState.ExitCode(); {
	case exitCode == exitUnsatisfiable:
		return nil, nil
	case exitCode != exitSatisfiable && err != nil:
		return nil, fmt.Errorf("an error occurred during %v execution: %v : %v", solver.name, err, stderr.String())
	}

	if solver.output == fileOutput {
		output, err := os.ReadFile(outputFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read output file: %w", err)
		}
		return parseModelFile(string(output))
	}
	return parseSolution(stdOut.String())
}
