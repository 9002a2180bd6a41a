package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/limaJavier/scheduler/pkg/csp"
	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/limaJavier/scheduler/pkg/report"
	"github.com/limaJavier/scheduler/pkg/scheduler"
	"github.com/samber/lo"
)

const MB float32 = 1024 * 1024

// Size describes a synthetic dataset
type Size struct {
	Classes   int
	Subjects  int
	Faculties int
	Rooms     int
}

type BenchmarkResult struct {
	Solver    string
	Size      Size
	Duration  time.Duration
	Memory    float32
	Outcome   scheduler.Outcome
	Status    csp.Status
	Objective int
	Filled    int
	Conflicts int
}

func main() {
	sizesPtr := flag.String("sizes", "2,4,8", "Comma-separated numbers of classes of the synthetic datasets")
	solversPtr := flag.String("solvers", "", "Comma-separated solvers to benchmark; every available solver if empty")
	timeLimitPtr := flag.Duration("time-limit", scheduler.DefaultTimeLimit, "Solver time budget of every run")
	outPtr := flag.String("out", "benchmark_results.csv", "Path to the CSV file with the results")
	flag.Parse()

	sizes, err := parseSizes(*sizesPtr)
	if err != nil {
		log.Fatalf("invalid sizes: %v", err)
	}
	solvers := getSolvers(*solversPtr)
	results := make([]BenchmarkResult, 0, len(sizes)*len(solvers))

	for _, size := range sizes {
		dataset, config := synthesize(size)
		for _, name := range solvers {
			fmt.Printf("Benchmarking %d classes, %d subjects, %d faculties with solver \"%v\"\n", size.Classes, size.Subjects, size.Faculties, name)

			solver, err := csp.NewSolver(name)
			if err != nil {
				log.Fatalf("cannot create solver: %v", err)
			}
			results = append(results, measure(scheduler.New(solver, scheduler.WithTimeLimit(*timeLimitPtr)), name, size, dataset, config))
		}
	}

	if err := toCsv(*outPtr, results); err != nil {
		log.Fatalf("cannot write results: %v", err)
	}
}

func parseSizes(sizes string) ([]Size, error) {
	parts := lo.Filter(strings.Split(sizes, ","), func(part string, _ int) bool {
		return strings.TrimSpace(part) != ""
	})
	if len(parts) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}

	result := make([]Size, 0, len(parts))
	for _, part := range parts {
		classes, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		} else if classes <= 0 {
			return nil, fmt.Errorf("number of classes must be positive: %v", classes)
		}
		result = append(result, Size{
			Classes:   classes,
			Subjects:  classes + 2,
			Faculties: max(classes/2, 1) + 1,
			Rooms:     classes,
		})
	}
	return result, nil
}

func getSolvers(names string) []string {
	if names == "" {
		return lo.Filter(csp.SolverNames(), func(name string, _ int) bool {
			return csp.SolverAvailable(name)
		})
	}
	return lo.Map(strings.Split(names, ","), func(name string, _ int) string {
		return strings.ToLower(strings.TrimSpace(name))
	})
}

// synthesize builds a dataset where every class takes three subjects, two of them required,
// and every faculty prefers one subject of one class
func synthesize(size Size) (model.Dataset, model.Config) {
	classes := lo.Times(size.Classes, func(i int) string { return fmt.Sprintf("Class %02d", i+1) })
	subjects := lo.Times(size.Subjects, func(i int) model.Subject {
		if i%4 == 3 {
			return model.Subject{Name: fmt.Sprintf("Subject %02d Lab", i+1)}
		}
		return model.Subject{Name: fmt.Sprintf("Subject %02d", i+1)}
	})
	faculties := lo.Times(size.Faculties, func(i int) model.Faculty { return model.Faculty{Name: fmt.Sprintf("Faculty %02d", i+1)} })
	rooms := lo.Times(size.Rooms, func(i int) model.Room {
		if i%3 == 2 {
			return model.Room{Label: fmt.Sprintf("L%d", i+1), Kind: "lab"}
		}
		return model.Room{Label: fmt.Sprintf("R%d", i+1), Kind: "lecture"}
	})

	config := model.DefaultConfig()
	subjectsByClass := make(map[string][]string, len(classes))
	for i, class := range classes {
		offered := lo.Times(3, func(j int) string { return subjects[(i+j)%len(subjects)].Name })
		subjectsByClass[class] = offered
		config.LessonHours[class] = []model.LessonHours{
			{Subject: offered[0], Hours: 4},
			{Subject: offered[1], Hours: 3},
		}
	}
	for i, faculty := range faculties {
		class := classes[i%len(classes)]
		config.FacultyChoices[faculty.Name] = map[string][]string{class: {subjectsByClass[class][0]}}
	}

	dataset := model.Dataset{
		Classes:         classes,
		Subjects:        subjects,
		Faculties:       faculties,
		Rooms:           rooms,
		SubjectsByClass: subjectsByClass,
	}
	return dataset.Normalize(), config
}

func measure(timetabler *scheduler.Scheduler, solver string, size Size, dataset model.Dataset, config model.Config) BenchmarkResult {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	generated := timetabler.Generate(context.Background(), dataset, config)

	runtime.ReadMemStats(&after)
	return BenchmarkResult{
		Solver:    solver,
		Size:      size,
		Duration:  generated.Elapsed,
		Memory:    float32(after.TotalAlloc-before.TotalAlloc) / MB,
		Outcome:   generated.Outcome,
		Status:    generated.Status,
		Objective: generated.Objective,
		Filled:    generated.Timetable.Filled(),
		Conflicts: len(report.Validate(generated.Timetable).Conflicts),
	}
}

func toCsv(path string, results []BenchmarkResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writeResults(writer, results); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func writeResults(writer *csv.Writer, results []BenchmarkResult) error {
	header := []string{"Solver", "Classes", "Subjects", "Faculties", "Rooms", "Outcome", "Status", "Objective", "Filled", "Conflicts", "Duration(ms)", "Allocated(MB)"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{
			result.Solver,
			strconv.Itoa(result.Size.Classes),
			strconv.Itoa(result.Size.Subjects),
			strconv.Itoa(result.Size.Faculties),
			strconv.Itoa(result.Size.Rooms),
			string(result.Outcome),
			result.Status.String(),
			strconv.Itoa(result.Objective),
			strconv.Itoa(result.Filled),
			strconv.Itoa(result.Conflicts),
			strconv.FormatInt(result.Duration.Milliseconds(), 10),
			fmt.Sprintf("%.1f", result.Memory),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}
	return nil
}
