package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/limaJavier/scheduler/internal/platform/config"
	"github.com/limaJavier/scheduler/internal/platform/logger"
	"github.com/limaJavier/scheduler/internal/service"
	"github.com/limaJavier/scheduler/internal/store"
	"github.com/limaJavier/scheduler/pkg/csp"
	"github.com/limaJavier/scheduler/pkg/export"
	"github.com/limaJavier/scheduler/pkg/sat"
	"github.com/limaJavier/scheduler/pkg/scheduler"
	"go.uber.org/zap"
)

const (
	exitConstrained = 10
	exitFallback    = 20
	exitError       = 1
)

type options struct {
	dataset   string
	config    string
	solver    string
	timeLimit time.Duration
	out       string
	xlsx      string
	appConfig string
	store     bool
}

func main() {
	// Define arguments
	datasetPtr := flag.String("dataset", "", "Path to the dataset JSON file (classes, subjects, faculties, rooms)")
	configPtr := flag.String("config", "", "Path to the scheduling config file (YAML or JSON); defaults are used if empty")
	solverPtr := flag.String("solver", "", fmt.Sprintf("Solver backend. Allowed values are: %v; the application config decides if empty", strings.Join(csp.SolverNames(), ", ")))
	timeLimitPtr := flag.Duration("time-limit", 0, "Solver time budget, e.g. 30s; the application config decides if zero")
	outPtr := flag.String("out", "", "Path to the file where the timetable will be written; if empty, it'll be written into the Standard Output")
	xlsxPtr := flag.String("xlsx", "", "Path to an .xlsx workbook with a sheet per class")
	appConfigPtr := flag.String("app-config", "", "Path to the application config; config.yaml in . or ./config is used if empty")
	storePtr := flag.Bool("store", false, "Read the dataset and config from the configured store and persist the result there")
	flag.Parse()

	os.Exit(run(options{
		dataset:   *datasetPtr,
		config:    *configPtr,
		solver:    strings.ToLower(*solverPtr),
		timeLimit: *timeLimitPtr,
		out:       *outPtr,
		xlsx:      *xlsxPtr,
		appConfig: *appConfigPtr,
		store:     *storePtr,
	}))
}

func run(opts options) int {
	cfg, err := config.Load(opts.appConfig)
	if err != nil {
		log.Printf("cannot load application config: %v", err)
		return exitError
	}
	if opts.solver != "" {
		cfg.Solver.Backend = opts.solver
	}
	if opts.timeLimit != 0 {
		cfg.Solver.TimeLimit = opts.timeLimit
	}
	if !opts.store {
		cfg.Store.Backend = "memory"
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("invalid application config: %v", err)
		return exitError
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Printf("cannot build logger: %v", err)
		return exitError
	}
	defer zapLogger.Sync()

	setConfigPath(cfg.Solver.PathsFile)

	// Validate arguments
	datasetFile := firstNonEmpty(opts.dataset, cfg.Data.DatasetFile)
	configFile := firstNonEmpty(opts.config, cfg.Data.ConfigFile)
	if !opts.store && datasetFile == "" {
		zapLogger.Error("a dataset file must be specified")
		return exitError
	}

	solver, err := csp.NewSolver(cfg.Solver.Backend)
	if err != nil {
		zapLogger.Error("invalid solver", zap.Error(err))
		return exitError
	} else if !csp.SolverAvailable(cfg.Solver.Backend) {
		zapLogger.Warn("solver executable not found, generation will fall back", zap.String("solver", cfg.Solver.Backend))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	repository, closeStore, err := store.Open(ctx, cfg.Store, zapLogger)
	if err != nil {
		zapLogger.Error("cannot open store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
		return exitError
	}
	defer closeStore()

	if err := store.Seed(ctx, repository, datasetFile, configFile); err != nil {
		zapLogger.Error("cannot load input files", zap.Error(err))
		return exitError
	}

	scheduling := service.New(
		repository,
		scheduler.New(solver, scheduler.WithTimeLimit(cfg.Solver.TimeLimit), scheduler.WithLogger(zapLogger)),
		zapLogger,
	)

	// Build timetable
	generated, record, err := scheduling.Generate(ctx)
	if err != nil {
		zapLogger.Error("an error occurred while storing the timetable", zap.Error(err))
		return exitError
	}
	validation, err := scheduling.Validate(ctx)
	if err != nil {
		zapLogger.Error("cannot validate the stored timetable", zap.Error(err))
		return exitError
	}

	if err := writeTimetable(opts.out, generated); err != nil {
		zapLogger.Error("an error occurred while writing the timetable", zap.Error(err))
		return exitError
	}
	if opts.xlsx != "" {
		if err := export.SaveWorkbook(generated.Timetable, opts.xlsx); err != nil {
			zapLogger.Error("an error occurred while writing the workbook", zap.Error(err))
			return exitError
		}
	}

	validationJson, err := json.MarshalIndent(validation, "", "  ")
	if err != nil {
		zapLogger.Error("an error occurred while building the validation report", zap.Error(err))
		return exitError
	}
	fmt.Println(string(validationJson))

	fmt.Printf("Run: %v\n", record.ID)
	fmt.Printf("Outcome: %v\n", generated.Outcome)
	fmt.Printf("Variables: %v\n", generated.Variables)
	fmt.Printf("Constraints: %v\n", generated.Constraints)

	if !generated.Constrained() {
		return exitFallback
	}
	return exitConstrained
}

// writeTimetable writes to the file, or to the Standard Output when it is empty
func writeTimetable(file string, generated scheduler.Generated) error {
	timetableJson, err := json.MarshalIndent(generated.Timetable, "", "  ")
	if err != nil {
		return err
	}
	if file == "" {
		fmt.Println(string(timetableJson))
		return nil
	}
	return os.WriteFile(file, timetableJson, 0666)
}

// setConfigPath points the external solvers at their paths file. A relative file missing from the working
// directory is looked up next to the executable.
func setConfigPath(file string) {
	sat.ConfigPath = file
	if file == "" || filepath.IsAbs(file) {
		return
	}
	if _, err := os.Stat(file); err == nil {
		return
	}

	execPath, err := os.Executable()
	if err != nil {
		return
	}
	candidate := filepath.Join(filepath.Dir(execPath), file)
	if _, err := os.Stat(candidate); err == nil {
		sat.ConfigPath = candidate
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
