package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/limaJavier/scheduler/pkg/csp"
	"github.com/limaJavier/scheduler/pkg/model"
	"go.uber.org/zap"
)

// DefaultTimeLimit bounds the solver's wall-clock time
const DefaultTimeLimit = 30 * time.Second

// Outcome tags the guarantee level of a generated timetable
type Outcome string

const (
	// Every hard constraint holds and the preference objective is maximal
	OutcomeOptimal Outcome = "optimal"
	// Every hard constraint holds; the search was stopped before proving optimality
	OutcomeFeasible Outcome = "feasible"
	// Round-robin filler: every slot is filled but no constraint is guaranteed
	OutcomeFallback Outcome = "fallback"
	// No classes or no subjects: the timetable has the right shape and no sessions
	OutcomeEmpty Outcome = "empty"
)

// Generated is the result of a scheduling run
type Generated struct {
	Timetable *model.Timetable
	Outcome   Outcome
	// Status reported by the solver. Degenerate problems report Optimal since there is nothing to place.
	Status      csp.Status
	Objective   int
	Variables   int
	Constraints int
	// Reason explains why the fallback was used
	Reason  string
	Elapsed time.Duration
}

// Constrained reports whether the timetable satisfies every hard constraint
func (generated Generated) Constrained() bool {
	return generated.Outcome != OutcomeFallback
}

type Scheduler struct {
	solver    csp.Solver
	timeLimit time.Duration
	logger    *zap.Logger
}

type Option func(*Scheduler)

func WithTimeLimit(timeLimit time.Duration) Option {
	return func(scheduler *Scheduler) {
		if timeLimit > 0 {
			scheduler.timeLimit = timeLimit
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(scheduler *Scheduler) {
		if logger != nil {
			scheduler.logger = logger
		}
	}
}

func New(solver csp.Solver, options ...Option) *Scheduler {
	scheduler := &Scheduler{
		solver:    solver,
		timeLimit: DefaultTimeLimit,
		logger:    zap.NewNop(),
	}
	for _, option := range options {
		option(scheduler)
	}
	return scheduler
}

// Generate never fails: when the solver cannot deliver a verified timetable, the round-robin
// fallback is returned and tagged as such
func (scheduler *Scheduler) Generate(ctx context.Context, dataset model.Dataset, config model.Config) Generated {
	start := time.Now()

	//** Preprocess input
	problem := NewProblem(dataset, config, scheduler.logger)
	if problem.Degenerate() {
		scheduler.logger.Info("Nothing to schedule",
			zap.Int("classes", len(problem.Classes)),
			zap.Int("subjects", len(problem.Subjects)))
		return Generated{
			Timetable: problem.EmptyTimetable(),
			Outcome:   OutcomeEmpty,
			Status:    csp.Optimal,
			Elapsed:   time.Since(start),
		}
	}

	//** Build model
	cspModel := buildModel(problem)
	generated := Generated{
		Variables:   cspModel.Variables(),
		Constraints: len(cspModel.Constraints()),
	}
	scheduler.logger.Debug("Model built",
		zap.Int("variables", generated.Variables),
		zap.Int("constraints", generated.Constraints),
		zap.Int("objectiveTerms", len(cspModel.Objective())))

	//** Solve model
	solveCtx, cancel := context.WithTimeout(ctx, scheduler.timeLimit)
	defer cancel()

	result, err := scheduler.solver.Solve(solveCtx, cspModel)
	if err != nil {
		generated.Status = csp.Infeasible
		return scheduler.fallback(problem, generated, fmt.Sprintf("solver error: %v", err), start)
	}
	generated.Status = result.Status
	if !result.Status.Solved() {
		return scheduler.fallback(problem, generated, result.Status.String(), start)
	}

	//** Assemble and verify timetable
	timetable, err := assemble(problem, result.Solution, scheduler.logger)
	if err == nil {
		err = Verify(timetable, problem)
	}
	if err != nil {
		return scheduler.fallback(problem, generated, fmt.Sprintf("verification failed: %v", err), start)
	}

	generated.Timetable = timetable
	generated.Objective = result.Objective
	generated.Outcome = OutcomeOptimal
	if result.Status == csp.Feasible {
		generated.Outcome = OutcomeFeasible
	}
	generated.Elapsed = time.Since(start)

	scheduler.logger.Info("Timetable generated",
		zap.String("outcome", string(generated.Outcome)),
		zap.Int("objective", generated.Objective),
		zap.Int("sessions", timetable.Filled()),
		zap.Duration("elapsed", generated.Elapsed))
	return generated
}

func (scheduler *Scheduler) fallback(problem *Problem, generated Generated, reason string, start time.Time) Generated {
	generated.Timetable = fallbackTimetable(problem)
	generated.Outcome = OutcomeFallback
	generated.Objective = 0
	generated.Reason = reason
	generated.Elapsed = time.Since(start)

	scheduler.logger.Warn("Using fallback timetable",
		zap.String("reason", reason),
		zap.Stringer("status", generated.Status),
		zap.Duration("elapsed", generated.Elapsed))
	return generated
}

// assemble turns the true decision variables into sessions with rooms
func assemble(problem *Problem, solution csp.Solution, logger *zap.Logger) (*model.Timetable, error) {
	sessions := make([]session, 0)
	for variable := 1; variable <= problem.Variables(); variable++ {
		if solution.Value(variable) {
			class, day, slot, subject, faculty := problem.indexer.Attributes(variable)
			sessions = append(sessions, session{class: class, day: day, slot: slot, subject: subject, faculty: faculty})
		}
	}

	rooms := allocateRooms(problem, sessions, logger)

	timetable := problem.EmptyTimetable()
	for i, session := range sessions {
		key := model.Key{Class: problem.Classes[session.class], Day: model.Day(session.day), Slot: model.Slot(session.slot)}
		if existing, err := timetable.Get(key); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, fmt.Errorf("%v holds more than one session", key)
		}

		err := timetable.Set(key, &model.Assignment{
			Subject: problem.Subjects[session.subject].Name,
			Faculty: problem.Faculties[session.faculty],
			Room:    rooms[i],
		})
		if err != nil {
			return nil, err
		}
	}
	return timetable, nil
}
