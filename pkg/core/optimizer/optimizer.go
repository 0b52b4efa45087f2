package optimizer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-planner/pkg/core/assignment"
	"github.com/jakechorley/shift-planner/pkg/core/model"
)

// Reasons a stage stopped before proving optimality
const (
	StopTimeLimit = "time_limit"
	StopNodeLimit = "node_limit"
)

// Stages lists the objectives in priority order
var Stages = []assignment.Objective{
	assignment.Understaff,
	assignment.FairnessSpread,
	assignment.OverCoverage,
}

// Settings controls the per-stage search budget
type Settings struct {
	// StageTimeLimit caps the wall time of each stage (0 = no limit)
	StageTimeLimit time.Duration

	// StageNodeLimit caps the search nodes of each stage (0 = no limit)
	StageNodeLimit int64

	// MemoLimit caps the number of remembered search states (0 = no limit)
	MemoLimit int

	Logger *zap.Logger
}

// DefaultSettings gives each stage ten seconds
func DefaultSettings() Settings {
	return Settings{
		StageTimeLimit: 10 * time.Second,
		MemoLimit:      2_000_000,
	}
}

// StageResult describes how a single stage finished
type StageResult struct {
	Objective assignment.Objective
	Value     int
	Optimal   bool

	// StopReason is empty when the stage was solved to optimality
	StopReason string

	Nodes   int64
	Elapsed time.Duration
}

// Result is the outcome of a full lexicographic solve
type Result struct {
	Assignment model.Assignment
	Selection  []int
	Values     assignment.Values

	// Frozen optimal values of the three stages
	Understaff     int
	FairnessSpread int
	OverCoverage   int

	// Optimal is false if any stage hit its budget
	Optimal bool

	Stages []StageResult

	// Model is the input model with every stage's value frozen as a bound
	Model *assignment.Model
}

// Solve runs the three lexicographic stages in order.
//
// Each stage minimizes its objective subject to the values of every earlier
// stage, which are frozen as bounds on the model. A stage that runs out of
// budget keeps the best solution found so far (or the previous stage's
// solution) and the result is flagged as not optimal.
//
// Returns an error wrapping ctx.Err() if the context is cancelled, and
// ErrInfeasibleModel if a stage can't find any solution at all.
func Solve(ctx context.Context, m *assignment.Model, settings Settings) (*Result, error) {
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug("Starting lexicographic solve",
		zap.Int("employees", len(m.Employees)),
		zap.Int("catalog_shifts", len(m.Catalog)),
		zap.Duration("stage_time_limit", settings.StageTimeLimit),
		zap.Int64("stage_node_limit", settings.StageNodeLimit))

	result := &Result{Optimal: true}
	current := m
	var incumbent []int

	for _, objective := range Stages {
		stage, selection, err := runStage(ctx, current, objective, incumbent, settings)
		if err != nil {
			return nil, err
		}

		logger.Debug("Stage completed",
			zap.String("objective", objective.String()),
			zap.Int("value", stage.Value),
			zap.Bool("optimal", stage.Optimal),
			zap.String("stop_reason", stage.StopReason),
			zap.Int64("nodes", stage.Nodes),
			zap.Duration("elapsed", stage.Elapsed))

		result.Stages = append(result.Stages, stage)
		if !stage.Optimal {
			result.Optimal = false
		}

		incumbent = selection
		current = current.WithBound(assignment.Bound{Objective: objective, Value: stage.Value})
	}

	if !current.Feasible(incumbent) {
		return nil, fmt.Errorf("%w: final selection breaks a hard constraint", model.ErrInfeasibleModel)
	}

	values := m.Evaluate(incumbent)
	result.Assignment = m.Assignment(incumbent)
	result.Selection = incumbent
	result.Values = values
	result.Understaff = values.Understaff
	result.FairnessSpread = values.FairnessSpread
	result.OverCoverage = values.OverCoverage
	result.Model = current

	logger.Info("Solve finished",
		zap.Int("understaff", result.Understaff),
		zap.Int("fairness_spread", result.FairnessSpread),
		zap.Int("over_coverage", result.OverCoverage),
		zap.Bool("optimal", result.Optimal))

	return result, nil
}

// SolveStage minimizes a single objective on the model as given.
// It is exposed so each stage can be checked in isolation.
func SolveStage(ctx context.Context, m *assignment.Model, objective assignment.Objective, settings Settings) (StageResult, []int, error) {
	return runStage(ctx, m, objective, nil, settings)
}

// runStage searches one objective. The previous stage's selection satisfies
// every frozen bound, so it seeds the incumbent value and serves as the
// fallback when the budget runs out.
func runStage(ctx context.Context, m *assignment.Model, objective assignment.Objective, previous []int, settings Settings) (StageResult, []int, error) {
	started := time.Now()

	s := newSearch(ctx, m, objective, settings)
	if previous != nil {
		s.limit = m.Evaluate(previous).Get(objective) + 1
	}
	s.run()

	stage := StageResult{
		Objective:  objective,
		Optimal:    s.stopped == "",
		StopReason: s.stopped,
		Nodes:      s.nodes,
		Elapsed:    time.Since(started),
	}

	if s.err != nil {
		return stage, nil, fmt.Errorf("%s stage cancelled: %w", objective, s.err)
	}

	var selection []int
	switch {
	case s.found:
		selection = s.best
	case s.stopped != "" && previous != nil:
		selection = previous
	case s.stopped != "" && len(m.Bounds) == 0:
		selection = m.Unscheduled()
	default:
		return stage, nil, fmt.Errorf("%w: %s stage found no solution under %v", model.ErrInfeasibleModel, objective, m.Bounds)
	}

	stage.Value = m.Evaluate(selection).Get(objective)
	return stage, selection, nil
}
