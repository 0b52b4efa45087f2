package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-planner/internal/config"
	"github.com/jakechorley/shift-planner/pkg/core/assignment"
	"github.com/jakechorley/shift-planner/pkg/core/coverage"
	"github.com/jakechorley/shift-planner/pkg/core/optimizer"
	"github.com/jakechorley/shift-planner/pkg/datasets"
	"github.com/jakechorley/shift-planner/pkg/db"
	"github.com/jakechorley/shift-planner/pkg/export"
)

// ScheduleResult represents the result of generating a schedule
type ScheduleResult struct {
	Run    *db.Run
	Report export.Report
	Solve  *optimizer.Result

	// Saved is true if the run was written to the store
	Saved bool
}

// GenerateSchedule solves one day for the roster and records the run.
//
// The configuration is resolved for date (coverage overrides applied), the
// assignment model is built and solved in three lexicographic stages, and the
// coverage table is computed from the result. The run is saved unless dryRun
// is set or store is nil.
func GenerateSchedule(
	ctx context.Context,
	store db.RunStore,
	cfg *config.Config,
	source string,
	roster *datasets.Roster,
	date time.Time,
	logger *zap.Logger,
	dryRun bool,
) (*ScheduleResult, error) {
	if roster == nil || len(roster.Employees) == 0 {
		return nil, fmt.Errorf("roster must contain at least one employee")
	}

	logger.Debug("Generating schedule",
		zap.String("source", source),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("employees", len(roster.Employees)),
		zap.Bool("dry_run", dryRun))

	modelCfg, err := cfg.ModelConfig(date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration: %w", err)
	}

	employees := roster.ModelEmployees(modelCfg.Day)

	m, err := assignment.Build(modelCfg, employees)
	if err != nil {
		return nil, fmt.Errorf("failed to build assignment model: %w", err)
	}

	var noOptions []string
	for _, ec := range m.Employees {
		if len(ec.Options) == 0 {
			noOptions = append(noOptions, ec.Employee.ID)
		}
	}
	logger.Debug("Assignment model built",
		zap.Int("catalog_shifts", len(m.Catalog)),
		zap.Strings("no_options", noOptions))

	solved, err := optimizer.Solve(ctx, m, cfg.SolverSettings(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to solve schedule: %w", err)
	}

	table, err := coverage.Report(modelCfg, solved.Assignment)
	if err != nil {
		return nil, fmt.Errorf("failed to compute coverage: %w", err)
	}

	if table.TotalUnderstaff() != solved.Understaff {
		logger.Warn("Coverage understaff differs from solver value",
			zap.Int("coverage", table.TotalUnderstaff()),
			zap.Int("solver", solved.Understaff))
	}

	run := &db.Run{
		ID:             uuid.New().String(),
		CreatedAt:      time.Now().UTC(),
		Source:         source,
		SolveDate:      date.Format("2006-01-02"),
		DayStartHour:   modelCfg.Day.StartHour,
		DayHours:       modelCfg.Day.Hours,
		Understaff:     solved.Understaff,
		FairnessSpread: solved.FairnessSpread,
		OverCoverage:   solved.OverCoverage,
		Optimal:        solved.Optimal,
	}

	result := &ScheduleResult{
		Run: run,
		Report: export.Report{
			Day:        modelCfg.Day,
			Employees:  employees,
			Assignment: solved.Assignment,
			Coverage:   table,
		},
		Solve: solved,
	}

	if dryRun || store == nil {
		logger.Info("Schedule generated without saving", zap.String("run_id", run.ID))
		return result, nil
	}

	if err := store.SaveRun(ctx, run, db.AssignmentRecords(run.ID, solved.Assignment), db.CoverageRecords(run.ID, table)); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	result.Saved = true

	logger.Info("Schedule saved",
		zap.String("run_id", run.ID),
		zap.Int("understaff", run.Understaff),
		zap.Bool("optimal", run.Optimal))

	return result, nil
}
