package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-planner/pkg/core/model"
	"github.com/jakechorley/shift-planner/pkg/db"
	"github.com/jakechorley/shift-planner/pkg/export"
)

// ErrRunNotFound is returned when no stored run has the requested id
var ErrRunNotFound = db.ErrRunNotFound

// ListRuns returns stored runs, newest first, capped at limit (0 = all)
func ListRuns(ctx context.Context, reader db.RunReader, logger *zap.Logger, limit int) ([]db.Run, error) {
	runs, err := reader.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	logger.Debug("Fetched runs", zap.Int("count", len(runs)))

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetRun loads a stored run and rebuilds its report. Unavailable hours are
// not stored, so the report's employees carry ids only.
func GetRun(ctx context.Context, reader db.RunReader, logger *zap.Logger, runID string) (*db.Run, export.Report, error) {
	run, err := reader.GetRun(ctx, runID)
	if err != nil {
		return nil, export.Report{}, fmt.Errorf("failed to fetch run: %w", err)
	}

	assignmentRecords, err := reader.GetRunAssignments(ctx, runID)
	if err != nil {
		return nil, export.Report{}, fmt.Errorf("failed to fetch run assignments: %w", err)
	}

	coverageRecords, err := reader.GetRunCoverage(ctx, runID)
	if err != nil {
		return nil, export.Report{}, fmt.Errorf("failed to fetch run coverage: %w", err)
	}

	logger.Debug("Loaded run",
		zap.String("run_id", runID),
		zap.Int("assignment_rows", len(assignmentRecords)),
		zap.Int("coverage_rows", len(coverageRecords)))

	a := db.ToAssignment(assignmentRecords)
	employees := make([]model.Employee, len(a))
	for i, ea := range a {
		employees[i] = model.Employee{ID: ea.EmployeeID}
	}

	return run, export.Report{
		Day:        model.Day{StartHour: run.DayStartHour, Hours: run.DayHours},
		Employees:  employees,
		Assignment: a,
		Coverage:   db.ToCoverage(coverageRecords),
	}, nil
}
