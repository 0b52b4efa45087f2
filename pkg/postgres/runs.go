package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/shift-planner/pkg/db"
)

// SaveRun stores a run with its assignments and coverage in one transaction
func (d *DB) SaveRun(ctx context.Context, run *db.Run, assignments []db.RunAssignment, coverage []db.RunCoverage) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO run (id, created_at, source, solve_date, day_start_hour, day_hours,
			understaff, fairness_spread, over_coverage, optimal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.ID, run.CreatedAt.UTC(), run.Source, run.SolveDate, run.DayStartHour, run.DayHours,
		run.Understaff, run.FairnessSpread, run.OverCoverage, run.Optimal)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, a := range assignments {
		var start, duration *int
		if a.ShiftDuration > 0 {
			start, duration = &a.ShiftStart, &a.ShiftDuration
		}
		batch.Queue(`
			INSERT INTO run_assignment (run_id, position, employee_id, shift_start, shift_duration)
			VALUES ($1, $2, $3, $4, $5)
		`, run.ID, a.Position, a.EmployeeID, start, duration)
	}
	for _, c := range coverage {
		batch.Queue(`
			INSERT INTO run_coverage (run_id, hour, workers, min_required, max_allowed, understaff)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, run.ID, c.Hour, c.Workers, c.MinRequired, c.MaxAllowed, c.Understaff)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert run rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRuns retrieves all runs, newest first
func (d *DB) GetRuns(ctx context.Context) ([]db.Run, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, created_at, source, solve_date, day_start_hour, day_hours,
			understaff, fairness_spread, over_coverage, optimal
		FROM run
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []db.Run
	for rows.Next() {
		var r db.Run
		var solveDate time.Time
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Source, &solveDate, &r.DayStartHour, &r.DayHours,
			&r.Understaff, &r.FairnessSpread, &r.OverCoverage, &r.Optimal); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.SolveDate = solveDate.Format("2006-01-02")
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun retrieves a single run by id
func (d *DB) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	var r db.Run
	var solveDate time.Time
	err := d.pool.QueryRow(ctx, `
		SELECT id, created_at, source, solve_date, day_start_hour, day_hours,
			understaff, fairness_spread, over_coverage, optimal
		FROM run
		WHERE id = $1
	`, runID).Scan(&r.ID, &r.CreatedAt, &r.Source, &solveDate, &r.DayStartHour, &r.DayHours,
		&r.Understaff, &r.FairnessSpread, &r.OverCoverage, &r.Optimal)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	r.SolveDate = solveDate.Format("2006-01-02")
	return &r, nil
}

// GetRunAssignments retrieves a run's assignment rows in roster order
func (d *DB) GetRunAssignments(ctx context.Context, runID string) ([]db.RunAssignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT position, employee_id, shift_start, shift_duration
		FROM run_assignment
		WHERE run_id = $1
		ORDER BY position, shift_start NULLS LAST
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.RunAssignment
	for rows.Next() {
		a := db.RunAssignment{RunID: runID}
		var start, duration *int
		if err := rows.Scan(&a.Position, &a.EmployeeID, &start, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan run assignment: %w", err)
		}
		if start != nil && duration != nil {
			a.ShiftStart, a.ShiftDuration = *start, *duration
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run assignments: %w", err)
	}

	return assignments, nil
}

// GetRunCoverage retrieves a run's coverage rows in hour order
func (d *DB) GetRunCoverage(ctx context.Context, runID string) ([]db.RunCoverage, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT hour, workers, min_required, max_allowed, understaff
		FROM run_coverage
		WHERE run_id = $1
		ORDER BY hour
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run coverage: %w", err)
	}
	defer rows.Close()

	var coverage []db.RunCoverage
	for rows.Next() {
		c := db.RunCoverage{RunID: runID}
		if err := rows.Scan(&c.Hour, &c.Workers, &c.MinRequired, &c.MaxAllowed, &c.Understaff); err != nil {
			return nil, fmt.Errorf("failed to scan run coverage: %w", err)
		}
		coverage = append(coverage, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run coverage: %w", err)
	}

	return coverage, nil
}
