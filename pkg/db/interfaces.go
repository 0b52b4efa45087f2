package db

import (
	"context"
	"errors"
)

// ErrRunNotFound is returned by GetRun when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// RunStore defines the write side of run history
type RunStore interface {
	SaveRun(ctx context.Context, run *Run, assignments []RunAssignment, coverage []RunCoverage) error
}

// RunReader defines the read side of run history
type RunReader interface {
	GetRuns(ctx context.Context) ([]Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	GetRunAssignments(ctx context.Context, runID string) ([]RunAssignment, error)
	GetRunCoverage(ctx context.Context, runID string) ([]RunCoverage, error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	RunStore
	RunReader
}
