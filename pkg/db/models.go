package db

import "time"

// Run represents a stored solve
type Run struct {
	ID        string
	CreatedAt time.Time

	// Source names the dataset or roster file the employees came from
	Source    string
	SolveDate string

	DayStartHour int
	DayHours     int

	Understaff     int
	FairnessSpread int
	OverCoverage   int
	Optimal        bool
}

// RunAssignment is one shift worked in a run. An unscheduled employee is
// stored with a zero ShiftDuration so the roster can be rebuilt in order.
type RunAssignment struct {
	RunID         string
	Position      int
	EmployeeID    string
	ShiftStart    int
	ShiftDuration int
}

// RunCoverage is one hour of a run's coverage table
type RunCoverage struct {
	RunID       string
	Hour        int
	Workers     int
	MinRequired int
	MaxAllowed  int
	Understaff  int
}
