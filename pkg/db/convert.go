package db

import (
	"github.com/jakechorley/shift-planner/pkg/core/model"
)

// AssignmentRecords flattens an assignment into rows, one per shift
func AssignmentRecords(runID string, a model.Assignment) []RunAssignment {
	records := make([]RunAssignment, 0, len(a))
	for i, ea := range a {
		if !ea.IsScheduled() {
			records = append(records, RunAssignment{RunID: runID, Position: i, EmployeeID: ea.EmployeeID})
			continue
		}
		for _, s := range ea.Shifts {
			records = append(records, RunAssignment{
				RunID:         runID,
				Position:      i,
				EmployeeID:    ea.EmployeeID,
				ShiftStart:    s.Start,
				ShiftDuration: s.Duration,
			})
		}
	}
	return records
}

// CoverageRecords converts a coverage table into rows
func CoverageRecords(runID string, table model.Coverage) []RunCoverage {
	records := make([]RunCoverage, len(table))
	for i, row := range table {
		records[i] = RunCoverage{
			RunID:       runID,
			Hour:        row.Hour,
			Workers:     row.Workers,
			MinRequired: row.MinRequired,
			MaxAllowed:  row.MaxAllowed,
			Understaff:  row.Understaff,
		}
	}
	return records
}

// ToAssignment rebuilds an assignment from rows ordered by position
func ToAssignment(records []RunAssignment) model.Assignment {
	var a model.Assignment
	position := -1
	for _, r := range records {
		if len(a) == 0 || r.Position != position {
			a = append(a, model.EmployeeAssignment{EmployeeID: r.EmployeeID})
			position = r.Position
		}
		if r.ShiftDuration > 0 {
			last := &a[len(a)-1]
			last.Shifts = append(last.Shifts, model.Shift{Start: r.ShiftStart, Duration: r.ShiftDuration})
		}
	}
	return a
}

// ToCoverage rebuilds a coverage table from rows ordered by hour
func ToCoverage(records []RunCoverage) model.Coverage {
	table := make(model.Coverage, len(records))
	for i, r := range records {
		table[i] = model.CoverageRow{
			Hour:        r.Hour,
			Workers:     r.Workers,
			MinRequired: r.MinRequired,
			MaxAllowed:  r.MaxAllowed,
			Understaff:  r.Understaff,
		}
	}
	return table
}
