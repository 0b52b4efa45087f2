package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-planner/pkg/core/model"
)

func TestAssignmentRecords(t *testing.T) {
	a := model.Assignment{
		{EmployeeID: "Alex", Shifts: []model.Shift{{Start: 0, Duration: 4}, {Start: 6, Duration: 4}}},
		{EmployeeID: "Brianna"},
		{EmployeeID: "Carlos", Shifts: []model.Shift{{Start: 3, Duration: 5}}},
	}

	records := AssignmentRecords("run-1", a)
	require.Len(t, records, 4)

	assert.Equal(t, RunAssignment{RunID: "run-1", Position: 0, EmployeeID: "Alex", ShiftStart: 6, ShiftDuration: 4}, records[1])
	assert.Equal(t, RunAssignment{RunID: "run-1", Position: 1, EmployeeID: "Brianna"}, records[2])
	assert.Equal(t, 2, records[3].Position)

	// Rows rebuild the same assignment, unscheduled employees included
	assert.Equal(t, a, ToAssignment(records))
}

func TestCoverageRecords(t *testing.T) {
	table := model.Coverage{
		{Hour: 0, Workers: 1, MinRequired: 1, MaxAllowed: 2},
		{Hour: 1, Workers: 0, MinRequired: 2, MaxAllowed: 2, Understaff: 2},
	}

	records := CoverageRecords("run-1", table)
	require.Len(t, records, 2)
	assert.Equal(t, "run-1", records[1].RunID)
	assert.Equal(t, 2, records[1].Understaff)

	assert.Equal(t, table, ToCoverage(records))
}
