package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-planner/internal/config"
	"github.com/jakechorley/shift-planner/pkg/core/model"
	"github.com/jakechorley/shift-planner/pkg/datasets"
	"github.com/jakechorley/shift-planner/pkg/db"
)

// mockRunStore implements db.Database in memory
type mockRunStore struct {
	runs        []db.Run
	assignments map[string][]db.RunAssignment
	coverage    map[string][]db.RunCoverage

	saveErr    error
	getRunsErr error
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{
		assignments: make(map[string][]db.RunAssignment),
		coverage:    make(map[string][]db.RunCoverage),
	}
}

func (m *mockRunStore) SaveRun(ctx context.Context, run *db.Run, assignments []db.RunAssignment, coverage []db.RunCoverage) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.runs = append([]db.Run{*run}, m.runs...)
	m.assignments[run.ID] = assignments
	m.coverage[run.ID] = coverage
	return nil
}

func (m *mockRunStore) GetRuns(ctx context.Context) ([]db.Run, error) {
	if m.getRunsErr != nil {
		return nil, m.getRunsErr
	}
	return m.runs, nil
}

func (m *mockRunStore) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	for i := range m.runs {
		if m.runs[i].ID == runID {
			return &m.runs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
}

func (m *mockRunStore) GetRunAssignments(ctx context.Context, runID string) ([]db.RunAssignment, error) {
	return m.assignments[runID], nil
}

func (m *mockRunStore) GetRunCoverage(ctx context.Context, runID string) ([]db.RunCoverage, error) {
	return m.coverage[runID], nil
}

var solveDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Schedule.DayHours = 8
	cfg.Schedule.ShiftDurations = []int{4}
	return cfg
}

func TestGenerateSchedule_SavesRun(t *testing.T) {
	store := newMockRunStore()
	roster := &datasets.Roster{Employees: []datasets.Employee{
		{Name: "Alex"},
		{Name: "Brianna"},
	}}

	result, err := GenerateSchedule(context.Background(), store, smallConfig(), "test", roster, solveDate, zap.NewNop(), false)
	require.NoError(t, err)

	assert.True(t, result.Saved)
	assert.Equal(t, 0, result.Run.Understaff)
	assert.Equal(t, 0, result.Run.FairnessSpread)
	assert.True(t, result.Run.Optimal)
	assert.Equal(t, "2024-06-01", result.Run.SolveDate)
	assert.Equal(t, 8, result.Run.DayStartHour)

	require.Len(t, store.runs, 1)
	assert.Equal(t, result.Run.ID, store.runs[0].ID)
	assert.Len(t, store.assignments[result.Run.ID], 2)
	assert.Len(t, store.coverage[result.Run.ID], 8)

	assert.Equal(t, []model.Shift{{Start: 0, Duration: 4}}, result.Report.Assignment.ShiftsFor("Alex"))
	assert.Equal(t, []model.Shift{{Start: 4, Duration: 4}}, result.Report.Assignment.ShiftsFor("Brianna"))
}

func TestGenerateSchedule_DryRunDoesNotSave(t *testing.T) {
	store := newMockRunStore()
	roster := &datasets.Roster{Employees: []datasets.Employee{{Name: "Alex"}}}

	result, err := GenerateSchedule(context.Background(), store, smallConfig(), "test", roster, solveDate, zap.NewNop(), true)
	require.NoError(t, err)

	assert.False(t, result.Saved)
	assert.Empty(t, store.runs)
	assert.Equal(t, 4, result.Run.Understaff)
}

func TestGenerateSchedule_NilStore(t *testing.T) {
	roster := &datasets.Roster{Employees: []datasets.Employee{{Name: "Alex"}}}

	result, err := GenerateSchedule(context.Background(), nil, smallConfig(), "test", roster, solveDate, zap.NewNop(), false)
	require.NoError(t, err)
	assert.False(t, result.Saved)
}

func TestGenerateSchedule_Errors(t *testing.T) {
	roster := &datasets.Roster{Employees: []datasets.Employee{{Name: "Alex"}}}

	t.Run("empty roster", func(t *testing.T) {
		_, err := GenerateSchedule(context.Background(), nil, smallConfig(), "test", &datasets.Roster{}, solveDate, zap.NewNop(), true)
		require.Error(t, err)
	})

	t.Run("no shift fits", func(t *testing.T) {
		cfg := smallConfig()
		cfg.Schedule.DayHours = 3
		_, err := GenerateSchedule(context.Background(), nil, cfg, "test", roster, solveDate, zap.NewNop(), true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrConfiguration))
	})

	t.Run("save fails", func(t *testing.T) {
		store := newMockRunStore()
		store.saveErr = errors.New("connection refused")
		_, err := GenerateSchedule(context.Background(), store, smallConfig(), "test", roster, solveDate, zap.NewNop(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save run")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := GenerateSchedule(ctx, nil, smallConfig(), "test", roster, solveDate, zap.NewNop(), true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestGenerateSchedule_FeasibleDemo(t *testing.T) {
	ds, err := datasets.Get("feasible")
	require.NoError(t, err)

	cfg := ds.Apply(config.Default())
	result, err := GenerateSchedule(context.Background(), nil, cfg, ds.Name, &ds.Roster, solveDate, zap.NewNop(), true)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Run.Understaff)
	assert.Len(t, result.Report.Coverage, ds.DayHours)
	assert.Len(t, result.Report.Assignment, len(ds.Employees))
	assert.Equal(t, 0, result.Report.Coverage.TotalUnderstaff())
}
