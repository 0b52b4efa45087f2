package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jakechorley/shift-planner/pkg/core/assignment"
	"github.com/jakechorley/shift-planner/pkg/core/coverage"
	"github.com/jakechorley/shift-planner/pkg/core/model"
)

func buildModel(t *testing.T, cfg model.Config, employees []model.Employee) *assignment.Model {
	t.Helper()
	m, err := assignment.Build(cfg, employees)
	require.NoError(t, err)
	return m
}

func assertWithinCaps(t *testing.T, cfg model.Config, a model.Assignment) {
	t.Helper()
	_, err := coverage.Report(cfg, a)
	assert.NoError(t, err)
}

func TestSolve_ThreeEmployeesCoverTheDay(t *testing.T) {
	cfg := model.DefaultConfig()
	m := buildModel(t, cfg, []model.Employee{
		{ID: "A", Unavailable: []int{2}},
		{ID: "B"},
		{ID: "C"},
	})

	result, err := Solve(context.Background(), m, Settings{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	assert.True(t, result.Optimal)
	assert.Equal(t, 0, result.Understaff)
	assert.Equal(t, 0, result.FairnessSpread)
	assert.Equal(t, 0, result.OverCoverage)
	require.Len(t, result.Stages, 3)

	for _, s := range result.Assignment.ShiftsFor("A") {
		assert.False(t, s.Covers(2))
	}
	assertWithinCaps(t, cfg, result.Assignment)

	// Every frozen stage value is carried on the returned model
	assert.Len(t, result.Model.Bounds, 3)
	assert.True(t, result.Model.Feasible(result.Selection))
}

func TestSolve_EmployeeNeverAvailable(t *testing.T) {
	cfg := model.DefaultConfig()
	unavailable := make([]int, cfg.Day.Hours)
	for h := range unavailable {
		unavailable[h] = h
	}
	m := buildModel(t, cfg, []model.Employee{{ID: "A", Unavailable: unavailable}})

	result, err := Solve(context.Background(), m, DefaultSettings())
	require.NoError(t, err)

	assert.False(t, result.Assignment[0].IsScheduled())
	assert.Equal(t, 12, result.Understaff)
	assert.Equal(t, 0, result.FairnessSpread)
	assert.Equal(t, 0, result.OverCoverage)
	assert.True(t, result.Optimal)
}

func TestSolve_NoEmployees(t *testing.T) {
	cfg := model.DefaultConfig()
	m := buildModel(t, cfg, nil)

	result, err := Solve(context.Background(), m, DefaultSettings())
	require.NoError(t, err)

	assert.Empty(t, result.Assignment)
	assert.Equal(t, 12, result.Understaff)
}

func TestSolve_ZeroCapBlocksEveryShift(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.MaxWorkers[6] = 0
	m := buildModel(t, cfg, []model.Employee{{ID: "A"}, {ID: "B"}})

	result, err := Solve(context.Background(), m, DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Assignment.WorkersAt(6))
	assert.Equal(t, 1, result.Values.UnderstaffByHour[6])
	assertWithinCaps(t, cfg, result.Assignment)
}

func TestSolve_MinimumAboveCapIsSoft(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.MinWorkers = model.Uniform(12, 3)
	cfg.MaxWorkers = model.Uniform(12, 1)
	m := buildModel(t, cfg, []model.Employee{{ID: "A"}, {ID: "B"}, {ID: "C"}})

	result, err := Solve(context.Background(), m, DefaultSettings())
	require.NoError(t, err)

	// At most one worker per hour, so each hour is short by at least 2
	assert.Equal(t, 24, result.Understaff)
	assertWithinCaps(t, cfg, result.Assignment)
}

func TestSolve_MultipleShiftsPerEmployee(t *testing.T) {
	cfg := model.Config{
		Day:                  model.Day{StartHour: 9, Hours: 8},
		ShiftDurations:       []int{4},
		MinWorkers:           model.Uniform(8, 1),
		MaxWorkers:           model.Uniform(8, 1),
		MaxShiftsPerEmployee: 1,
	}

	single, err := Solve(context.Background(), buildModel(t, cfg, []model.Employee{{ID: "A"}}), DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 4, single.Understaff)

	cfg.MaxShiftsPerEmployee = 2
	double, err := Solve(context.Background(), buildModel(t, cfg, []model.Employee{{ID: "A"}}), DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 0, double.Understaff)
	assert.Equal(t, []model.Shift{{Start: 0, Duration: 4}, {Start: 4, Duration: 4}}, double.Assignment.ShiftsFor("A"))
}

func TestSolve_FairnessPrefersEvenHours(t *testing.T) {
	// Covering ten hours takes both people; 5+5 is the only even split
	// with no surplus hours.
	cfg := model.Config{
		Day:                  model.Day{StartHour: 8, Hours: 10},
		ShiftDurations:       []int{4, 5, 6},
		MinWorkers:           model.Uniform(10, 1),
		MaxWorkers:           model.Uniform(10, 2),
		MaxShiftsPerEmployee: 1,
	}
	m := buildModel(t, cfg, []model.Employee{{ID: "A"}, {ID: "B"}})

	result, err := Solve(context.Background(), m, DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Understaff)
	assert.Equal(t, 0, result.FairnessSpread)
	assert.Equal(t, 0, result.OverCoverage)
	assert.Equal(t, result.Assignment[0].Hours(), result.Assignment[1].Hours())
}

func TestSolve_IsDeterministic(t *testing.T) {
	cfg := model.DefaultConfig()
	employees := []model.Employee{
		{ID: "A", Unavailable: []int{2}},
		{ID: "B", Unavailable: []int{9}},
		{ID: "C"},
		{ID: "D", Unavailable: []int{0, 1}},
	}

	first, err := Solve(context.Background(), buildModel(t, cfg, employees), DefaultSettings())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := Solve(context.Background(), buildModel(t, cfg, employees), DefaultSettings())
		require.NoError(t, err)
		assert.Equal(t, first.Selection, again.Selection)
		assert.Equal(t, first.Assignment, again.Assignment)
	}
}

func TestSolve_MatchesExhaustiveSearch(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewSource(seed))

		limit := 1
		hours, people := 8, 4
		if seed%3 == 0 {
			limit = 2
			hours, people = 6, 3
		}

		cfg := model.Config{
			Day:                  model.Day{StartHour: 10, Hours: hours},
			ShiftDurations:       []int{2, 3},
			MinWorkers:           make([]int, hours),
			MaxWorkers:           make([]int, hours),
			MaxShiftsPerEmployee: limit,
		}
		for h := 0; h < hours; h++ {
			cfg.MinWorkers[h] = rng.Intn(3)
			cfg.MaxWorkers[h] = 1 + rng.Intn(2)
		}

		employees := make([]model.Employee, people)
		for i := range employees {
			employees[i].ID = string(rune('A' + i))
			for h := 0; h < hours; h++ {
				if rng.Intn(5) == 0 {
					employees[i].Unavailable = append(employees[i].Unavailable, h)
				}
			}
		}

		m := buildModel(t, cfg, employees)
		result, err := Solve(context.Background(), m, Settings{})
		require.NoError(t, err, "seed %d", seed)

		expected, selection := exhaustive(m)
		assert.True(t, result.Optimal, "seed %d", seed)
		assert.Equal(t, expected.Understaff, result.Understaff, "seed %d", seed)
		assert.Equal(t, expected.FairnessSpread, result.FairnessSpread, "seed %d", seed)
		assert.Equal(t, expected.OverCoverage, result.OverCoverage, "seed %d", seed)

		// Ties go to the earliest selection in employee order
		assert.Equal(t, selection, result.Selection, "seed %d", seed)
	}
}

// exhaustive walks every selection in lexicographic order and keeps the
// first one with the smallest (understaff, spread, over-coverage) triple.
func exhaustive(m *assignment.Model) (assignment.Values, []int) {
	n := len(m.Employees)
	selection := make([]int, n)

	var best assignment.Values
	var bestSelection []int

	for {
		if m.Feasible(selection) {
			v := m.Evaluate(selection)
			if bestSelection == nil || less(v, best) {
				best = v
				bestSelection = append([]int(nil), selection...)
			}
		}

		i := n - 1
		for ; i >= 0; i-- {
			selection[i]++
			if selection[i] < len(m.Employees[i].Choices) {
				break
			}
			selection[i] = 0
		}
		if i < 0 {
			return best, bestSelection
		}
	}
}

func less(a, b assignment.Values) bool {
	if a.Understaff != b.Understaff {
		return a.Understaff < b.Understaff
	}
	if a.FairnessSpread != b.FairnessSpread {
		return a.FairnessSpread < b.FairnessSpread
	}
	return a.OverCoverage < b.OverCoverage
}

func TestSolveStage_SingleObjective(t *testing.T) {
	cfg := model.DefaultConfig()
	m := buildModel(t, cfg, []model.Employee{{ID: "A"}, {ID: "B"}})

	stage, selection, err := SolveStage(context.Background(), m, assignment.OverCoverage, DefaultSettings())
	require.NoError(t, err)

	// Nobody working has no surplus at all
	assert.True(t, stage.Optimal)
	assert.Equal(t, 0, stage.Value)
	assert.Equal(t, 0, m.Evaluate(selection).OverCoverage)
}

func TestSolve_NodeLimitReturnsBestEffort(t *testing.T) {
	cfg := model.DefaultConfig()
	m := buildModel(t, cfg, []model.Employee{{ID: "A"}, {ID: "B"}, {ID: "C"}})

	result, err := Solve(context.Background(), m, Settings{StageNodeLimit: 1})
	require.NoError(t, err)

	assert.False(t, result.Optimal)
	assert.Equal(t, StopNodeLimit, result.Stages[0].StopReason)
	assert.False(t, result.Stages[0].Optimal)
	assert.Equal(t, result.Values.Understaff, result.Understaff)
	assertWithinCaps(t, cfg, result.Assignment)
}

func TestSolve_CancelledContext(t *testing.T) {
	m := buildModel(t, model.DefaultConfig(), []model.Employee{{ID: "A"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Solve(ctx, m, DefaultSettings())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestSolve_TimeLimitReturnsBestEffort(t *testing.T) {
	day := model.Day{StartHour: 0, Hours: 24}
	cfg := model.Config{
		Day:                  day,
		ShiftDurations:       []int{3, 4, 5, 6},
		MinWorkers:           model.Uniform(day.Hours, 5),
		MaxWorkers:           model.Uniform(day.Hours, 6),
		MaxShiftsPerEmployee: 2,
	}
	employees := make([]model.Employee, 40)
	for i := range employees {
		employees[i] = model.Employee{ID: fmt.Sprintf("E%02d", i)}
	}
	m := buildModel(t, cfg, employees)

	result, err := Solve(context.Background(), m, Settings{
		StageTimeLimit: 200 * time.Millisecond,
		MemoLimit:      2_000_000,
	})
	require.NoError(t, err)

	assert.False(t, result.Optimal)
	stopped := false
	for _, stage := range result.Stages {
		if stage.StopReason == StopTimeLimit {
			stopped = true
			assert.False(t, stage.Optimal)
		}
	}
	assert.True(t, stopped, "expected a stage to hit the time limit")
	assert.True(t, result.Model.Feasible(result.Selection))
	assertWithinCaps(t, cfg, result.Assignment)
}

func TestSolveStage_ImpossibleBoundIsInternalError(t *testing.T) {
	m := buildModel(t, model.DefaultConfig(), []model.Employee{{ID: "A"}, {ID: "B"}})
	bounded := m.WithBound(assignment.Bound{Objective: assignment.Understaff, Value: -1})

	_, _, err := SolveStage(context.Background(), bounded, assignment.FairnessSpread, DefaultSettings())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInfeasibleModel))
}
