package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-planner/pkg/core/model"
)

func eightHourConfig(limit int) model.Config {
	return model.Config{
		Day:                  model.Day{StartHour: 9, Hours: 8},
		ShiftDurations:       []int{4},
		MinWorkers:           model.Uniform(8, 1),
		MaxWorkers:           model.Uniform(8, 2),
		MaxShiftsPerEmployee: limit,
	}
}

func TestBuild_SingleShiftChoices(t *testing.T) {
	m, err := Build(model.DefaultConfig(), []model.Employee{
		{ID: "alex"},
		{ID: "bri", Unavailable: []int{2}},
	})
	require.NoError(t, err)

	assert.Len(t, m.Catalog, 17)
	require.Len(t, m.Employees, 2)

	alex := m.Employees[0]
	assert.Len(t, alex.Options, 17)
	assert.Len(t, alex.Choices, 18)
	assert.True(t, alex.Choices[len(alex.Choices)-1].IsEmpty())

	for i, c := range alex.Choices[:17] {
		require.Len(t, c.Shifts, 1)
		assert.Equal(t, alex.Options[i], c.Shifts[0])
		assert.Equal(t, c.Shifts[0].Mask(), c.Mask)
		assert.Equal(t, c.Shifts[0].Duration, c.Hours)
	}

	bri := m.Employees[1]
	assert.Len(t, bri.Options, 11)
	assert.Len(t, bri.Choices, 12)
}

func TestBuild_MultipleShiftChoices(t *testing.T) {
	m, err := Build(eightHourConfig(2), []model.Employee{{ID: "alex"}})
	require.NoError(t, err)

	choices := m.Employees[0].Choices
	var got [][]model.Shift
	for _, c := range choices {
		got = append(got, c.Shifts)
	}

	expected := [][]model.Shift{
		{{Start: 0, Duration: 4}},
		{{Start: 0, Duration: 4}, {Start: 4, Duration: 4}},
		{{Start: 1, Duration: 4}},
		{{Start: 2, Duration: 4}},
		{{Start: 3, Duration: 4}},
		{{Start: 4, Duration: 4}},
		nil,
	}
	assert.Equal(t, expected, got)
	assert.Equal(t, 8, choices[1].Hours)
	assert.Equal(t, uint64(0xFF), choices[1].Mask)
}

func TestBuild_EmployeeWithNoOptions(t *testing.T) {
	m, err := Build(eightHourConfig(1), []model.Employee{
		{ID: "alex", Unavailable: []int{3, 4}},
	})
	require.NoError(t, err)

	assert.Empty(t, m.Employees[0].Options)
	require.Len(t, m.Employees[0].Choices, 1)
	assert.True(t, m.Employees[0].Choices[0].IsEmpty())
}

func TestBuild_ConfigurationErrors(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.MaxWorkers[0] = -1
	_, err := Build(cfg, []model.Employee{{ID: "alex"}})
	assert.ErrorIs(t, err, model.ErrConfiguration)

	_, err = Build(model.DefaultConfig(), []model.Employee{{ID: "alex"}, {ID: "alex"}})
	assert.ErrorIs(t, err, model.ErrConfiguration)

	cfg = model.DefaultConfig()
	cfg.ShiftDurations = nil
	_, err = Build(cfg, nil)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestBuild_DoesNotShareConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	m, err := Build(cfg, nil)
	require.NoError(t, err)

	cfg.MinWorkers[0] = 7
	assert.Equal(t, 1, m.Config.MinWorkers[0])
}

func TestModel_WithBound(t *testing.T) {
	m, err := Build(model.DefaultConfig(), []model.Employee{{ID: "alex"}})
	require.NoError(t, err)

	bounded := m.WithBound(Bound{Objective: Understaff, Value: 3})
	tighter := bounded.WithBound(Bound{Objective: Understaff, Value: 2})

	assert.Empty(t, m.Bounds)
	assert.Len(t, bounded.Bounds, 1)

	_, ok := m.BoundFor(Understaff)
	assert.False(t, ok)

	v, ok := tighter.BoundFor(Understaff)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestModel_Evaluate(t *testing.T) {
	m, err := Build(eightHourConfig(1), []model.Employee{{ID: "alex"}, {ID: "bri"}, {ID: "cam"}})
	require.NoError(t, err)

	// alex [0,4), bri [2,6), cam unscheduled
	selection := []int{0, 2, 5}
	v := m.Evaluate(selection)

	assert.Equal(t, []int{1, 1, 2, 2, 1, 1, 0, 0}, v.Workers)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 1, 1}, v.UnderstaffByHour)
	assert.Equal(t, 2, v.Understaff)
	assert.Equal(t, 4, v.FairnessSpread)
	assert.Equal(t, 2, v.OverCoverage)
	assert.Equal(t, 4, v.Get(FairnessSpread))

	assert.True(t, m.Feasible(selection))
	assert.False(t, m.WithBound(Bound{Objective: Understaff, Value: 1}).Feasible(selection))

	a := m.Assignment(selection)
	assert.Equal(t, []model.Shift{{Start: 0, Duration: 4}}, a.ShiftsFor("alex"))
	assert.Empty(t, a.ShiftsFor("cam"))
}

func TestModel_FeasibleRespectsCap(t *testing.T) {
	m, err := Build(eightHourConfig(1), []model.Employee{{ID: "alex"}, {ID: "bri"}, {ID: "cam"}})
	require.NoError(t, err)

	assert.False(t, m.Feasible([]int{0, 0, 0}))
	assert.False(t, m.Feasible([]int{0, 0}))
	assert.True(t, m.Feasible(m.Unscheduled()))
}

func TestObjective_String(t *testing.T) {
	assert.Equal(t, "understaff", Understaff.String())
	assert.Equal(t, "fairness_spread", FairnessSpread.String())
	assert.Equal(t, "over_coverage", OverCoverage.String())
	assert.Equal(t, "understaff <= 0", Bound{Objective: Understaff}.String())
}
