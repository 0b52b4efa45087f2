package assignment

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/jakechorley/shift-planner/pkg/core/availability"
	"github.com/jakechorley/shift-planner/pkg/core/catalog"
	"github.com/jakechorley/shift-planner/pkg/core/model"
)

// Objective identifies one of the quantities the optimizer minimizes
type Objective int

const (
	// Understaff is the sum over hours of max(0, min - workers)
	Understaff Objective = iota

	// FairnessSpread is max hours minus min hours across all employees.
	// Unscheduled employees count as working 0 hours.
	FairnessSpread

	// OverCoverage is the sum over hours of max(0, workers - min)
	OverCoverage
)

func (o Objective) String() string {
	switch o {
	case Understaff:
		return "understaff"
	case FairnessSpread:
		return "fairness_spread"
	case OverCoverage:
		return "over_coverage"
	default:
		return fmt.Sprintf("objective(%d)", int(o))
	}
}

// Bound is a frozen constraint: the objective may not exceed Value
type Bound struct {
	Objective Objective
	Value     int
}

func (b Bound) String() string {
	return fmt.Sprintf("%s <= %d", b.Objective, b.Value)
}

// Choice is one decision an employee can take: a set of pairwise
// non-overlapping shifts, or no shift at all.
type Choice struct {
	Shifts []model.Shift

	// Mask has a bit set for every hour the choice covers
	Mask uint64

	// Hours is the employee's total hours under this choice
	Hours int
}

// IsEmpty returns true for the unscheduled choice
func (c Choice) IsEmpty() bool {
	return len(c.Shifts) == 0
}

// EmployeeChoices are the decision variables for one employee.
// The last entry is always the unscheduled choice.
type EmployeeChoices struct {
	Employee model.Employee

	// Options are the catalog shifts left after availability filtering
	Options []model.Shift

	Choices []Choice
}

// Model is the assignment problem for one solve.
//
// A Model is never mutated after Build; WithBound returns a copy with one
// more frozen constraint so each optimizer stage can be inspected alone.
type Model struct {
	Config    model.Config
	Catalog   []model.Shift
	Employees []EmployeeChoices
	Bounds    []Bound
}

// Build constructs the model from the configuration and employees.
//
// Returns a ConfigurationError if the configuration is invalid, the catalog
// is empty, or employee ids are missing or duplicated. No solve is attempted.
func Build(cfg model.Config, employees []model.Employee) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := model.ValidateEmployees(employees); err != nil {
		return nil, err
	}

	shifts, err := catalog.Generate(cfg)
	if err != nil {
		return nil, err
	}

	options := availability.FilterAll(shifts, employees)

	m := &Model{
		Config:    cfg.Clone(),
		Catalog:   shifts,
		Employees: make([]EmployeeChoices, len(options)),
	}

	for i, eo := range options {
		m.Employees[i] = EmployeeChoices{
			Employee: eo.Employee,
			Options:  eo.Shifts,
			Choices:  buildChoices(eo.Shifts, cfg.MaxShiftsPerEmployee),
		}
	}

	return m, nil
}

// buildChoices enumerates every set of up to limit non-overlapping shifts.
// Sets are produced in catalog order of their shifts, the empty set last.
func buildChoices(options []model.Shift, limit int) []Choice {
	choices := make([]Choice, 0, len(options)+1)

	var walk func(from int, picked []model.Shift, mask uint64, hours int)
	walk = func(from int, picked []model.Shift, mask uint64, hours int) {
		for i := from; i < len(options); i++ {
			shift := options[i]
			shiftMask := shift.Mask()
			if mask&shiftMask != 0 {
				continue
			}

			next := append(slices.Clone(picked), shift)
			choices = append(choices, Choice{
				Shifts: next,
				Mask:   mask | shiftMask,
				Hours:  hours + shift.Duration,
			})

			if len(next) < limit {
				walk(i+1, next, mask|shiftMask, hours+shift.Duration)
			}
		}
	}
	walk(0, nil, 0, 0)

	choices = append(choices, Choice{})
	return choices
}

// WithBound returns a copy of the model with an extra frozen constraint
func (m *Model) WithBound(b Bound) *Model {
	next := *m
	next.Bounds = append(slices.Clone(m.Bounds), b)
	return &next
}

// BoundFor returns the tightest frozen value for the objective, if any
func (m *Model) BoundFor(o Objective) (int, bool) {
	value, found := 0, false
	for _, b := range m.Bounds {
		if b.Objective != o {
			continue
		}
		if !found || b.Value < value {
			value = b.Value
		}
		found = true
	}
	return value, found
}

// Hours returns the number of hours in the model's day
func (m *Model) Hours() int {
	return m.Config.Day.Hours
}

// Values are the objective values of one complete selection
type Values struct {
	// Workers holds the employees working each hour
	Workers []int

	// UnderstaffByHour is the optimal value of the soft slack u[h]
	UnderstaffByHour []int

	Understaff     int
	FairnessSpread int
	OverCoverage   int
}

// Get returns the value of a single objective
func (v Values) Get(o Objective) int {
	switch o {
	case Understaff:
		return v.Understaff
	case FairnessSpread:
		return v.FairnessSpread
	default:
		return v.OverCoverage
	}
}

// Evaluate computes all objective values for a selection, where
// selection[i] indexes into Employees[i].Choices.
func (m *Model) Evaluate(selection []int) Values {
	hours := m.Hours()
	v := Values{
		Workers:          make([]int, hours),
		UnderstaffByHour: make([]int, hours),
	}

	minHours, maxHours := 0, 0
	for i, idx := range selection {
		choice := m.Employees[i].Choices[idx]
		for mask := choice.Mask; mask != 0; mask &= mask - 1 {
			v.Workers[bits.TrailingZeros64(mask)]++
		}
		if i == 0 || choice.Hours < minHours {
			minHours = choice.Hours
		}
		if i == 0 || choice.Hours > maxHours {
			maxHours = choice.Hours
		}
	}
	v.FairnessSpread = maxHours - minHours

	for h := 0; h < hours; h++ {
		need := m.Config.MinWorkers[h]
		if v.Workers[h] < need {
			v.UnderstaffByHour[h] = need - v.Workers[h]
			v.Understaff += need - v.Workers[h]
		} else {
			v.OverCoverage += v.Workers[h] - need
		}
	}

	return v
}

// Feasible reports whether a selection respects every hourly cap and frozen bound
func (m *Model) Feasible(selection []int) bool {
	if len(selection) != len(m.Employees) {
		return false
	}
	v := m.Evaluate(selection)
	for h, workers := range v.Workers {
		if workers > m.Config.MaxWorkers[h] {
			return false
		}
	}
	for _, b := range m.Bounds {
		if v.Get(b.Objective) > b.Value {
			return false
		}
	}
	return true
}

// Assignment converts a selection into the employee to shifts mapping
func (m *Model) Assignment(selection []int) model.Assignment {
	result := make(model.Assignment, len(m.Employees))
	for i, ec := range m.Employees {
		result[i] = model.EmployeeAssignment{
			EmployeeID: ec.Employee.ID,
			Shifts:     slices.Clone(ec.Choices[selection[i]].Shifts),
		}
	}
	return result
}

// Unscheduled returns a selection where nobody works. It always satisfies the
// hourly caps because they are non-negative.
func (m *Model) Unscheduled() []int {
	selection := make([]int, len(m.Employees))
	for i, ec := range m.Employees {
		selection[i] = len(ec.Choices) - 1
	}
	return selection
}
