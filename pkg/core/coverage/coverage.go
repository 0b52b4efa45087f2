package coverage

import (
	"github.com/jakechorley/shift-planner/pkg/core/model"
)

// Report computes the per-hour coverage table for an assignment.
//
// For every hour: workers is the number of assigned shifts covering it and
// understaff is max(0, min - workers). If any hour has more workers than
// its hard cap the table is still returned, together with a
// *model.ConsistencyError, because an optimizer result must never do that.
func Report(cfg model.Config, a model.Assignment) (model.Coverage, error) {
	hours := cfg.Day.Hours
	if len(cfg.MinWorkers) != hours || len(cfg.MaxWorkers) != hours {
		return nil, model.NewConfigurationError("workers_per_hour", "limits must have one value per hour (%d)", hours)
	}

	workers := make([]int, hours)
	for _, ea := range a {
		for _, shift := range ea.Shifts {
			for h := max(shift.Start, 0); h < min(shift.End(), hours); h++ {
				workers[h]++
			}
		}
	}

	table := make(model.Coverage, hours)
	var violations []model.HourViolation

	for h := 0; h < hours; h++ {
		row := model.CoverageRow{
			Hour:        h,
			Workers:     workers[h],
			MinRequired: cfg.MinWorkers[h],
			MaxAllowed:  cfg.MaxWorkers[h],
		}
		if row.Workers < row.MinRequired {
			row.Understaff = row.MinRequired - row.Workers
		}
		if row.Workers > row.MaxAllowed {
			violations = append(violations, model.HourViolation{
				Hour:       h,
				Workers:    row.Workers,
				MaxAllowed: row.MaxAllowed,
			})
		}
		table[h] = row
	}

	if len(violations) > 0 {
		return table, &model.ConsistencyError{Violations: violations}
	}

	return table, nil
}

// UnderstaffedHours returns the rows with a shortfall, in hour order
func UnderstaffedHours(table model.Coverage) []model.CoverageRow {
	rows := make([]model.CoverageRow, 0)
	for _, row := range table {
		if row.Understaff > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
