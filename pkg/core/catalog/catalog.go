package catalog

import (
	"slices"

	"github.com/jakechorley/shift-planner/pkg/core/model"
)

// Generate enumerates every shift of an allowed duration that fits in the day.
//
// Shifts are ordered by start hour, then by duration. Each (start, duration)
// pair appears once even if the duration is listed twice in the configuration.
//
// Durations longer than the day produce no shifts. Returns a
// ConfigurationError if a duration is not positive or if no shift fits at all.
func Generate(cfg model.Config) ([]model.Shift, error) {
	day := cfg.Day
	if day.Hours <= 0 {
		return nil, model.NewConfigurationError("day_hours", "day must have at least one hour, got %d", day.Hours)
	}
	if len(cfg.ShiftDurations) == 0 {
		return nil, model.NewConfigurationError("shift_durations", "at least one shift duration is required")
	}

	durations := slices.Clone(cfg.ShiftDurations)
	slices.Sort(durations)
	durations = slices.Compact(durations)

	for _, d := range durations {
		if d <= 0 {
			return nil, model.NewConfigurationError("shift_durations", "duration must be positive, got %d", d)
		}
	}

	shifts := make([]model.Shift, 0)
	for start := 0; start < day.Hours; start++ {
		for _, d := range durations {
			shift := model.Shift{Start: start, Duration: d}
			if shift.Fits(day) {
				shifts = append(shifts, shift)
			}
		}
	}

	if len(shifts) == 0 {
		return nil, model.NewConfigurationError("shift_durations", "no shift fits in a %d hour day", day.Hours)
	}

	return shifts, nil
}
