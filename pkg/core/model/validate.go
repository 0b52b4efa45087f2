package model

import "slices"

// Validate checks the configuration before any component uses it.
// The soft minimum may exceed the hard maximum; that is not an error.
func (c Config) Validate() error {
	if c.Day.Hours <= 0 {
		return NewConfigurationError("day_hours", "day must have at least one hour, got %d", c.Day.Hours)
	}
	if c.Day.Hours > MaxDayHours {
		return NewConfigurationError("day_hours", "day cannot exceed %d hours, got %d", MaxDayHours, c.Day.Hours)
	}
	if c.Day.StartHour < 0 || c.Day.StartHour > 23 {
		return NewConfigurationError("day_start_hour", "must be between 0 and 23, got %d", c.Day.StartHour)
	}
	if len(c.ShiftDurations) == 0 {
		return NewConfigurationError("shift_durations", "at least one shift duration is required")
	}
	fits := false
	for _, d := range c.ShiftDurations {
		if d <= 0 {
			return NewConfigurationError("shift_durations", "duration must be positive, got %d", d)
		}
		if d <= c.Day.Hours {
			fits = true
		}
	}
	if !fits {
		return NewConfigurationError("shift_durations", "no duration fits in a %d hour day", c.Day.Hours)
	}
	if len(c.MinWorkers) != c.Day.Hours {
		return NewConfigurationError("min_workers_per_hour", "expected %d values, got %d", c.Day.Hours, len(c.MinWorkers))
	}
	if len(c.MaxWorkers) != c.Day.Hours {
		return NewConfigurationError("max_workers_per_hour", "expected %d values, got %d", c.Day.Hours, len(c.MaxWorkers))
	}
	for h, v := range c.MinWorkers {
		if v < 0 {
			return NewConfigurationError("min_workers_per_hour", "hour %d is negative (%d)", h, v)
		}
	}
	for h, v := range c.MaxWorkers {
		if v < 0 {
			return NewConfigurationError("max_workers_per_hour", "hour %d is negative (%d)", h, v)
		}
	}
	if c.MaxShiftsPerEmployee < 1 {
		return NewConfigurationError("max_shifts_per_employee", "must be at least 1, got %d", c.MaxShiftsPerEmployee)
	}
	return nil
}

// ValidateEmployees rejects empty or duplicate employee IDs
func ValidateEmployees(employees []Employee) error {
	seen := make(map[string]bool, len(employees))
	for i, e := range employees {
		if e.ID == "" {
			return NewConfigurationError("employees", "employee %d has an empty id", i)
		}
		if seen[e.ID] {
			return NewConfigurationError("employees", "duplicate employee id %q", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate a solve's inputs
func (c Config) Clone() Config {
	return Config{
		Day:                  c.Day,
		ShiftDurations:       slices.Clone(c.ShiftDurations),
		MinWorkers:           slices.Clone(c.MinWorkers),
		MaxWorkers:           slices.Clone(c.MaxWorkers),
		MaxShiftsPerEmployee: c.MaxShiftsPerEmployee,
	}
}
