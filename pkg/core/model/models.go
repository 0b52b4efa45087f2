package model

import (
	"fmt"
	"slices"
)

// MaxDayHours is the longest operating day the engine accepts.
// Hour coverage is tracked as a 64-bit mask.
const MaxDayHours = 64

// Shift labels
const (
	LabelOpening = "Opening"
	LabelMid     = "Mid"
	LabelClosing = "Closing"
)

// Day is the operating day as a run of contiguous hour blocks.
// Index 0 is the block starting at StartHour on the wall clock.
type Day struct {
	StartHour int
	Hours     int
}

// Contains reports whether hour is a valid block index for the day
func (d Day) Contains(hour int) bool {
	return hour >= 0 && hour < d.Hours
}

// ClockHour returns the wall-clock hour (0-23) at which block hour starts
func (d Day) ClockHour(hour int) int {
	return (d.StartHour + hour) % 24
}

// IndexOf converts a wall-clock hour to a block index.
// The second return value is false when the clock hour falls outside the day.
func (d Day) IndexOf(clockHour int) (int, bool) {
	idx := ((clockHour-d.StartHour)%24 + 24) % 24
	if !d.Contains(idx) {
		return 0, false
	}
	return idx, true
}

// Shift is a contiguous block of hours [Start, Start+Duration)
type Shift struct {
	Start    int
	Duration int
}

// End returns the first hour after the shift
func (s Shift) End() int {
	return s.Start + s.Duration
}

// Covers reports whether the shift is worked during hour
func (s Shift) Covers(hour int) bool {
	return hour >= s.Start && hour < s.End()
}

// Overlaps reports whether two shifts share at least one hour
func (s Shift) Overlaps(other Shift) bool {
	return s.Start < other.End() && other.Start < s.End()
}

// Fits reports whether the shift lies fully inside the day
func (s Shift) Fits(day Day) bool {
	return s.Start >= 0 && s.Duration > 0 && s.End() <= day.Hours
}

// Label names the shift by its position in the day
func (s Shift) Label(day Day) string {
	switch {
	case s.Start == 0:
		return LabelOpening
	case s.End() == day.Hours:
		return LabelClosing
	default:
		return LabelMid
	}
}

// Mask returns the hours covered by the shift as a bitmask
func (s Shift) Mask() uint64 {
	var m uint64
	for h := s.Start; h < s.End(); h++ {
		m |= 1 << uint(h)
	}
	return m
}

func (s Shift) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End())
}

// Employee is a person who can be scheduled.
// Unavailable holds hour indices of the day the employee cannot work.
type Employee struct {
	ID          string
	Unavailable []int
}

// IsUnavailable returns true if the employee cannot work during hour
func (e Employee) IsUnavailable(hour int) bool {
	return slices.Contains(e.Unavailable, hour)
}

// Config is the immutable configuration of a single solve.
// MinWorkers and MaxWorkers hold one entry per hour of the day.
type Config struct {
	Day                  Day
	ShiftDurations       []int
	MinWorkers           []int
	MaxWorkers           []int
	MaxShiftsPerEmployee int
}

// DefaultConfig mirrors the standard 12 hour day with 4 and 5 hour shifts
func DefaultConfig() Config {
	day := Day{StartHour: 8, Hours: 12}
	return Config{
		Day:                  day,
		ShiftDurations:       []int{4, 5},
		MinWorkers:           Uniform(day.Hours, 1),
		MaxWorkers:           Uniform(day.Hours, 2),
		MaxShiftsPerEmployee: 1,
	}
}

// Uniform returns a per-hour limit with the same value for every hour
func Uniform(hours, value int) []int {
	limits := make([]int, hours)
	for i := range limits {
		limits[i] = value
	}
	return limits
}

// EmployeeAssignment holds the shifts chosen for one employee.
// An empty Shifts slice means the employee is unscheduled.
type EmployeeAssignment struct {
	EmployeeID string
	Shifts     []Shift
}

// Hours returns the total hours worked by the employee
func (ea EmployeeAssignment) Hours() int {
	total := 0
	for _, s := range ea.Shifts {
		total += s.Duration
	}
	return total
}

// IsScheduled returns true if the employee works at least one shift
func (ea EmployeeAssignment) IsScheduled() bool {
	return len(ea.Shifts) > 0
}

// Assignment maps every employee (in input order) to their shifts
type Assignment []EmployeeAssignment

// ShiftsFor returns the shifts assigned to the given employee
func (a Assignment) ShiftsFor(employeeID string) []Shift {
	for _, ea := range a {
		if ea.EmployeeID == employeeID {
			return ea.Shifts
		}
	}
	return nil
}

// WorkersAt counts the employees working during hour
func (a Assignment) WorkersAt(hour int) int {
	count := 0
	for _, ea := range a {
		for _, s := range ea.Shifts {
			if s.Covers(hour) {
				count++
			}
		}
	}
	return count
}

// CoverageRow is the staffing outcome for one hour of the day
type CoverageRow struct {
	Hour        int
	Workers     int
	MinRequired int
	MaxAllowed  int
	Understaff  int
}

// Coverage is the per-hour table for a whole day
type Coverage []CoverageRow

// TotalUnderstaff sums the shortfall across all hours
func (c Coverage) TotalUnderstaff() int {
	total := 0
	for _, row := range c {
		total += row.Understaff
	}
	return total
}

// TotalOverCoverage sums the workers scheduled above the soft minimum
func (c Coverage) TotalOverCoverage() int {
	total := 0
	for _, row := range c {
		if row.Workers > row.MinRequired {
			total += row.Workers - row.MinRequired
		}
	}
	return total
}
