package model

import "fmt"

// FormatHour converts a 24h clock hour to a 12h time string such as "8:00 AM"
func FormatHour(hour int) string {
	hour = ((hour % 24) + 24) % 24
	switch {
	case hour == 0:
		return "12:00 AM"
	case hour < 12:
		return fmt.Sprintf("%d:00 AM", hour)
	case hour == 12:
		return "12:00 PM"
	default:
		return fmt.Sprintf("%d:00 PM", hour-12)
	}
}

// FormatShift renders a shift on the wall clock, e.g. "8:00 AM – 12:00 PM"
func FormatShift(day Day, s Shift) string {
	return fmt.Sprintf("%s – %s", FormatHour(day.ClockHour(s.Start)), FormatHour(day.StartHour+s.End()))
}
