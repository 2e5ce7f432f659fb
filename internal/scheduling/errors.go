// Package scheduling expands weekly recurrences into lecture occurrences and
// decides where students go when occurrences are replaced.
package scheduling

import "errors"

var (
	// ErrInvalidRange reports an inverted date range or a non-positive time window.
	ErrInvalidRange = errors.New("scheduling: invalid date or time range")
	// ErrInvalidWeekday reports an empty or malformed weekday set.
	ErrInvalidWeekday = errors.New("scheduling: invalid weekday")
	// ErrNoAvailableSchedule reports that no candidate occurrence exists for a student.
	ErrNoAvailableSchedule = errors.New("scheduling: no available schedule")
)
