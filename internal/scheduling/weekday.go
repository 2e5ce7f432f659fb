package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a set of days of the week keyed by time.Weekday bit.
type WeekdaySet uint8

// weekdayCodes is indexed by time.Weekday.
var weekdayCodes = [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// canonicalOrder lists weekdays Monday first.
var canonicalOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// WeekdayCode returns the three-letter code for d.
func WeekdayCode(d time.Weekday) string {
	return weekdayCodes[d]
}

// ParseWeekday maps a code such as "WED" to its weekday. Codes are
// upper case; surrounding spaces are ignored.
func ParseWeekday(code string) (time.Weekday, error) {
	switch strings.TrimSpace(code) {
	case "SUN":
		return time.Sunday, nil
	case "MON":
		return time.Monday, nil
	case "TUE":
		return time.Tuesday, nil
	case "WED":
		return time.Wednesday, nil
	case "THU":
		return time.Thursday, nil
	case "FRI":
		return time.Friday, nil
	case "SAT":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, code)
}

// ParseWeekdays reads a comma separated list like "MON,WED,FRI".
// Duplicates collapse; an empty list or an unknown token is an error.
func ParseWeekdays(raw string) (WeekdaySet, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%w: empty weekday list", ErrInvalidWeekday)
	}
	var set WeekdaySet
	for _, token := range strings.Split(raw, ",") {
		d, err := ParseWeekday(token)
		if err != nil {
			return 0, err
		}
		set = set.Add(d)
	}
	return set, nil
}

// NewWeekdaySet builds a set from explicit days.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, d := range days {
		set = set.Add(d)
	}
	return set
}

// Add returns s with d included.
func (s WeekdaySet) Add(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d)
}

// Contains reports whether d is in s.
func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// Empty reports whether s has no days.
func (s WeekdaySet) Empty() bool {
	return s&0x7f == 0
}

// Days lists the members Monday first.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for _, d := range canonicalOrder {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the set as comma separated codes, Monday first.
func (s WeekdaySet) String() string {
	codes := make([]string, 0, 7)
	for _, d := range s.Days() {
		codes = append(codes, weekdayCodes[d])
	}
	return strings.Join(codes, ",")
}
