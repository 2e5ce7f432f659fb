package timeutil

import (
	"fmt"
	"time"
)

// TimeOfDay is the elapsed wall-clock time since midnight.
type TimeOfDay time.Duration

// NewTimeOfDay builds a time of day from clock fields.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

// TimeOfDayFromMillis reads milliseconds since midnight. Values outside a
// single day wrap around.
func TimeOfDayFromMillis(ms int64) TimeOfDay {
	const day = int64(24 * time.Hour / time.Millisecond)
	ms %= day
	if ms < 0 {
		ms += day
	}
	return TimeOfDay(time.Duration(ms) * time.Millisecond)
}

// ParseTimeOfDay reads HH:MM or HH:MM:SS.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return NewTimeOfDay(t.Clock()), nil
		}
	}
	return 0, fmt.Errorf("parse time of day %q", raw)
}

func (t TimeOfDay) clock() (hour, minute, second, nanos int) {
	d := time.Duration(t)
	hour = int(d / time.Hour)
	d -= time.Duration(hour) * time.Hour
	minute = int(d / time.Minute)
	d -= time.Duration(minute) * time.Minute
	second = int(d / time.Second)
	d -= time.Duration(second) * time.Second
	return hour, minute, second, int(d)
}

// SecondOfDay truncates t to whole seconds since midnight.
func (t TimeOfDay) SecondOfDay() int {
	return int(time.Duration(t) / time.Second)
}

// Milliseconds since midnight.
func (t TimeOfDay) Milliseconds() int64 {
	return time.Duration(t).Milliseconds()
}

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t < o
}

// String renders t as HH:MM, or HH:MM:SS when seconds are set.
func (t TimeOfDay) String() string {
	h, m, s, _ := t.clock()
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
