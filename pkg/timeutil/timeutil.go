// Package timeutil converts between epoch milliseconds and civil calendar
// values in a single configured time zone.
package timeutil

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultZone is used when no zone is configured.
const DefaultZone = "Asia/Seoul"

// Converter performs all civil-time conversions in one location.
type Converter struct {
	loc *time.Location
}

// NewConverter loads the named IANA zone. An empty name selects DefaultZone.
func NewConverter(zone string) (*Converter, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return &Converter{loc: loc}, nil
}

// NewConverterIn wraps an already loaded location.
func NewConverterIn(loc *time.Location) *Converter {
	if loc == nil {
		loc = time.UTC
	}
	return &Converter{loc: loc}
}

// Location returns the zone used for conversions.
func (c *Converter) Location() *time.Location {
	return c.loc
}

// FromEpochMillis returns the instant ms as a time in the converter's zone.
func (c *Converter) FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).In(c.loc)
}

// ToDate is the calendar date of the instant ms.
func (c *Converter) ToDate(ms int64) Date {
	return c.DateOf(time.UnixMilli(ms))
}

// ToTimeOfDay is the wall-clock time of the instant ms.
func (c *Converter) ToTimeOfDay(ms int64) TimeOfDay {
	return c.TimeOfDayOf(time.UnixMilli(ms))
}

// ToEpochMillis returns t as milliseconds since the Unix epoch.
func (c *Converter) ToEpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// TimeOfDayToEpochMillis encodes a time of day as milliseconds since midnight.
func (c *Converter) TimeOfDayToEpochMillis(tod TimeOfDay) int64 {
	return tod.Milliseconds()
}

// DateOf is the calendar date of t in the converter's zone.
func (c *Converter) DateOf(t time.Time) Date {
	y, m, d := t.In(c.loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// TimeOfDayOf is the wall-clock time of t in the converter's zone.
func (c *Converter) TimeOfDayOf(t time.Time) TimeOfDay {
	local := t.In(c.loc)
	h, m, s := local.Clock()
	return NewTimeOfDay(h, m, s) + TimeOfDay(local.Nanosecond())
}

// Weekday of t in the converter's zone.
func (c *Converter) Weekday(t time.Time) time.Weekday {
	return t.In(c.loc).Weekday()
}

// At combines a date and a time of day into an instant in the converter's zone.
func (c *Converter) At(d Date, tod TimeOfDay) time.Time {
	h, m, s, ns := tod.clock()
	return time.Date(d.Year, d.Month, d.Day, h, m, s, ns, c.loc)
}

// Today is the current calendar date relative to now.
func (c *Converter) Today(now time.Time) Date {
	return c.DateOf(now)
}

// StartOfDay is midnight of d in the converter's zone.
func (c *Converter) StartOfDay(d Date) time.Time {
	return c.At(d, 0)
}
