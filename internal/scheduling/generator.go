package scheduling

import (
	"time"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
	"github.com/noah-isme/yoga-lecture-api/pkg/timeutil"
)

// Recurrence describes a weekly pattern: every listed weekday between two
// dates (inclusive), from StartTime to EndTime local time.
type Recurrence struct {
	StartDate timeutil.Date
	EndDate   timeutil.Date
	StartTime timeutil.TimeOfDay
	EndTime   timeutil.TimeOfDay
	Days      WeekdaySet
}

// Validate checks the recurrence bounds.
func (r Recurrence) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() || r.StartDate.After(r.EndDate) {
		return ErrInvalidRange
	}
	if !r.StartTime.Before(r.EndTime) {
		return ErrInvalidRange
	}
	if r.Days.Empty() {
		return ErrInvalidWeekday
	}
	return nil
}

// Generate expands r into occurrences in ascending order. The result carries
// no ids and no lecture id. Instants are returned in UTC.
func Generate(r Recurrence, conv *timeutil.Converter) ([]models.LectureSchedule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var schedules []models.LectureSchedule
	for d := r.StartDate; !d.After(r.EndDate); d = d.AddDays(1) {
		if !r.Days.Contains(d.Weekday()) {
			continue
		}
		schedules = append(schedules, models.LectureSchedule{
			StartTime: conv.At(d, r.StartTime).UTC(),
			EndTime:   conv.At(d, r.EndTime).UTC(),
		})
	}
	return schedules, nil
}

// GenerateAfter is Generate restricted to occurrences starting strictly after now.
func GenerateAfter(r Recurrence, conv *timeutil.Converter, now time.Time) ([]models.LectureSchedule, error) {
	all, err := Generate(r, conv)
	if err != nil {
		return nil, err
	}
	upcoming := all[:0]
	for _, s := range all {
		if s.StartTime.After(now) {
			upcoming = append(upcoming, s)
		}
	}
	return upcoming, nil
}
