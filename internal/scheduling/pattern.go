package scheduling

import (
	"time"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
	"github.com/noah-isme/yoga-lecture-api/pkg/timeutil"
)

// DerivePattern recovers a recurrence from existing occurrences: the dates of
// the earliest and latest occurrence, the start time of the earliest, the end
// time of the latest and the union of their weekdays. ok is false when there
// are no occurrences.
func DerivePattern(schedules []models.LectureSchedule, conv *timeutil.Converter) (r Recurrence, ok bool) {
	if len(schedules) == 0 {
		return Recurrence{}, false
	}

	first, last := schedules[0], schedules[0]
	for _, s := range schedules[1:] {
		if s.StartTime.Before(first.StartTime) {
			first = s
		}
		if s.StartTime.After(last.StartTime) {
			last = s
		}
	}

	for _, s := range schedules {
		r.Days = r.Days.Add(conv.Weekday(s.StartTime))
	}
	r.StartDate = conv.DateOf(first.StartTime)
	r.EndDate = conv.DateOf(last.StartTime)
	r.StartTime = conv.TimeOfDayOf(first.StartTime)
	r.EndTime = conv.TimeOfDayOf(last.EndTime)
	return r, true
}

// CurrentPattern is the recurrence still in effect at now. The date range
// spans every occurrence; weekdays and times come from the occurrences that
// have not ended, or from all of them when none remain.
func CurrentPattern(schedules []models.LectureSchedule, now time.Time, conv *timeutil.Converter) (Recurrence, bool) {
	r, ok := DerivePattern(schedules, conv)
	if !ok {
		return r, false
	}
	if live, ok := DerivePattern(Classify(schedules, now).Future, conv); ok {
		r.Days = live.Days
		r.StartTime = live.StartTime
		r.EndTime = live.EndTime
	}
	return r, true
}
