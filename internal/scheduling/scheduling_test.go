package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
	"github.com/noah-isme/yoga-lecture-api/pkg/timeutil"
)

func newConverter(t *testing.T) *timeutil.Converter {
	t.Helper()
	conv, err := timeutil.NewConverter("Asia/Seoul")
	require.NoError(t, err)
	return conv
}

func slot(conv *timeutil.Converter, year int, month time.Month, day, hour, minute int) models.LectureSchedule {
	start := conv.At(timeutil.Date{Year: year, Month: month, Day: day}, timeutil.NewTimeOfDay(hour, minute, 0))
	return models.LectureSchedule{ID: start.Format("0102-1504"), StartTime: start.UTC(), EndTime: start.Add(time.Hour).UTC()}
}

func december(day int) timeutil.Date {
	return timeutil.Date{Year: 2024, Month: time.December, Day: day}
}

func TestParseWeekdays(t *testing.T) {
	set, err := ParseWeekdays(" FRI, MON ,WED,MON")
	require.NoError(t, err)
	assert.Equal(t, "MON,WED,FRI", set.String())
	assert.True(t, set.Contains(time.Friday))
	assert.False(t, set.Contains(time.Sunday))

	_, err = ParseWeekdays("")
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	_, err = ParseWeekdays("MON,FUNDAY")
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	_, err = ParseWeekdays("MON,")
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	for _, raw := range []string{"mon", "Wed", "MON,fri"} {
		_, err = ParseWeekdays(raw)
		assert.ErrorIs(t, err, ErrInvalidWeekday, raw)
	}
}

func TestWeekdaySetStringIsCanonical(t *testing.T) {
	set := NewWeekdaySet(time.Sunday, time.Saturday, time.Monday)
	assert.Equal(t, "MON,SAT,SUN", set.String())
	assert.Equal(t, "SUN", WeekdayCode(time.Sunday))
	assert.True(t, WeekdaySet(0).Empty())
}

func TestGenerateDecemberMonWedFri(t *testing.T) {
	conv := newConverter(t)
	rec := Recurrence{
		StartDate: december(1),
		EndDate:   december(31),
		StartTime: timeutil.NewTimeOfDay(14, 0, 0),
		EndTime:   timeutil.NewTimeOfDay(15, 0, 0),
		Days:      NewWeekdaySet(time.Monday, time.Wednesday, time.Friday),
	}

	schedules, err := Generate(rec, conv)
	require.NoError(t, err)

	var days []int
	for i, s := range schedules {
		date := conv.DateOf(s.StartTime)
		days = append(days, date.Day)
		assert.Equal(t, timeutil.NewTimeOfDay(14, 0, 0), conv.TimeOfDayOf(s.StartTime))
		assert.Equal(t, timeutil.NewTimeOfDay(15, 0, 0), conv.TimeOfDayOf(s.EndTime))
		assert.Equal(t, time.UTC, s.StartTime.Location())
		assert.Empty(t, s.ID)
		if i > 0 {
			assert.True(t, schedules[i-1].StartTime.Before(s.StartTime))
		}
	}
	assert.Equal(t, []int{2, 4, 6, 9, 11, 13, 16, 18, 20, 23, 25, 27, 30}, days)
}

func TestGenerateSingleDayRange(t *testing.T) {
	conv := newConverter(t)
	rec := Recurrence{
		StartDate: december(4),
		EndDate:   december(4),
		StartTime: timeutil.NewTimeOfDay(9, 0, 0),
		EndTime:   timeutil.NewTimeOfDay(10, 0, 0),
		Days:      NewWeekdaySet(time.Wednesday),
	}
	schedules, err := Generate(rec, conv)
	require.NoError(t, err)
	require.Len(t, schedules, 1)

	rec.Days = NewWeekdaySet(time.Thursday)
	schedules, err = Generate(rec, conv)
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestGenerateRejectsBadRanges(t *testing.T) {
	conv := newConverter(t)
	base := Recurrence{
		StartDate: december(10),
		EndDate:   december(20),
		StartTime: timeutil.NewTimeOfDay(9, 0, 0),
		EndTime:   timeutil.NewTimeOfDay(10, 0, 0),
		Days:      NewWeekdaySet(time.Monday),
	}

	inverted := base
	inverted.StartDate, inverted.EndDate = base.EndDate, base.StartDate
	_, err := Generate(inverted, conv)
	assert.ErrorIs(t, err, ErrInvalidRange)

	zeroWindow := base
	zeroWindow.EndTime = base.StartTime
	_, err = Generate(zeroWindow, conv)
	assert.ErrorIs(t, err, ErrInvalidRange)

	noDays := base
	noDays.Days = 0
	_, err = Generate(noDays, conv)
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}

func TestGenerateAfterDropsStartedOccurrences(t *testing.T) {
	conv := newConverter(t)
	rec := Recurrence{
		StartDate: december(2),
		EndDate:   december(6),
		StartTime: timeutil.NewTimeOfDay(14, 0, 0),
		EndTime:   timeutil.NewTimeOfDay(15, 0, 0),
		Days:      NewWeekdaySet(time.Monday, time.Wednesday, time.Friday),
	}
	now := conv.At(december(4), timeutil.NewTimeOfDay(14, 0, 0))

	schedules, err := GenerateAfter(rec, conv, now)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, 6, conv.DateOf(schedules[0].StartTime).Day)
}

func TestClassifyPartitionsAndIsIdempotent(t *testing.T) {
	conv := newConverter(t)
	schedules := []models.LectureSchedule{
		slot(conv, 2024, time.December, 2, 14, 0),
		slot(conv, 2024, time.December, 4, 14, 0),
		slot(conv, 2024, time.December, 6, 14, 0),
	}
	now := schedules[1].StartTime.Add(30 * time.Minute)

	p := Classify(schedules, now)
	assert.Equal(t, schedules[:1], p.Past)
	assert.Equal(t, schedules[1:], p.Future)
	assert.Len(t, append(p.Past, p.Future...), len(schedules))

	again := Classify(append(append([]models.LectureSchedule{}, p.Past...), p.Future...), now)
	assert.Equal(t, p, again)

	assert.True(t, HasActive(schedules, now))
	assert.True(t, HasCompleted(schedules, now))
	assert.False(t, HasActive(schedules, schedules[2].EndTime.Add(time.Minute)))
}

func TestNearestSlotPrefersSameWeekday(t *testing.T) {
	conv := newConverter(t)
	old := slot(conv, 2024, time.December, 4, 14, 0)
	wed := slot(conv, 2024, time.December, 11, 15, 0)
	thu := slot(conv, 2024, time.December, 12, 14, 0)

	got, err := NearestSlot(old, []models.LectureSchedule{thu, wed}, conv)
	require.NoError(t, err)
	assert.Equal(t, wed, got)
}

func TestNearestSlotFallsBackToAnyDay(t *testing.T) {
	conv := newConverter(t)
	old := slot(conv, 2024, time.December, 4, 14, 0)
	thu := slot(conv, 2024, time.December, 12, 10, 0)
	fri := slot(conv, 2024, time.December, 13, 16, 0)

	got, err := NearestSlot(old, []models.LectureSchedule{thu, fri}, conv)
	require.NoError(t, err)
	assert.Equal(t, fri, got)
}

func TestNearestSlotTieKeepsFirstCandidate(t *testing.T) {
	conv := newConverter(t)
	old := slot(conv, 2024, time.December, 4, 14, 0)
	early := slot(conv, 2024, time.December, 11, 13, 0)
	late := slot(conv, 2024, time.December, 18, 15, 0)

	got, err := NearestSlot(old, []models.LectureSchedule{early, late}, conv)
	require.NoError(t, err)
	assert.Equal(t, early, got)

	got, err = NearestSlot(old, []models.LectureSchedule{late, early}, conv)
	require.NoError(t, err)
	assert.Equal(t, late, got)
}

func TestNearestSlotWithoutCandidates(t *testing.T) {
	conv := newConverter(t)
	_, err := NearestSlot(slot(conv, 2024, time.December, 4, 14, 0), nil, conv)
	assert.ErrorIs(t, err, ErrNoAvailableSchedule)
}

func TestPlanRedistribution(t *testing.T) {
	conv := newConverter(t)
	oldMon := slot(conv, 2024, time.December, 9, 14, 0)
	oldWed := slot(conv, 2024, time.December, 11, 14, 0)
	oldFri := slot(conv, 2024, time.December, 13, 14, 0)
	newTue := slot(conv, 2024, time.December, 10, 18, 0)
	newWed := slot(conv, 2024, time.December, 18, 18, 0)

	snapshot := map[string][]models.Enrollment{
		oldMon.ID: {{UserID: "u1"}, {UserID: "u2"}},
		oldWed.ID: {{UserID: "u2"}, {UserID: "u3"}},
	}

	plan, err := PlanRedistribution([]models.LectureSchedule{oldMon, oldWed, oldFri}, snapshot, []models.LectureSchedule{newTue, newWed}, conv)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, oldMon, plan[0].From)
	assert.Equal(t, newTue, plan[0].To)
	assert.Equal(t, []string{"u1", "u2"}, plan[0].UserIDs)

	assert.Equal(t, oldWed, plan[1].From)
	assert.Equal(t, newWed, plan[1].To)
	assert.Equal(t, []string{"u2", "u3"}, plan[1].UserIDs)
}

func TestPlanRedistributionDeduplicatesPerTarget(t *testing.T) {
	conv := newConverter(t)
	oldA := slot(conv, 2024, time.December, 9, 14, 0)
	oldB := slot(conv, 2024, time.December, 16, 14, 0)
	target := slot(conv, 2024, time.December, 23, 14, 0)

	snapshot := map[string][]models.Enrollment{
		oldA.ID: {{UserID: "u1"}},
		oldB.ID: {{UserID: "u1"}, {UserID: "u2"}},
	}

	plan, err := PlanRedistribution([]models.LectureSchedule{oldA, oldB}, snapshot, []models.LectureSchedule{target}, conv)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, []string{"u1"}, plan[0].UserIDs)
	assert.Equal(t, []string{"u2"}, plan[1].UserIDs)
}

func TestPlanRedistributionFailsWithoutCandidates(t *testing.T) {
	conv := newConverter(t)
	old := slot(conv, 2024, time.December, 9, 14, 0)

	plan, err := PlanRedistribution([]models.LectureSchedule{old}, map[string][]models.Enrollment{old.ID: {{UserID: "u1"}}}, nil, conv)
	assert.ErrorIs(t, err, ErrNoAvailableSchedule)
	assert.Nil(t, plan)

	plan, err = PlanRedistribution([]models.LectureSchedule{old}, nil, nil, conv)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestDerivePattern(t *testing.T) {
	conv := newConverter(t)
	rec := Recurrence{
		StartDate: december(2),
		EndDate:   december(13),
		StartTime: timeutil.NewTimeOfDay(7, 30, 0),
		EndTime:   timeutil.NewTimeOfDay(8, 45, 0),
		Days:      NewWeekdaySet(time.Tuesday, time.Thursday),
	}
	schedules, err := Generate(rec, conv)
	require.NoError(t, err)

	got, ok := DerivePattern(schedules, conv)
	require.True(t, ok)
	assert.Equal(t, december(3), got.StartDate)
	assert.Equal(t, december(12), got.EndDate)
	assert.Equal(t, rec.StartTime, got.StartTime)
	assert.Equal(t, rec.EndTime, got.EndTime)
	assert.Equal(t, "TUE,THU", got.Days.String())

	_, ok = DerivePattern(nil, conv)
	assert.False(t, ok)
}

func TestCurrentPatternIgnoresFinishedWeekdays(t *testing.T) {
	conv := newConverter(t)
	at := func(day, hour int) models.LectureSchedule {
		start := conv.At(december(day), timeutil.NewTimeOfDay(hour, 0, 0))
		return models.LectureSchedule{StartTime: start, EndTime: start.Add(time.Hour)}
	}
	schedules := []models.LectureSchedule{at(2, 9), at(9, 9), at(17, 14), at(24, 14)}
	now := conv.At(december(11), timeutil.NewTimeOfDay(12, 0, 0))

	got, ok := CurrentPattern(schedules, now, conv)
	require.True(t, ok)
	assert.Equal(t, "TUE", got.Days.String())
	assert.Equal(t, timeutil.NewTimeOfDay(14, 0, 0), got.StartTime)
	assert.Equal(t, timeutil.NewTimeOfDay(15, 0, 0), got.EndTime)
	assert.Equal(t, december(2), got.StartDate)
	assert.Equal(t, december(24), got.EndDate)

	after := conv.At(december(30), timeutil.NewTimeOfDay(0, 0, 0))
	got, ok = CurrentPattern(schedules, after, conv)
	require.True(t, ok)
	assert.Equal(t, "MON,TUE", got.Days.String())

	_, ok = CurrentPattern(nil, now, conv)
	assert.False(t, ok)
}
