package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLectureScheduleStatusBounds(t *testing.T) {
	start := time.Date(2024, 12, 4, 5, 0, 0, 0, time.UTC)
	s := LectureSchedule{StartTime: start, EndTime: start.Add(time.Hour)}

	assert.Equal(t, ScheduleUpcoming, s.Status(start.Add(-time.Second)))
	assert.Equal(t, ScheduleActive, s.Status(start))
	assert.Equal(t, ScheduleActive, s.Status(start.Add(time.Hour)))
	assert.Equal(t, ScheduleCompleted, s.Status(start.Add(time.Hour+time.Nanosecond)))
}

func TestLiveLectureIsActive(t *testing.T) {
	now := time.Date(2024, 12, 4, 5, 30, 0, 0, time.UTC)
	lecture := &LiveLecture{Schedules: []LectureSchedule{
		{ID: "past", StartTime: now.Add(-48 * time.Hour), EndTime: now.Add(-47 * time.Hour)},
		{ID: "next", StartTime: now.Add(24 * time.Hour), EndTime: now.Add(25 * time.Hour)},
	}}
	assert.False(t, lecture.IsActive(now))
	assert.Equal(t, []string{"past", "next"}, lecture.ScheduleIDs())

	lecture.IsOnAir = true
	assert.True(t, lecture.IsActive(now))

	lecture.IsOnAir = false
	lecture.Schedules = append(lecture.Schedules, LectureSchedule{StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Minute)})
	assert.True(t, lecture.IsActive(now))
}
