package models

import "time"

// LectureEventType names an outbound lecture notification.
type LectureEventType string

const (
	EventScheduleChanged LectureEventType = "lecture.schedule.changed"
	EventLectureCanceled LectureEventType = "lecture.cancelled"
)

// EventSchedule is the wire form of an occurrence inside an event.
type EventSchedule struct {
	ID        string `json:"id"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
}

// LectureEvent is published to students affected by a lecture mutation.
type LectureEvent struct {
	ID           string           `json:"id"`
	Type         LectureEventType `json:"type"`
	LectureID    string           `json:"lecture_id"`
	LectureTitle string           `json:"lecture_title"`
	UserIDs      []string         `json:"user_ids"`
	OldSchedules []EventSchedule  `json:"old_schedules,omitempty"`
	NewSchedule  *EventSchedule   `json:"new_schedule,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}
