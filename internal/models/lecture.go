package models

import "time"

// ScheduleStatus is the lifecycle state of an occurrence relative to a clock.
type ScheduleStatus string

const (
	ScheduleUpcoming  ScheduleStatus = "UPCOMING"
	ScheduleActive    ScheduleStatus = "ACTIVE"
	ScheduleCompleted ScheduleStatus = "COMPLETED"
)

// LiveLecture is a recurring live class owned by an instructor.
type LiveLecture struct {
	ID              string            `db:"id" json:"id"`
	InstructorID    string            `db:"instructor_id" json:"instructor_id"`
	Title           string            `db:"title" json:"title"`
	Content         string            `db:"content" json:"content"`
	MaxParticipants int               `db:"max_participants" json:"max_participants"`
	IsOnAir         bool              `db:"is_on_air" json:"is_on_air"`
	IsDeleted       bool              `db:"is_deleted" json:"is_deleted"`
	DeletedAt       *time.Time        `db:"deleted_at" json:"deleted_at,omitempty"`
	Version         int64             `db:"version" json:"version"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
	Schedules       []LectureSchedule `db:"-" json:"schedules"`
}

// IsActive reports whether the lecture is broadcasting or inside one of its occurrences.
func (l *LiveLecture) IsActive(now time.Time) bool {
	if l.IsOnAir {
		return true
	}
	for _, s := range l.Schedules {
		if s.Status(now) == ScheduleActive {
			return true
		}
	}
	return false
}

// ScheduleIDs lists the ids of the attached occurrences in order.
func (l *LiveLecture) ScheduleIDs() []string {
	ids := make([]string, 0, len(l.Schedules))
	for _, s := range l.Schedules {
		ids = append(ids, s.ID)
	}
	return ids
}

// LectureSchedule is one concrete occurrence of a lecture.
type LectureSchedule struct {
	ID        string    `db:"id" json:"id"`
	LectureID string    `db:"lecture_id" json:"lecture_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}

// Status derives the occurrence state at now. Both bounds count as active.
func (s LectureSchedule) Status(now time.Time) ScheduleStatus {
	switch {
	case now.Before(s.StartTime):
		return ScheduleUpcoming
	case now.After(s.EndTime):
		return ScheduleCompleted
	default:
		return ScheduleActive
	}
}

// LectureFeedItem is one occurrence row joined with its lecture and instructor,
// used by the home and history feeds.
type LectureFeedItem struct {
	ScheduleID           string    `db:"schedule_id"`
	LectureID            string    `db:"lecture_id"`
	InstructorID         string    `db:"instructor_id"`
	Nickname             string    `db:"nickname"`
	ProfileImageURL      string    `db:"profile_image_url"`
	ProfileImageURLSmall string    `db:"profile_image_url_small"`
	Title                string    `db:"title"`
	Content              string    `db:"content"`
	MaxParticipants      int       `db:"max_participants"`
	IsOnAir              bool      `db:"is_on_air"`
	StartTime            time.Time `db:"start_time"`
	EndTime              time.Time `db:"end_time"`
}

// ScheduleEnrollmentCount pairs an occurrence with its enrollment count.
type ScheduleEnrollmentCount struct {
	ScheduleID string `db:"schedule_id"`
	Count      int    `db:"count"`
}
