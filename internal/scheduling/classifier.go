package scheduling

import (
	"time"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
)

// Partition splits a lecture's occurrences around a point in time.
type Partition struct {
	// Past holds completed occurrences.
	Past []models.LectureSchedule
	// Future holds upcoming and active occurrences.
	Future []models.LectureSchedule
}

// Classify partitions schedules at now, keeping input order in both halves.
func Classify(schedules []models.LectureSchedule, now time.Time) Partition {
	var p Partition
	for _, s := range schedules {
		if s.Status(now) == models.ScheduleCompleted {
			p.Past = append(p.Past, s)
			continue
		}
		p.Future = append(p.Future, s)
	}
	return p
}

// HasActive reports whether any occurrence is running at now.
func HasActive(schedules []models.LectureSchedule, now time.Time) bool {
	for _, s := range schedules {
		if s.Status(now) == models.ScheduleActive {
			return true
		}
	}
	return false
}

// HasCompleted reports whether any occurrence ended before now.
func HasCompleted(schedules []models.LectureSchedule, now time.Time) bool {
	for _, s := range schedules {
		if s.Status(now) == models.ScheduleCompleted {
			return true
		}
	}
	return false
}
