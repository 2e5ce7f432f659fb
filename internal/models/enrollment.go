package models

import "time"

// Enrollment registers one student for one lecture occurrence.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	ScheduleID string    `db:"schedule_id" json:"schedule_id"`
	Completed  bool      `db:"completed" json:"completed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
