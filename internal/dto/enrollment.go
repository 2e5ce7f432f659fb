package dto

// EnrollmentResponse confirms a student's seat on an occurrence.
type EnrollmentResponse struct {
	EnrollmentID string `json:"enrollmentId"`
	ScheduleID   string `json:"scheduleId"`
	LiveID       string `json:"liveId"`
	Completed    bool   `json:"completed"`
	CreatedAt    int64  `json:"createdAt"`
}
