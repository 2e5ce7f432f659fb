package dto

// CreateLiveLectureRequest creates a lecture with a weekly recurrence.
// Dates are epoch milliseconds; times are epoch milliseconds or milliseconds
// since local midnight.
type CreateLiveLectureRequest struct {
	Title           string `json:"liveTitle" validate:"required,max=30"`
	Content         string `json:"liveContent" validate:"max=300"`
	MaxParticipants int    `json:"maxLiveNum" validate:"required,min=1"`
	StartDate       *int64 `json:"startDate" validate:"required"`
	EndDate         *int64 `json:"endDate" validate:"required"`
	StartTime       *int64 `json:"startTime" validate:"required"`
	EndTime         *int64 `json:"endTime" validate:"required"`
	AvailableDay    string `json:"availableDay" validate:"required"`
}

// UpdateLiveLectureRequest changes any subset of a lecture. Supplying any of
// the schedule fields rebuilds the future occurrences.
type UpdateLiveLectureRequest struct {
	Title           *string `json:"liveTitle" validate:"omitempty,max=30"`
	Content         *string `json:"liveContent" validate:"omitempty,max=300"`
	MaxParticipants *int    `json:"maxLiveNum"`
	StartDate       *int64  `json:"startDate"`
	EndDate         *int64  `json:"endDate"`
	StartTime       *int64  `json:"startTime"`
	EndTime         *int64  `json:"endTime"`
	AvailableDay    *string `json:"availableDay"`
}

// ReschedulesOccurrences reports whether any schedule field is present.
func (r UpdateLiveLectureRequest) ReschedulesOccurrences() bool {
	return r.StartDate != nil || r.EndDate != nil || r.StartTime != nil || r.EndTime != nil || r.AvailableDay != nil
}

// SetOnAirRequest toggles the broadcast flag.
type SetOnAirRequest struct {
	OnAir *bool `json:"onAir" validate:"required"`
}

// LectureScheduleResponse is one occurrence in epoch milliseconds.
type LectureScheduleResponse struct {
	ScheduleID  string `json:"scheduleId"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
	LectureDate int64  `json:"lectureDate"`
	LectureDay  string `json:"lectureDay"`
	Status      string `json:"status"`
}

// LiveLectureResponse is the lecture detail. StartDate and EndDate are the
// first start and last end instants; StartTime and EndTime are milliseconds
// since local midnight.
type LiveLectureResponse struct {
	LiveID               string                    `json:"liveId"`
	InstructorID         string                    `json:"userId"`
	Nickname             string                    `json:"nickname"`
	ProfileImageURL      string                    `json:"profileImageUrl"`
	ProfileImageURLSmall string                    `json:"profileImageUrlSmall"`
	LiveTitle            string                    `json:"liveTitle"`
	LiveContent          string                    `json:"liveContent"`
	MaxLiveNum           int                       `json:"maxLiveNum"`
	AvailableDay         string                    `json:"availableDay"`
	StartDate            int64                     `json:"startDate"`
	EndDate              int64                     `json:"endDate"`
	StartTime            int64                     `json:"startTime"`
	EndTime              int64                     `json:"endTime"`
	IsOnAir              bool                      `json:"isOnAir"`
	IsDeleted            bool                      `json:"isDeleted"`
	RegDate              int64                     `json:"regDate"`
	Schedules            []LectureScheduleResponse `json:"schedules"`
}

// RescheduleSummary reports the effect of an update on enrolled students.
type RescheduleSummary struct {
	RemovedSchedules int `json:"removedSchedules"`
	CreatedSchedules int `json:"createdSchedules"`
	MovedStudents    int `json:"movedStudents"`
}

// UpdateLiveLectureResponse is the lecture after an update.
type UpdateLiveLectureResponse struct {
	Lecture    LiveLectureResponse `json:"lecture"`
	Reschedule *RescheduleSummary  `json:"reschedule,omitempty"`
}
