package dto

// FeedQuery pages through the home or history feed.
type FeedQuery struct {
	Page int `form:"page" validate:"omitempty,min=1"`
	Size int `form:"size" validate:"omitempty,min=1,max=100"`
}

// FeedItemResponse is one occurrence in the home or history feed.
type FeedItemResponse struct {
	LiveID               string `json:"liveId"`
	ScheduleID           string `json:"scheduleId"`
	Nickname             string `json:"nickname"`
	ProfileImageURL      string `json:"profileImageUrl,omitempty"`
	ProfileImageURLSmall string `json:"profileImageUrlSmall"`
	LiveTitle            string `json:"liveTitle"`
	LiveContent          string `json:"liveContent,omitempty"`
	StartTime            int64  `json:"startTime"`
	EndTime              int64  `json:"endTime"`
	LectureDate          int64  `json:"lectureDate"`
	LectureDay           string `json:"lectureDay"`
	MaxLiveNum           int    `json:"maxLiveNum,omitempty"`
	Teacher              bool   `json:"teacher"`
	IsOnAir              bool   `json:"isOnAir"`
}
