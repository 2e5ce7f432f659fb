package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
	"github.com/noah-isme/yoga-lecture-api/internal/scheduling"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
	"github.com/noah-isme/yoga-lecture-api/pkg/export"
	"github.com/noah-isme/yoga-lecture-api/pkg/timeutil"
)

type exportLectureReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error)
}

type enrollmentCounter interface {
	CountBySchedules(ctx context.Context, exec sqlx.ExtContext, scheduleIDs []string) ([]models.ScheduleEnrollmentCount, error)
}

// ExportResult is a rendered timetable ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

var scheduleExportHeaders = []string{"Date", "Day", "Start", "End", "Status", "Enrolled", "Capacity"}

// ExportService renders a lecture's occurrences as a downloadable timetable.
type ExportService struct {
	lectures    exportLectureReader
	enrollments enrollmentCounter
	conv        *timeutil.Converter
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs ExportService.
func NewExportService(lectures exportLectureReader, enrollments enrollmentCounter, conv *timeutil.Converter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conv == nil {
		conv = timeutil.NewConverterIn(time.UTC)
	}
	return &ExportService{lectures: lectures, enrollments: enrollments, conv: conv, logger: logger, now: time.Now}
}

// Export renders the occurrences of lectureID for its instructor.
func (s *ExportService) Export(ctx context.Context, actorID, lectureID, format string) (*ExportResult, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}

	lecture, err := s.lectures.FindByID(ctx, nil, lectureID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "live lecture not found")
		}
		return nil, internalError(err, "failed to load live lecture")
	}
	if lecture.InstructorID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the lecture's instructor can export it")
	}

	counts := map[string]int{}
	if ids := lecture.ScheduleIDs(); len(ids) > 0 {
		rows, err := s.enrollments.CountBySchedules(ctx, nil, ids)
		if err != nil {
			return nil, internalError(err, "failed to count enrollments")
		}
		for _, row := range rows {
			counts[row.ScheduleID] = row.Count
		}
	}

	data := s.dataset(lecture, counts)
	renderer := export.RendererFor(f)
	body, err := renderer.Render(data, lecture.Title)
	if err != nil {
		return nil, internalError(err, "failed to render schedule export")
	}

	s.logger.Info("lecture schedule exported",
		zap.String("lecture_id", lecture.ID),
		zap.String("format", string(f)),
		zap.Int("rows", len(data.Rows)),
	)
	return &ExportResult{
		Filename:    fmt.Sprintf("%s-schedule.%s", sanitizeFilename(lecture.Title, lecture.ID), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *ExportService) dataset(lecture *models.LiveLecture, counts map[string]int) export.Dataset {
	now := s.now()
	capacity := strconv.Itoa(lecture.MaxParticipants)
	data := export.Dataset{Headers: scheduleExportHeaders, Rows: make([]map[string]string, 0, len(lecture.Schedules))}
	for _, sc := range lecture.Schedules {
		data.Rows = append(data.Rows, map[string]string{
			"Date":     s.conv.DateOf(sc.StartTime).String(),
			"Day":      scheduling.WeekdayCode(s.conv.Weekday(sc.StartTime)),
			"Start":    s.conv.TimeOfDayOf(sc.StartTime).String(),
			"End":      s.conv.TimeOfDayOf(sc.EndTime).String(),
			"Status":   string(sc.Status(now)),
			"Enrolled": strconv.Itoa(counts[sc.ID]),
			"Capacity": capacity,
		})
	}
	return data
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]+`)

func sanitizeFilename(raw, fallback string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.ToLower(raw), "-"), "-")
	if name == "" {
		return fallback
	}
	return name
}
