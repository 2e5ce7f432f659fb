package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/yoga-lecture-api/internal/dto"
	"github.com/noah-isme/yoga-lecture-api/internal/models"
	"github.com/noah-isme/yoga-lecture-api/internal/scheduling"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
	"github.com/noah-isme/yoga-lecture-api/pkg/timeutil"
)

type lectureFeedReader interface {
	ListUpcomingForUser(ctx context.Context, userID string, now time.Time, limit, offset int) ([]models.LectureFeedItem, int, error)
	ListCompletedForUser(ctx context.Context, userID string, now time.Time, limit, offset int) ([]models.LectureFeedItem, int, error)
}

const maxFeedPageSize = 100

// HomeService serves the upcoming and past occurrence feeds of a user.
type HomeService struct {
	feed        lectureFeedReader
	users       userDirectory
	conv        *timeutil.Converter
	validator   *validator.Validate
	logger      *zap.Logger
	defaultSize int
	now         func() time.Time
}

// NewHomeService constructs HomeService.
func NewHomeService(feed lectureFeedReader, users userDirectory, conv *timeutil.Converter, defaultSize int, validate *validator.Validate, logger *zap.Logger) *HomeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if conv == nil {
		conv = timeutil.NewConverterIn(time.UTC)
	}
	if defaultSize <= 0 {
		defaultSize = 20
	}
	return &HomeService{feed: feed, users: users, conv: conv, validator: validate, logger: logger, defaultSize: defaultSize, now: time.Now}
}

// Home lists occurrences that have not ended, earliest first.
func (s *HomeService) Home(ctx context.Context, userID string, query dto.FeedQuery) ([]dto.FeedItemResponse, *models.Pagination, error) {
	return s.list(ctx, userID, query, s.feed.ListUpcomingForUser, "failed to load home feed")
}

// History lists occurrences that already ended, latest first.
func (s *HomeService) History(ctx context.Context, userID string, query dto.FeedQuery) ([]dto.FeedItemResponse, *models.Pagination, error) {
	return s.list(ctx, userID, query, s.feed.ListCompletedForUser, "failed to load lecture history")
}

type feedFunc func(ctx context.Context, userID string, now time.Time, limit, offset int) ([]models.LectureFeedItem, int, error)

func (s *HomeService) list(ctx context.Context, userID string, query dto.FeedQuery, load feedFunc, failure string) ([]dto.FeedItemResponse, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pagination")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, nil, internalError(err, "failed to load user")
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.Size
	if size <= 0 {
		size = s.defaultSize
	}
	if size > maxFeedPageSize {
		size = maxFeedPageSize
	}

	items, total, err := load(ctx, userID, s.now(), size, (page-1)*size)
	if err != nil {
		return nil, nil, internalError(err, failure)
	}

	out := make([]dto.FeedItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.FeedItemResponse{
			LiveID:               item.LectureID,
			ScheduleID:           item.ScheduleID,
			Nickname:             item.Nickname,
			ProfileImageURL:      item.ProfileImageURL,
			ProfileImageURLSmall: item.ProfileImageURLSmall,
			LiveTitle:            item.Title,
			LiveContent:          item.Content,
			StartTime:            item.StartTime.UnixMilli(),
			EndTime:              item.EndTime.UnixMilli(),
			LectureDate:          s.conv.StartOfDay(s.conv.DateOf(item.StartTime)).UnixMilli(),
			LectureDay:           scheduling.WeekdayCode(s.conv.Weekday(item.StartTime)),
			MaxLiveNum:           item.MaxParticipants,
			Teacher:              item.InstructorID == userID,
			IsOnAir:              item.IsOnAir,
		})
	}
	return out, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
