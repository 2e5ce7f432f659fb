package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/yoga-lecture-api/internal/dto"
	"github.com/noah-isme/yoga-lecture-api/internal/models"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
)

type scheduleLocker interface {
	FindScheduleByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LectureSchedule, error)
	BumpVersion(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error)
}

type seatStore interface {
	Find(ctx context.Context, exec sqlx.ExtContext, userID, scheduleID string) (*models.Enrollment, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, userID, scheduleID string) (bool, error)
	CountBySchedule(ctx context.Context, exec sqlx.ExtContext, scheduleID string) (int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// EnrollmentService books and releases student seats on lecture occurrences.
type EnrollmentService struct {
	lectures    scheduleLocker
	enrollments seatStore
	tx          txRunner
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(lectures scheduleLocker, enrollments seatStore, tx txProvider, cache *CacheService, metrics *MetricsService, maxRetries int, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		lectures:    lectures,
		enrollments: enrollments,
		tx:          txRunner{provider: tx, maxRetries: maxRetries, metrics: metrics},
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// Enroll reserves a seat for userID on scheduleID.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, scheduleID string) (*dto.EnrollmentResponse, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(scheduleID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id and schedule id are required")
	}

	var (
		enrollment *models.Enrollment
		lectureID  string
	)
	err := s.tx.run(ctx, sql.LevelReadCommitted, func(tx *sqlx.Tx) error {
		schedule, lecture, err := s.lockSchedule(ctx, tx, scheduleID)
		if err != nil {
			return err
		}
		if schedule.Status(s.now()) == models.ScheduleCompleted {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "lecture schedule already finished")
		}

		exists, err := s.enrollments.Exists(ctx, tx, userID, scheduleID)
		if err != nil {
			return internalError(err, "failed to check enrollment")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "already enrolled in this schedule")
		}

		count, err := s.enrollments.CountBySchedule(ctx, tx, scheduleID)
		if err != nil {
			return internalError(err, "failed to count enrollments")
		}
		if count >= lecture.MaxParticipants {
			return appErrors.Clone(appErrors.ErrConflict, "lecture is full")
		}

		created := &models.Enrollment{UserID: userID, ScheduleID: scheduleID}
		if err := s.enrollments.Create(ctx, tx, created); err != nil {
			if isUniqueViolation(err) {
				return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "already enrolled in this schedule")
			}
			return internalError(err, "failed to create enrollment")
		}
		enrollment, lectureID = created, lecture.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, lectureCacheKey(lectureID))
	s.logger.Info("student enrolled",
		zap.String("user_id", userID),
		zap.String("schedule_id", scheduleID),
		zap.String("lecture_id", lectureID),
	)
	return &dto.EnrollmentResponse{
		EnrollmentID: enrollment.ID,
		ScheduleID:   enrollment.ScheduleID,
		LiveID:       lectureID,
		Completed:    enrollment.Completed,
		CreatedAt:    enrollment.CreatedAt.UnixMilli(),
	}, nil
}

// Unenroll releases userID's seat on scheduleID. Completed enrollments stay as history.
func (s *EnrollmentService) Unenroll(ctx context.Context, userID, scheduleID string) error {
	return s.tx.run(ctx, sql.LevelReadCommitted, func(tx *sqlx.Tx) error {
		schedule, _, err := s.lockSchedule(ctx, tx, scheduleID)
		if err != nil {
			return err
		}

		enrollment, err := s.enrollments.Find(ctx, tx, userID, scheduleID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			}
			return internalError(err, "failed to load enrollment")
		}
		if enrollment.Completed || schedule.Status(s.now()) == models.ScheduleCompleted {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "completed enrollments cannot be cancelled")
		}

		if err := s.enrollments.Delete(ctx, tx, enrollment.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			}
			return internalError(err, "failed to delete enrollment")
		}
		s.logger.Info("student unenrolled", zap.String("user_id", userID), zap.String("schedule_id", scheduleID))
		return nil
	})
}

// lockSchedule row-locks the occurrence's lecture by bumping its version and
// returns the occurrence as it stands once the lock is held.
func (s *EnrollmentService) lockSchedule(ctx context.Context, tx *sqlx.Tx, scheduleID string) (*models.LectureSchedule, *models.LiveLecture, error) {
	schedule, err := s.lectures.FindScheduleByID(ctx, tx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "lecture schedule not found")
		}
		return nil, nil, internalError(err, "failed to load lecture schedule")
	}
	lecture, err := s.lectures.BumpVersion(ctx, tx, schedule.LectureID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "live lecture not found")
		}
		return nil, nil, internalError(err, "failed to lock live lecture")
	}
	if lecture.IsDeleted {
		return nil, nil, appErrors.Clone(appErrors.ErrAlreadyDeleted, "live lecture already deleted")
	}

	// A reschedule holding the lecture lock may have replaced the occurrence
	// while we waited; only the row seen under the lock counts.
	schedule, err = s.lectures.FindScheduleByID(ctx, tx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "lecture schedule was rescheduled or removed")
		}
		return nil, nil, internalError(err, "failed to reload lecture schedule")
	}
	return schedule, lecture, nil
}
