package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
	"github.com/noah-isme/yoga-lecture-api/pkg/jobs"
)

// NotificationSink is told about students affected by lecture changes after
// the change is committed. Implementations must not block or fail the caller.
type NotificationSink interface {
	OnScheduleChanged(ctx context.Context, lecture *models.LiveLecture, from, to models.LectureSchedule, userID string)
	OnLectureCancelled(ctx context.Context, lecture *models.LiveLecture, schedules []models.LectureSchedule, userIDs []string)
}

// NoopNotificationSink discards every notification.
type NoopNotificationSink struct{}

func (NoopNotificationSink) OnScheduleChanged(context.Context, *models.LiveLecture, models.LectureSchedule, models.LectureSchedule, string) {
}

func (NoopNotificationSink) OnLectureCancelled(context.Context, *models.LiveLecture, []models.LectureSchedule, []string) {
}

type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

const notificationJobType = "lecture_notification"

// NotificationService turns lecture changes into events and hands them to a
// worker queue, whose workers publish them through the configured publisher.
type NotificationService struct {
	publisher eventPublisher
	queue     jobEnqueuer
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService constructs the service. Until a queue is attached
// events are published inline.
func NewNotificationService(publisher eventPublisher, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{publisher: publisher, metrics: metrics, logger: logger, now: time.Now}
}

// AttachQueue routes events through q. The queue's handler should be s.Handle.
func (s *NotificationService) AttachQueue(q jobEnqueuer) {
	s.queue = q
}

// OnScheduleChanged tells one student their occurrence moved.
func (s *NotificationService) OnScheduleChanged(ctx context.Context, lecture *models.LiveLecture, from, to models.LectureSchedule, userID string) {
	target := eventSchedule(to)
	s.dispatch(ctx, &models.LectureEvent{
		Type:         models.EventScheduleChanged,
		LectureID:    lecture.ID,
		LectureTitle: lecture.Title,
		UserIDs:      []string{userID},
		OldSchedules: []models.EventSchedule{eventSchedule(from)},
		NewSchedule:  &target,
	})
}

// OnLectureCancelled tells students their upcoming occurrences were removed.
func (s *NotificationService) OnLectureCancelled(ctx context.Context, lecture *models.LiveLecture, schedules []models.LectureSchedule, userIDs []string) {
	if len(userIDs) == 0 {
		return
	}
	removed := make([]models.EventSchedule, 0, len(schedules))
	for _, sc := range schedules {
		removed = append(removed, eventSchedule(sc))
	}
	s.dispatch(ctx, &models.LectureEvent{
		Type:         models.EventLectureCanceled,
		LectureID:    lecture.ID,
		LectureTitle: lecture.Title,
		UserIDs:      userIDs,
		OldSchedules: removed,
	})
}

// Handle publishes a queued event. It is the worker handler for the notification queue.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(*models.LectureEvent)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
	return s.publish(ctx, event)
}

// Dropped records an event abandoned by the queue after its last retry.
func (s *NotificationService) Dropped(job jobs.Job, err error) {
	s.metrics.RecordNotification(job.Type, "dropped")
	s.logger.Error("notification dropped", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
}

func (s *NotificationService) dispatch(ctx context.Context, event *models.LectureEvent) {
	event.ID = uuid.NewString()
	event.OccurredAt = s.now().UTC()

	if s.queue == nil {
		_ = s.publish(ctx, event)
		return
	}
	job := jobs.Job{ID: event.ID, Type: notificationJobType, Payload: event}
	if err := s.queue.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		s.metrics.RecordNotification(string(event.Type), "enqueue_failed")
		s.logger.Warn("notification enqueue failed",
			zap.String("event_id", event.ID),
			zap.String("lecture_id", event.LectureID),
			zap.Error(err),
		)
		return
	}
	s.metrics.RecordNotification(string(event.Type), "queued")
}

func (s *NotificationService) publish(ctx context.Context, event *models.LectureEvent) error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, string(event.Type), event); err != nil {
		s.metrics.RecordNotification(string(event.Type), "failed")
		s.logger.Warn("notification publish failed",
			zap.String("event_id", event.ID),
			zap.String("lecture_id", event.LectureID),
			zap.Error(err),
		)
		return err
	}
	s.metrics.RecordNotification(string(event.Type), "published")
	return nil
}

func eventSchedule(s models.LectureSchedule) models.EventSchedule {
	return models.EventSchedule{ID: s.ID, StartTime: s.StartTime.UnixMilli(), EndTime: s.EndTime.UnixMilli()}
}
