package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/yoga-lecture-api/internal/dto"
	"github.com/noah-isme/yoga-lecture-api/internal/models"
	"github.com/noah-isme/yoga-lecture-api/internal/scheduling"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
	"github.com/noah-isme/yoga-lecture-api/pkg/timeutil"
)

type lectureStore interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]models.LiveLecture, error)
	Create(ctx context.Context, exec sqlx.ExtContext, lecture *models.LiveLecture) error
	Update(ctx context.Context, exec sqlx.ExtContext, lecture *models.LiveLecture) error
	InsertSchedules(ctx context.Context, exec sqlx.ExtContext, schedules []models.LectureSchedule) error
	DeleteSchedules(ctx context.Context, exec sqlx.ExtContext, ids []string) (int64, error)
}

type lectureEnrollmentStore interface {
	ListBySchedules(ctx context.Context, exec sqlx.ExtContext, scheduleIDs []string) ([]models.Enrollment, error)
	CountByLecture(ctx context.Context, exec sqlx.ExtContext, lectureID string) (int, error)
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, enrollments []models.Enrollment) error
	DeleteBySchedules(ctx context.Context, exec sqlx.ExtContext, scheduleIDs []string) (int64, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// LiveLectureConfig tunes the coordinator.
type LiveLectureConfig struct {
	TxMaxRetries int
	CacheTTL     time.Duration
}

// LiveLectureService coordinates lecture creation, rescheduling with student
// redistribution, soft deletion and the lecture read models.
type LiveLectureService struct {
	lectures    lectureStore
	enrollments lectureEnrollmentStore
	users       userDirectory
	tx          txRunner
	conv        *timeutil.Converter
	notifier    NotificationSink
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         LiveLectureConfig
	now         func() time.Time
}

// NewLiveLectureService wires coordinator dependencies.
func NewLiveLectureService(
	lectures lectureStore,
	enrollments lectureEnrollmentStore,
	users userDirectory,
	tx txProvider,
	conv *timeutil.Converter,
	notifier NotificationSink,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg LiveLectureConfig,
) *LiveLectureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NoopNotificationSink{}
	}
	if conv == nil {
		conv = timeutil.NewConverterIn(time.UTC)
	}
	if cfg.TxMaxRetries < 0 {
		cfg.TxMaxRetries = 0
	}
	return &LiveLectureService{
		lectures:    lectures,
		enrollments: enrollments,
		users:       users,
		tx:          txRunner{provider: tx, maxRetries: cfg.TxMaxRetries, metrics: metrics},
		conv:        conv,
		notifier:    notifier,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

func lectureCacheKey(id string) string {
	return "live_lecture:" + id
}

// Create builds a lecture and its occurrences for instructorID.
func (s *LiveLectureService) Create(ctx context.Context, instructorID string, req dto.CreateLiveLectureRequest) (resp *dto.LiveLectureResponse, err error) {
	defer func() { s.recordMutation("create", err) }()

	if strings.TrimSpace(instructorID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "instructor id is required")
	}
	if strings.TrimSpace(req.AvailableDay) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "availableDay is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	days, err := scheduling.ParseWeekdays(req.AvailableDay)
	if err != nil {
		return nil, mapSchedulingError(err)
	}
	now := s.now()
	rec := scheduling.Recurrence{
		StartDate: s.conv.ToDate(*req.StartDate),
		EndDate:   s.conv.ToDate(*req.EndDate),
		StartTime: s.wireTimeOfDay(*req.StartTime),
		EndTime:   s.wireTimeOfDay(*req.EndTime),
		Days:      days,
	}
	if rec.StartDate.Before(s.conv.Today(now)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must not be in the past")
	}
	if err := validateRecurrence(rec); err != nil {
		return nil, err
	}

	instructor, err := s.loadInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	schedules, err := scheduling.Generate(rec, s.conv)
	if err != nil {
		return nil, mapSchedulingError(err)
	}

	lecture := &models.LiveLecture{
		InstructorID:    instructor.ID,
		Title:           req.Title,
		Content:         req.Content,
		MaxParticipants: req.MaxParticipants,
	}
	err = s.tx.run(ctx, sql.LevelRepeatableRead, func(tx *sqlx.Tx) error {
		lecture.ID = ""
		if err := s.lectures.Create(ctx, tx, lecture); err != nil {
			return internalError(err, "failed to create live lecture")
		}
		attached := make([]models.LectureSchedule, len(schedules))
		for i, sc := range schedules {
			sc.LectureID = lecture.ID
			attached[i] = sc
		}
		if err := s.lectures.InsertSchedules(ctx, tx, attached); err != nil {
			return internalError(err, "failed to create lecture schedules")
		}
		lecture.Schedules = attached
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("live lecture created",
		zap.String("lecture_id", lecture.ID),
		zap.String("instructor_id", instructor.ID),
		zap.Int("schedules", len(lecture.Schedules)),
	)
	out := s.toResponse(lecture, instructor, now)
	return &out, nil
}

// Update applies field changes and, when any schedule field is supplied,
// replaces future occurrences and moves their students to the nearest new slot.
func (s *LiveLectureService) Update(ctx context.Context, actorID, lectureID string, req dto.UpdateLiveLectureRequest) (resp *dto.UpdateLiveLectureResponse, err error) {
	defer func() { s.recordMutation("update", err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	var (
		lecture *models.LiveLecture
		plan    []scheduling.Reassignment
		summary *dto.RescheduleSummary
		now     time.Time
	)
	err = s.tx.run(ctx, sql.LevelRepeatableRead, func(tx *sqlx.Tx) error {
		now = s.now()
		plan, summary = nil, nil

		current, err := s.lockForMutation(ctx, tx, actorID, lectureID)
		if err != nil {
			return err
		}
		if current.IsOnAir {
			return appErrors.Clone(appErrors.ErrLectureInUse, "lecture is on air")
		}
		if err := applySimpleFields(current, req); err != nil {
			return err
		}

		if req.ReschedulesOccurrences() {
			if plan, summary, err = s.reschedule(ctx, tx, current, req, now); err != nil {
				return err
			}
		}

		if err := s.lectures.Update(ctx, tx, current); err != nil {
			return internalError(err, "failed to update live lecture")
		}
		lecture = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, lectureCacheKey(lecture.ID))
	moved := 0
	for _, r := range plan {
		for _, userID := range r.UserIDs {
			s.notifier.OnScheduleChanged(ctx, lecture, r.From, r.To, userID)
		}
		moved += len(r.UserIDs)
	}
	s.metrics.RecordRedistributed(moved)

	fields := []zap.Field{zap.String("lecture_id", lecture.ID), zap.Int64("version", lecture.Version)}
	if summary != nil {
		fields = append(fields,
			zap.Int("removed_schedules", summary.RemovedSchedules),
			zap.Int("created_schedules", summary.CreatedSchedules),
			zap.Int("moved_students", summary.MovedStudents),
		)
	}
	s.logger.Info("live lecture updated", fields...)

	instructor := s.lookupInstructor(ctx, lecture.InstructorID)
	return &dto.UpdateLiveLectureResponse{Lecture: s.toResponse(lecture, instructor, now), Reschedule: summary}, nil
}

// reschedule rebuilds lecture.Schedules inside tx and returns the redistribution it applied.
func (s *LiveLectureService) reschedule(ctx context.Context, tx *sqlx.Tx, lecture *models.LiveLecture, req dto.UpdateLiveLectureRequest, now time.Time) ([]scheduling.Reassignment, *dto.RescheduleSummary, error) {
	rec, err := s.mergeRecurrence(lecture, req, now)
	if err != nil {
		return nil, nil, err
	}

	partition := scheduling.Classify(lecture.Schedules, now)
	futureIDs := make([]string, 0, len(partition.Future))
	for _, sc := range partition.Future {
		futureIDs = append(futureIDs, sc.ID)
	}

	snapshot := make(map[string][]models.Enrollment)
	if len(futureIDs) > 0 {
		enrollments, err := s.enrollments.ListBySchedules(ctx, tx, futureIDs)
		if err != nil {
			return nil, nil, internalError(err, "failed to load schedule enrollments")
		}
		for _, e := range enrollments {
			snapshot[e.ScheduleID] = append(snapshot[e.ScheduleID], e)
		}
	}

	candidates, err := scheduling.GenerateAfter(rec, s.conv, now)
	if err != nil {
		return nil, nil, mapSchedulingError(err)
	}
	for i := range candidates {
		candidates[i].LectureID = lecture.ID
	}

	// Plan before touching rows so a failed match leaves nothing to undo.
	plan, err := scheduling.PlanRedistribution(partition.Future, snapshot, candidates, s.conv)
	if err != nil {
		return nil, nil, mapSchedulingError(err)
	}

	if _, err := s.enrollments.DeleteBySchedules(ctx, tx, futureIDs); err != nil {
		return nil, nil, internalError(err, "failed to remove enrollments of replaced schedules")
	}
	if _, err := s.lectures.DeleteSchedules(ctx, tx, futureIDs); err != nil {
		return nil, nil, internalError(err, "failed to remove replaced schedules")
	}
	if err := s.lectures.InsertSchedules(ctx, tx, candidates); err != nil {
		return nil, nil, internalError(err, "failed to create lecture schedules")
	}

	// InsertSchedules assigned ids; point the plan at the stored rows.
	byStart := make(map[int64]models.LectureSchedule, len(candidates))
	for _, c := range candidates {
		byStart[c.StartTime.UnixNano()] = c
	}
	var fresh []models.Enrollment
	moved := 0
	for i := range plan {
		plan[i].To = byStart[plan[i].To.StartTime.UnixNano()]
		for _, userID := range plan[i].UserIDs {
			fresh = append(fresh, models.Enrollment{UserID: userID, ScheduleID: plan[i].To.ID, Completed: false})
		}
		moved += len(plan[i].UserIDs)
	}
	if err := s.enrollments.CreateBatch(ctx, tx, fresh); err != nil {
		return nil, nil, internalError(err, "failed to redistribute students")
	}

	lecture.Schedules = append(append([]models.LectureSchedule{}, partition.Past...), candidates...)
	return plan, &dto.RescheduleSummary{
		RemovedSchedules: len(futureIDs),
		CreatedSchedules: len(candidates),
		MovedStudents:    moved,
	}, nil
}

// Delete soft-deletes a lecture. Without enrollments every occurrence is
// removed; otherwise completed occurrences are kept for history.
func (s *LiveLectureService) Delete(ctx context.Context, actorID, lectureID string) (err error) {
	defer func() { s.recordMutation("delete", err) }()

	var (
		lecture   *models.LiveLecture
		removed   []models.LectureSchedule
		cancelled []string
	)
	err = s.tx.run(ctx, sql.LevelRepeatableRead, func(tx *sqlx.Tx) error {
		now := s.now()
		removed, cancelled = nil, nil

		current, err := s.lockForMutation(ctx, tx, actorID, lectureID)
		if err != nil {
			return err
		}
		if current.IsActive(now) {
			return appErrors.Clone(appErrors.ErrLectureInUse, "lecture is on air or in session")
		}

		count, err := s.enrollments.CountByLecture(ctx, tx, current.ID)
		if err != nil {
			return internalError(err, "failed to count lecture enrollments")
		}

		kept := []models.LectureSchedule{}
		if count == 0 {
			removed = current.Schedules
		} else {
			partition := scheduling.Classify(current.Schedules, now)
			kept, removed = partition.Past, partition.Future
		}

		removedIDs := make([]string, 0, len(removed))
		for _, sc := range removed {
			removedIDs = append(removedIDs, sc.ID)
		}
		if count > 0 && len(removedIDs) > 0 {
			affected, err := s.enrollments.ListBySchedules(ctx, tx, removedIDs)
			if err != nil {
				return internalError(err, "failed to load schedule enrollments")
			}
			cancelled = uniqueUserIDs(affected)
			if _, err := s.enrollments.DeleteBySchedules(ctx, tx, removedIDs); err != nil {
				return internalError(err, "failed to remove enrollments of cancelled schedules")
			}
		}
		if _, err := s.lectures.DeleteSchedules(ctx, tx, removedIDs); err != nil {
			return internalError(err, "failed to remove lecture schedules")
		}

		deletedAt := now.UTC()
		current.IsDeleted = true
		current.DeletedAt = &deletedAt
		current.Schedules = kept
		if err := s.lectures.Update(ctx, tx, current); err != nil {
			return internalError(err, "failed to delete live lecture")
		}
		lecture = current
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, lectureCacheKey(lecture.ID))
	s.notifier.OnLectureCancelled(ctx, lecture, removed, cancelled)
	s.logger.Info("live lecture deleted",
		zap.String("lecture_id", lecture.ID),
		zap.Int("removed_schedules", len(removed)),
		zap.Int("kept_schedules", len(lecture.Schedules)),
		zap.Int("notified_students", len(cancelled)),
	)
	return nil
}

// SetOnAir toggles the broadcast flag of an owned, non-deleted lecture.
func (s *LiveLectureService) SetOnAir(ctx context.Context, actorID, lectureID string, req dto.SetOnAirRequest) (resp *dto.LiveLectureResponse, err error) {
	defer func() { s.recordMutation("set_on_air", err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	var lecture *models.LiveLecture
	err = s.tx.run(ctx, sql.LevelReadCommitted, func(tx *sqlx.Tx) error {
		current, err := s.lockForMutation(ctx, tx, actorID, lectureID)
		if err != nil {
			return err
		}
		current.IsOnAir = *req.OnAir
		if err := s.lectures.Update(ctx, tx, current); err != nil {
			return internalError(err, "failed to update live state")
		}
		lecture = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, lectureCacheKey(lecture.ID))
	s.logger.Info("live state changed", zap.String("lecture_id", lecture.ID), zap.Bool("on_air", lecture.IsOnAir))
	out := s.toResponse(lecture, s.lookupInstructor(ctx, lecture.InstructorID), s.now())
	return &out, nil
}

// Get returns the lecture detail, served from cache when enabled.
func (s *LiveLectureService) Get(ctx context.Context, lectureID string) (*dto.LiveLectureResponse, error) {
	var cached dto.LiveLectureResponse
	if s.cache.Get(ctx, lectureCacheKey(lectureID), &cached) {
		return &cached, nil
	}

	lecture, err := s.lectures.FindByID(ctx, nil, lectureID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "live lecture not found")
		}
		return nil, internalError(err, "failed to load live lecture")
	}

	out := s.toResponse(lecture, s.lookupInstructor(ctx, lecture.InstructorID), s.now())
	s.cache.Set(ctx, lectureCacheKey(lectureID), out, s.cfg.CacheTTL)
	return &out, nil
}

// ListByInstructor returns the instructor's active lectures.
func (s *LiveLectureService) ListByInstructor(ctx context.Context, instructorID string) ([]dto.LiveLectureResponse, error) {
	instructor, err := s.loadInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	lectures, err := s.lectures.ListByInstructor(ctx, instructor.ID)
	if err != nil {
		return nil, internalError(err, "failed to list live lectures")
	}
	now := s.now()
	out := make([]dto.LiveLectureResponse, 0, len(lectures))
	for i := range lectures {
		out = append(out, s.toResponse(&lectures[i], instructor, now))
	}
	return out, nil
}

func (s *LiveLectureService) lockForMutation(ctx context.Context, tx *sqlx.Tx, actorID, lectureID string) (*models.LiveLecture, error) {
	lecture, err := s.lectures.LockByID(ctx, tx, lectureID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "live lecture not found")
		}
		return nil, internalError(err, "failed to load live lecture")
	}
	if lecture.InstructorID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the lecture's instructor can change it")
	}
	if lecture.IsDeleted {
		return nil, appErrors.Clone(appErrors.ErrAlreadyDeleted, "live lecture already deleted")
	}
	return lecture, nil
}

func (s *LiveLectureService) loadInstructor(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, internalError(err, "failed to load instructor")
	}
	if user.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user is not an instructor")
	}
	return user, nil
}

// lookupInstructor enriches read models; a missing profile leaves the fields empty.
func (s *LiveLectureService) lookupInstructor(ctx context.Context, id string) *models.User {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("instructor lookup failed", zap.String("instructor_id", id), zap.Error(err))
		}
		return &models.User{ID: id}
	}
	return user
}

// mergeRecurrence fills absent schedule fields from the pattern still in
// effect, so days dropped by an earlier update stay dropped.
func (s *LiveLectureService) mergeRecurrence(lecture *models.LiveLecture, req dto.UpdateLiveLectureRequest, now time.Time) (scheduling.Recurrence, error) {
	rec, derived := scheduling.CurrentPattern(lecture.Schedules, now, s.conv)
	complete := req.StartDate != nil && req.EndDate != nil && req.StartTime != nil && req.EndTime != nil && req.AvailableDay != nil
	if !derived && !complete {
		return rec, appErrors.Clone(appErrors.ErrValidation, "lecture has no schedules; startDate, endDate, startTime, endTime and availableDay are required")
	}

	if req.StartDate != nil {
		rec.StartDate = s.conv.ToDate(*req.StartDate)
		if rec.StartDate.Before(s.conv.Today(now)) {
			return rec, appErrors.Clone(appErrors.ErrValidation, "start date must not be in the past")
		}
	}
	if req.EndDate != nil {
		rec.EndDate = s.conv.ToDate(*req.EndDate)
	}
	if req.StartTime != nil {
		rec.StartTime = s.wireTimeOfDay(*req.StartTime)
	}
	if req.EndTime != nil {
		rec.EndTime = s.wireTimeOfDay(*req.EndTime)
	}
	if req.AvailableDay != nil {
		days, err := scheduling.ParseWeekdays(*req.AvailableDay)
		if err != nil {
			return rec, mapSchedulingError(err)
		}
		rec.Days = days
	}
	return rec, validateRecurrence(rec)
}

// wireTimeOfDay reads a time field. Values within one day are milliseconds
// since local midnight; anything else is an epoch instant.
func (s *LiveLectureService) wireTimeOfDay(ms int64) timeutil.TimeOfDay {
	if ms >= 0 && ms < int64(24*time.Hour/time.Millisecond) {
		return timeutil.TimeOfDayFromMillis(ms)
	}
	return s.conv.ToTimeOfDay(ms)
}

func (s *LiveLectureService) toResponse(lecture *models.LiveLecture, instructor *models.User, now time.Time) dto.LiveLectureResponse {
	out := dto.LiveLectureResponse{
		LiveID:       lecture.ID,
		InstructorID: lecture.InstructorID,
		LiveTitle:    lecture.Title,
		LiveContent:  lecture.Content,
		MaxLiveNum:   lecture.MaxParticipants,
		IsOnAir:      lecture.IsOnAir,
		IsDeleted:    lecture.IsDeleted,
		RegDate:      lecture.CreatedAt.UnixMilli(),
		Schedules:    make([]dto.LectureScheduleResponse, 0, len(lecture.Schedules)),
	}
	if instructor != nil {
		out.Nickname = instructor.Nickname
		out.ProfileImageURL = instructor.ProfileImageURL
		out.ProfileImageURLSmall = instructor.ProfileImageURLSmall
	}

	if rec, ok := scheduling.CurrentPattern(lecture.Schedules, now, s.conv); ok {
		first, last := lecture.Schedules[0], lecture.Schedules[len(lecture.Schedules)-1]
		out.StartDate = first.StartTime.UnixMilli()
		out.EndDate = last.EndTime.UnixMilli()
		out.StartTime = s.conv.TimeOfDayToEpochMillis(rec.StartTime)
		out.EndTime = s.conv.TimeOfDayToEpochMillis(rec.EndTime)
		out.AvailableDay = rec.Days.String()
	}
	for _, sc := range lecture.Schedules {
		out.Schedules = append(out.Schedules, dto.LectureScheduleResponse{
			ScheduleID:  sc.ID,
			StartTime:   sc.StartTime.UnixMilli(),
			EndTime:     sc.EndTime.UnixMilli(),
			LectureDate: s.conv.StartOfDay(s.conv.DateOf(sc.StartTime)).UnixMilli(),
			LectureDay:  scheduling.WeekdayCode(s.conv.Weekday(sc.StartTime)),
			Status:      string(sc.Status(now)),
		})
	}
	return out
}

func (s *LiveLectureService) recordMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	s.metrics.RecordLectureMutation(operation, outcome)
}

func applySimpleFields(lecture *models.LiveLecture, req dto.UpdateLiveLectureRequest) error {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return appErrors.Clone(appErrors.ErrValidation, "title must not be empty")
		}
		lecture.Title = title
	}
	if req.Content != nil {
		lecture.Content = *req.Content
	}
	if req.MaxParticipants != nil {
		if *req.MaxParticipants <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, "maxLiveNum must be positive")
		}
		lecture.MaxParticipants = *req.MaxParticipants
	}
	return nil
}

func validateRecurrence(rec scheduling.Recurrence) error {
	if rec.EndDate.Before(rec.StartDate) {
		return appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}
	if !rec.StartTime.Before(rec.EndTime) {
		return appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	if rec.Days.Empty() {
		return appErrors.Clone(appErrors.ErrInvalidWeekday, "availableDay must name at least one weekday")
	}
	return nil
}

func mapSchedulingError(err error) error {
	switch {
	case errors.Is(err, scheduling.ErrInvalidWeekday):
		return appErrors.Wrap(err, appErrors.ErrInvalidWeekday.Code, appErrors.ErrInvalidWeekday.Status, "availableDay must use MON,TUE,WED,THU,FRI,SAT,SUN")
	case errors.Is(err, scheduling.ErrInvalidRange):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date or time range")
	case errors.Is(err, scheduling.ErrNoAvailableSchedule):
		return appErrors.Wrap(err, appErrors.ErrNoAvailableSchedule.Code, appErrors.ErrNoAvailableSchedule.Status, "no upcoming schedule left for enrolled students")
	default:
		return internalError(err, "failed to build lecture schedules")
	}
}

func uniqueUserIDs(enrollments []models.Enrollment) []string {
	seen := make(map[string]struct{}, len(enrollments))
	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		ids = append(ids, e.UserID)
	}
	return ids
}
