package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
)

const lectureColumns = `id, instructor_id, title, content, max_participants, is_on_air, is_deleted, deleted_at, version, created_at, updated_at`

const scheduleColumns = `id, lecture_id, start_time, end_time`

// LectureRepository persists live lectures together with their occurrences.
type LectureRepository struct {
	db *sqlx.DB
}

// NewLectureRepository constructs the repository.
func NewLectureRepository(db *sqlx.DB) *LectureRepository {
	return &LectureRepository{db: db}
}

func (r *LectureRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads a lecture and its occurrences. Returns sql.ErrNoRows when absent.
func (r *LectureRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error) {
	return r.find(ctx, r.exec(exec), `SELECT `+lectureColumns+` FROM live_lectures WHERE id = $1`, id)
}

// LockByID is FindByID holding a row lock on the lecture until the transaction ends.
func (r *LectureRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error) {
	if exec == nil {
		return nil, fmt.Errorf("lock lecture: transaction required")
	}
	return r.find(ctx, exec, `SELECT `+lectureColumns+` FROM live_lectures WHERE id = $1 FOR UPDATE`, id)
}

func (r *LectureRepository) find(ctx context.Context, target sqlx.ExtContext, query, id string) (*models.LiveLecture, error) {
	var lecture models.LiveLecture
	if err := sqlx.GetContext(ctx, target, &lecture, query, id); err != nil {
		return nil, err
	}
	schedules, err := r.ListSchedules(ctx, target, []string{lecture.ID})
	if err != nil {
		return nil, err
	}
	lecture.Schedules = schedules
	return &lecture, nil
}

// ListByInstructor returns the instructor's lectures that are not deleted, newest first.
func (r *LectureRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.LiveLecture, error) {
	const query = `SELECT ` + lectureColumns + ` FROM live_lectures
WHERE instructor_id = $1 AND is_deleted = FALSE ORDER BY created_at DESC`
	var lectures []models.LiveLecture
	if err := r.db.SelectContext(ctx, &lectures, query, instructorID); err != nil {
		return nil, fmt.Errorf("list instructor lectures: %w", err)
	}
	if len(lectures) == 0 {
		return lectures, nil
	}

	ids := make([]string, len(lectures))
	for i := range lectures {
		ids[i] = lectures[i].ID
	}
	schedules, err := r.ListSchedules(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	byLecture := make(map[string][]models.LectureSchedule, len(lectures))
	for _, s := range schedules {
		byLecture[s.LectureID] = append(byLecture[s.LectureID], s)
	}
	for i := range lectures {
		lectures[i].Schedules = byLecture[lectures[i].ID]
	}
	return lectures, nil
}

// ListSchedules returns the occurrences of the given lectures ordered by start time.
func (r *LectureRepository) ListSchedules(ctx context.Context, exec sqlx.ExtContext, lectureIDs []string) ([]models.LectureSchedule, error) {
	const query = `SELECT ` + scheduleColumns + ` FROM lecture_schedules WHERE lecture_id = ANY($1) ORDER BY start_time ASC, id ASC`
	var schedules []models.LectureSchedule
	if err := sqlx.SelectContext(ctx, r.exec(exec), &schedules, query, pq.Array(lectureIDs)); err != nil {
		return nil, fmt.Errorf("list lecture schedules: %w", err)
	}
	return schedules, nil
}

// FindScheduleByID returns one occurrence. Returns sql.ErrNoRows when absent.
func (r *LectureRepository) FindScheduleByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LectureSchedule, error) {
	const query = `SELECT ` + scheduleColumns + ` FROM lecture_schedules WHERE id = $1`
	var schedule models.LectureSchedule
	if err := sqlx.GetContext(ctx, r.exec(exec), &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Create inserts the lecture row. Occurrences are inserted separately.
func (r *LectureRepository) Create(ctx context.Context, exec sqlx.ExtContext, lecture *models.LiveLecture) error {
	if lecture.ID == "" {
		lecture.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lecture.CreatedAt.IsZero() {
		lecture.CreatedAt = now
	}
	lecture.UpdatedAt = now
	if lecture.Version == 0 {
		lecture.Version = 1
	}

	const query = `INSERT INTO live_lectures (` + lectureColumns + `)
VALUES (:id, :instructor_id, :title, :content, :max_participants, :is_on_air, :is_deleted, :deleted_at, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, lecture); err != nil {
		return fmt.Errorf("create live lecture: %w", err)
	}
	return nil
}

// Update writes the mutable columns and bumps the version.
func (r *LectureRepository) Update(ctx context.Context, exec sqlx.ExtContext, lecture *models.LiveLecture) error {
	lecture.UpdatedAt = time.Now().UTC()
	const query = `UPDATE live_lectures SET title = $1, content = $2, max_participants = $3, is_on_air = $4,
is_deleted = $5, deleted_at = $6, version = version + 1, updated_at = $7
WHERE id = $8 RETURNING version`
	err := sqlx.GetContext(ctx, r.exec(exec), &lecture.Version, query,
		lecture.Title,
		lecture.Content,
		lecture.MaxParticipants,
		lecture.IsOnAir,
		lecture.IsDeleted,
		lecture.DeletedAt,
		lecture.UpdatedAt,
		lecture.ID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update live lecture: %w", err)
	}
	return nil
}

// BumpVersion increments the lecture version and returns the locked row.
// Enrollment writes call it so they conflict with concurrent reschedules.
func (r *LectureRepository) BumpVersion(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error) {
	const query = `UPDATE live_lectures SET version = version + 1 WHERE id = $1 RETURNING ` + lectureColumns
	var lecture models.LiveLecture
	if err := sqlx.GetContext(ctx, r.exec(exec), &lecture, query, id); err != nil {
		return nil, err
	}
	return &lecture, nil
}

// InsertSchedules stores occurrences in one statement, assigning missing ids.
func (r *LectureRepository) InsertSchedules(ctx context.Context, exec sqlx.ExtContext, schedules []models.LectureSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	values := make([]string, 0, len(schedules))
	args := make([]interface{}, 0, len(schedules)*4)
	for i := range schedules {
		if schedules[i].ID == "" {
			schedules[i].ID = uuid.NewString()
		}
		n := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4))
		args = append(args, schedules[i].ID, schedules[i].LectureID, schedules[i].StartTime.UTC(), schedules[i].EndTime.UTC())
	}
	query := `INSERT INTO lecture_schedules (` + scheduleColumns + `) VALUES ` + strings.Join(values, ", ")
	if _, err := r.exec(exec).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert lecture schedules: %w", err)
	}
	return nil
}

// DeleteSchedules removes occurrences by id.
func (r *LectureRepository) DeleteSchedules(ctx context.Context, exec sqlx.ExtContext, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM lecture_schedules WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete lecture schedules: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("lecture schedules rows affected: %w", err)
	}
	return affected, nil
}

const feedColumns = `s.id AS schedule_id, l.id AS lecture_id, l.instructor_id, u.nickname,
COALESCE(u.profile_image_url, '') AS profile_image_url, COALESCE(u.profile_image_url_small, '') AS profile_image_url_small,
l.title, l.content, l.max_participants, l.is_on_air, s.start_time, s.end_time`

const feedFrom = `FROM lecture_schedules s
JOIN live_lectures l ON l.id = s.lecture_id
JOIN users u ON u.id = l.instructor_id`

// ListUpcomingForUser returns occurrences ending after now of lectures the
// user teaches or holds an open enrollment on, earliest first.
func (r *LectureRepository) ListUpcomingForUser(ctx context.Context, userID string, now time.Time, limit, offset int) ([]models.LectureFeedItem, int, error) {
	const where = `WHERE l.is_deleted = FALSE AND s.end_time > $2 AND (l.instructor_id = $1 OR EXISTS (
SELECT 1 FROM lecture_enrollments e WHERE e.schedule_id = s.id AND e.user_id = $1 AND e.completed = FALSE))`
	return r.feed(ctx, where, "ASC", userID, now, limit, offset)
}

// ListCompletedForUser returns occurrences that ended by now of lectures the
// user teaches or completed, latest first.
func (r *LectureRepository) ListCompletedForUser(ctx context.Context, userID string, now time.Time, limit, offset int) ([]models.LectureFeedItem, int, error) {
	const where = `WHERE s.end_time <= $2 AND (l.instructor_id = $1 OR EXISTS (
SELECT 1 FROM lecture_enrollments e WHERE e.schedule_id = s.id AND e.user_id = $1 AND e.completed = TRUE))`
	return r.feed(ctx, where, "DESC", userID, now, limit, offset)
}

func (r *LectureRepository) feed(ctx context.Context, where, order, userID string, now time.Time, limit, offset int) ([]models.LectureFeedItem, int, error) {
	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY s.start_time %s LIMIT %d OFFSET %d`, feedColumns, feedFrom, where, order, limit, offset)
	var items []models.LectureFeedItem
	if err := r.db.SelectContext(ctx, &items, query, userID, now.UTC()); err != nil {
		return nil, 0, fmt.Errorf("list lecture feed: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf(`SELECT COUNT(*) %s %s`, feedFrom, where), userID, now.UTC()); err != nil {
		return nil, 0, fmt.Errorf("count lecture feed: %w", err)
	}
	return items, total, nil
}
