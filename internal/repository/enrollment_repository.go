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

const enrollmentColumns = `id, user_id, schedule_id, completed, created_at`

// EnrollmentRepository handles persistence of lecture enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListBySchedules returns every enrollment on the given occurrences.
func (r *EnrollmentRepository) ListBySchedules(ctx context.Context, exec sqlx.ExtContext, scheduleIDs []string) ([]models.Enrollment, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + enrollmentColumns + ` FROM lecture_enrollments WHERE schedule_id = ANY($1) ORDER BY created_at ASC, id ASC`
	var enrollments []models.Enrollment
	if err := sqlx.SelectContext(ctx, r.exec(exec), &enrollments, query, pq.Array(scheduleIDs)); err != nil {
		return nil, fmt.Errorf("list schedule enrollments: %w", err)
	}
	return enrollments, nil
}

// CountBySchedule counts enrollments on one occurrence.
func (r *EnrollmentRepository) CountBySchedule(ctx context.Context, exec sqlx.ExtContext, scheduleID string) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, `SELECT COUNT(*) FROM lecture_enrollments WHERE schedule_id = $1`, scheduleID); err != nil {
		return 0, fmt.Errorf("count schedule enrollments: %w", err)
	}
	return count, nil
}

// CountBySchedules returns per-occurrence counts; occurrences without enrollments are omitted.
func (r *EnrollmentRepository) CountBySchedules(ctx context.Context, exec sqlx.ExtContext, scheduleIDs []string) ([]models.ScheduleEnrollmentCount, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT schedule_id, COUNT(*) AS count FROM lecture_enrollments WHERE schedule_id = ANY($1) GROUP BY schedule_id`
	var counts []models.ScheduleEnrollmentCount
	if err := sqlx.SelectContext(ctx, r.exec(exec), &counts, query, pq.Array(scheduleIDs)); err != nil {
		return nil, fmt.Errorf("count enrollments by schedule: %w", err)
	}
	return counts, nil
}

// CountByLecture counts enrollments across all occurrences of a lecture.
func (r *EnrollmentRepository) CountByLecture(ctx context.Context, exec sqlx.ExtContext, lectureID string) (int, error) {
	const query = `SELECT COUNT(*) FROM lecture_enrollments e JOIN lecture_schedules s ON s.id = e.schedule_id WHERE s.lecture_id = $1`
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, query, lectureID); err != nil {
		return 0, fmt.Errorf("count lecture enrollments: %w", err)
	}
	return count, nil
}

// Find returns the user's enrollment on an occurrence. Returns sql.ErrNoRows when absent.
func (r *EnrollmentRepository) Find(ctx context.Context, exec sqlx.ExtContext, userID, scheduleID string) (*models.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM lecture_enrollments WHERE user_id = $1 AND schedule_id = $2`
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, r.exec(exec), &enrollment, query, userID, scheduleID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists reports whether the user is enrolled on the occurrence.
func (r *EnrollmentRepository) Exists(ctx context.Context, exec sqlx.ExtContext, userID, scheduleID string) (bool, error) {
	var exists int
	err := sqlx.GetContext(ctx, r.exec(exec), &exists, `SELECT 1 FROM lecture_enrollments WHERE user_id = $1 AND schedule_id = $2 LIMIT 1`, userID, scheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// CreateBatch inserts enrollments in one statement, assigning missing ids and timestamps.
func (r *EnrollmentRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, enrollments []models.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}
	now := time.Now().UTC()
	values := make([]string, 0, len(enrollments))
	args := make([]interface{}, 0, len(enrollments)*5)
	for i := range enrollments {
		e := &enrollments[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		n := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5))
		args = append(args, e.ID, e.UserID, e.ScheduleID, e.Completed, e.CreatedAt)
	}
	query := `INSERT INTO lecture_enrollments (` + enrollmentColumns + `) VALUES ` + strings.Join(values, ", ")
	if _, err := r.exec(exec).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create enrollments: %w", err)
	}
	return nil
}

// Create inserts one enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	batch := []models.Enrollment{*enrollment}
	if err := r.CreateBatch(ctx, exec, batch); err != nil {
		return err
	}
	*enrollment = batch[0]
	return nil
}

// Delete removes one enrollment by id.
func (r *EnrollmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM lecture_enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("enrollment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteBySchedules removes every enrollment on the given occurrences.
func (r *EnrollmentRepository) DeleteBySchedules(ctx context.Context, exec sqlx.ExtContext, scheduleIDs []string) (int64, error) {
	if len(scheduleIDs) == 0 {
		return 0, nil
	}
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM lecture_enrollments WHERE schedule_id = ANY($1)`, pq.Array(scheduleIDs))
	if err != nil {
		return 0, fmt.Errorf("delete schedule enrollments: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("schedule enrollments rows affected: %w", err)
	}
	return affected, nil
}

// MarkCompletedBefore flags enrollments whose occurrence ended before cutoff.
func (r *EnrollmentRepository) MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `UPDATE lecture_enrollments e SET completed = TRUE
FROM lecture_schedules s WHERE s.id = e.schedule_id AND e.completed = FALSE AND s.end_time < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("mark enrollments completed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("completed enrollments rows affected: %w", err)
	}
	return affected, nil
}
