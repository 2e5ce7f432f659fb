package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
)

func TestEnrollmentRepositoryListBySchedules(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM lecture_enrollments WHERE schedule_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "schedule_id", "completed", "created_at"}).
			AddRow("e-1", "stu-1", "s-1", false, now).
			AddRow("e-2", "stu-2", "s-2", true, now))

	enrollments, err := repo.ListBySchedules(context.Background(), nil, []string{"s-1", "s-2"})
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.True(t, enrollments[1].Completed)
	require.NoError(t, mock.ExpectationsWereMet())

	enrollments, err = repo.ListBySchedules(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, enrollments)
}

func TestEnrollmentRepositoryCreateBatch(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lecture_enrollments (id, user_id, schedule_id, completed, created_at) VALUES ($1, $2, $3, $4, $5), ($6, $7, $8, $9, $10)")).
		WithArgs(sqlmock.AnyArg(), "stu-1", "s-9", false, sqlmock.AnyArg(), sqlmock.AnyArg(), "stu-2", "s-9", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	batch := []models.Enrollment{{UserID: "stu-1", ScheduleID: "s-9"}, {UserID: "stu-2", ScheduleID: "s-9"}}
	require.NoError(t, repo.CreateBatch(context.Background(), nil, batch))
	assert.NotEmpty(t, batch[0].ID)
	assert.False(t, batch[1].CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExists(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM lecture_enrollments").WithArgs("stu-1", "s-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM lecture_enrollments").WithArgs("stu-2", "s-1").
		WillReturnError(sql.ErrNoRows)

	ok, err := repo.Exists(context.Background(), nil, "stu-1", "s-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), nil, "stu-2", "s-1")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountByLecture(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN lecture_schedules s ON s.id = e.schedule_id WHERE s.lecture_id = $1")).
		WithArgs("lec-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByLecture(context.Background(), nil, "lec-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteMissing(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lecture_enrollments WHERE id = $1")).
		WithArgs("e-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), nil, "e-404"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryMarkCompletedBefore(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)
	cutoff := time.Date(2024, 12, 4, 6, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("SET completed = TRUE")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	affected, err := repo.MarkCompletedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}
