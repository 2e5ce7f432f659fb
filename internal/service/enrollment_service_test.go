package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
)

type scheduleLockerStub struct {
	lecture   *models.LiveLecture
	schedules map[string]models.LectureSchedule
	bumps     int
	// onBump runs once the lecture row is locked, standing in for a writer
	// that committed while this transaction waited on the lock.
	onBump func()
}

func (s *scheduleLockerStub) FindScheduleByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LectureSchedule, error) {
	sc, ok := s.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &sc, nil
}

func (s *scheduleLockerStub) BumpVersion(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error) {
	if s.lecture == nil || s.lecture.ID != id {
		return nil, sql.ErrNoRows
	}
	s.bumps++
	s.lecture.Version++
	if s.onBump != nil {
		s.onBump()
	}
	cp := *s.lecture
	return &cp, nil
}

type seatStoreStub struct {
	rows      []models.Enrollment
	createErr error
}

func (s *seatStoreStub) Find(ctx context.Context, exec sqlx.ExtContext, userID, scheduleID string) (*models.Enrollment, error) {
	for _, e := range s.rows {
		if e.UserID == userID && e.ScheduleID == scheduleID {
			cp := e
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *seatStoreStub) Exists(ctx context.Context, exec sqlx.ExtContext, userID, scheduleID string) (bool, error) {
	_, err := s.Find(ctx, exec, userID, scheduleID)
	return err == nil, nil
}

func (s *seatStoreStub) CountBySchedule(ctx context.Context, exec sqlx.ExtContext, scheduleID string) (int, error) {
	n := 0
	for _, e := range s.rows {
		if e.ScheduleID == scheduleID {
			n++
		}
	}
	return n, nil
}

func (s *seatStoreStub) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if s.createErr != nil {
		return s.createErr
	}
	enrollment.ID = "enr-new"
	s.rows = append(s.rows, *enrollment)
	return nil
}

func (s *seatStoreStub) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	for i, e := range s.rows {
		if e.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func newEnrollmentFixture(t *testing.T, capacity int, rows ...models.Enrollment) (*EnrollmentService, *scheduleLockerStub, *seatStoreStub, *txProviderMock) {
	t.Helper()
	conv := seoul(t)
	lecture := decemberLecture(conv)
	lecture.MaxParticipants = capacity
	locker := &scheduleLockerStub{lecture: lecture, schedules: make(map[string]models.LectureSchedule)}
	for _, sc := range lecture.Schedules {
		locker.schedules[sc.ID] = sc
	}
	seats := &seatStoreStub{rows: rows}
	provider, _ := newTxProviderMock(t)
	tx := provider.(*txProviderMock)
	svc := NewEnrollmentService(locker, seats, tx, nil, nil, 3, nil)
	svc.now = clockAt(conv, december(10), 12, 0)
	return svc, locker, seats, tx
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	svc, locker, seats, tx := newEnrollmentFixture(t, 2)
	tx.mock.ExpectBegin()
	tx.mock.ExpectCommit()

	resp, err := svc.Enroll(context.Background(), "student-1", "Dec-11")
	require.NoError(t, err)
	assert.Equal(t, "enr-new", resp.EnrollmentID)
	assert.Equal(t, "lec-1", resp.LiveID)
	assert.False(t, resp.Completed)
	assert.Equal(t, 1, locker.bumps)
	assert.Len(t, seats.rows, 1)
	assert.NoError(t, tx.mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollRejections(t *testing.T) {
	cases := []struct {
		name     string
		capacity int
		rows     []models.Enrollment
		schedule string
		deleted  bool
		createEr error
		code     string
	}{
		{name: "unknown schedule", capacity: 2, schedule: "Dec-99", code: appErrors.ErrNotFound.Code},
		{name: "finished schedule", capacity: 2, schedule: "Dec-09", code: appErrors.ErrPreconditionFailed.Code},
		{name: "deleted lecture", capacity: 2, schedule: "Dec-11", deleted: true, code: appErrors.ErrAlreadyDeleted.Code},
		{name: "already enrolled", capacity: 2, schedule: "Dec-11", rows: []models.Enrollment{{ID: "e1", UserID: "student-1", ScheduleID: "Dec-11"}}, code: appErrors.ErrConflict.Code},
		{name: "full", capacity: 1, schedule: "Dec-11", rows: []models.Enrollment{{ID: "e1", UserID: "student-2", ScheduleID: "Dec-11"}}, code: appErrors.ErrConflict.Code},
		{name: "unique race", capacity: 2, schedule: "Dec-11", createEr: &pq.Error{Code: "23505"}, code: appErrors.ErrConflict.Code},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, locker, seats, tx := newEnrollmentFixture(t, tc.capacity, tc.rows...)
			locker.lecture.IsDeleted = tc.deleted
			seats.createErr = tc.createEr
			tx.mock.ExpectBegin()
			tx.mock.ExpectRollback()

			_, err := svc.Enroll(context.Background(), "student-1", tc.schedule)
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
			assert.NoError(t, tx.mock.ExpectationsWereMet())
		})
	}
}

func TestEnrollmentServiceEnrollScheduleReplacedWhileLocking(t *testing.T) {
	svc, locker, seats, tx := newEnrollmentFixture(t, 2)
	locker.onBump = func() { delete(locker.schedules, "Dec-11") }
	tx.mock.ExpectBegin()
	tx.mock.ExpectRollback()

	_, err := svc.Enroll(context.Background(), "student-1", "Dec-11")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, locker.bumps)
	assert.Empty(t, seats.rows)
	assert.NoError(t, tx.mock.ExpectationsWereMet())
}

func TestEnrollmentServiceUnenroll(t *testing.T) {
	svc, _, seats, tx := newEnrollmentFixture(t, 2,
		models.Enrollment{ID: "e1", UserID: "student-1", ScheduleID: "Dec-11"},
		models.Enrollment{ID: "e2", UserID: "student-1", ScheduleID: "Dec-04", Completed: true},
	)

	tx.mock.ExpectBegin()
	tx.mock.ExpectCommit()
	require.NoError(t, svc.Unenroll(context.Background(), "student-1", "Dec-11"))
	assert.Len(t, seats.rows, 1)

	tx.mock.ExpectBegin()
	tx.mock.ExpectRollback()
	err := svc.Unenroll(context.Background(), "student-1", "Dec-04")
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	tx.mock.ExpectBegin()
	tx.mock.ExpectRollback()
	err = svc.Unenroll(context.Background(), "student-2", "Dec-11")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.NoError(t, tx.mock.ExpectationsWereMet())
}
