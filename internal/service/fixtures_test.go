package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
	"github.com/noah-isme/yoga-lecture-api/pkg/timeutil"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func seoul(t *testing.T) *timeutil.Converter {
	t.Helper()
	conv, err := timeutil.NewConverter("Asia/Seoul")
	require.NoError(t, err)
	return conv
}

func december(day int) timeutil.Date {
	return timeutil.Date{Year: 2024, Month: time.December, Day: day}
}

func clockAt(conv *timeutil.Converter, d timeutil.Date, hour, minute int) func() time.Time {
	at := conv.At(d, timeutil.NewTimeOfDay(hour, minute, 0)).UTC()
	return func() time.Time { return at }
}

// occurrence builds a one hour occurrence with a readable id such as "Dec-11".
func occurrence(conv *timeutil.Converter, lectureID string, d timeutil.Date, hour int) models.LectureSchedule {
	start := conv.At(d, timeutil.NewTimeOfDay(hour, 0, 0)).UTC()
	return models.LectureSchedule{
		ID:        fmt.Sprintf("%s-%02d", d.Month.String()[:3], d.Day),
		LectureID: lectureID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

// decemberLecture is a MON/WED/FRI 14:00-15:00 lecture over December 2024.
func decemberLecture(conv *timeutil.Converter) *models.LiveLecture {
	lecture := &models.LiveLecture{
		ID:              "lec-1",
		InstructorID:    "teacher-1",
		Title:           "Morning flow",
		Content:         "vinyasa",
		MaxParticipants: 10,
		Version:         1,
		CreatedAt:       time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, day := range []int{2, 4, 6, 9, 11, 13, 16, 18, 20, 23, 25, 27, 30} {
		lecture.Schedules = append(lecture.Schedules, occurrence(conv, lecture.ID, december(day), 14))
	}
	return lecture
}

type lectureStoreStub struct {
	lectures map[string]*models.LiveLecture
	lockErrs []error
	locks    int
	created  []string
	inserted []models.LectureSchedule
	deleted  []string
	updates  int
	nextID   int
}

func newLectureStoreStub(lectures ...*models.LiveLecture) *lectureStoreStub {
	s := &lectureStoreStub{lectures: make(map[string]*models.LiveLecture)}
	for _, l := range lectures {
		s.lectures[l.ID] = cloneLecture(l)
	}
	return s
}

func cloneLecture(l *models.LiveLecture) *models.LiveLecture {
	cp := *l
	cp.Schedules = append([]models.LectureSchedule(nil), l.Schedules...)
	return &cp
}

func (s *lectureStoreStub) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error) {
	l, ok := s.lectures[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneLecture(l), nil
}

func (s *lectureStoreStub) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.LiveLecture, error) {
	s.locks++
	if len(s.lockErrs) > 0 {
		err := s.lockErrs[0]
		s.lockErrs = s.lockErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.FindByID(ctx, exec, id)
}

func (s *lectureStoreStub) ListByInstructor(ctx context.Context, instructorID string) ([]models.LiveLecture, error) {
	var out []models.LiveLecture
	for _, l := range s.lectures {
		if l.InstructorID == instructorID && !l.IsDeleted {
			out = append(out, *cloneLecture(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *lectureStoreStub) Create(ctx context.Context, exec sqlx.ExtContext, lecture *models.LiveLecture) error {
	s.nextID++
	lecture.ID = fmt.Sprintf("lec-new-%d", s.nextID)
	lecture.Version = 1
	s.created = append(s.created, lecture.ID)
	s.lectures[lecture.ID] = cloneLecture(lecture)
	return nil
}

func (s *lectureStoreStub) Update(ctx context.Context, exec sqlx.ExtContext, lecture *models.LiveLecture) error {
	s.updates++
	lecture.Version++
	s.lectures[lecture.ID] = cloneLecture(lecture)
	return nil
}

func (s *lectureStoreStub) InsertSchedules(ctx context.Context, exec sqlx.ExtContext, schedules []models.LectureSchedule) error {
	for i := range schedules {
		if schedules[i].ID == "" {
			schedules[i].ID = "new-" + schedules[i].StartTime.Format("0102")
		}
	}
	s.inserted = append(s.inserted, schedules...)
	if l, ok := s.lectures[firstLectureID(schedules)]; ok {
		l.Schedules = append(l.Schedules, schedules...)
	}
	return nil
}

func (s *lectureStoreStub) DeleteSchedules(ctx context.Context, exec sqlx.ExtContext, ids []string) (int64, error) {
	s.deleted = append(s.deleted, ids...)
	return int64(len(ids)), nil
}

func firstLectureID(schedules []models.LectureSchedule) string {
	if len(schedules) == 0 {
		return ""
	}
	return schedules[0].LectureID
}

type enrollmentStoreStub struct {
	bySchedule map[string][]models.Enrollment
	created    []models.Enrollment
	nextID     int
}

func newEnrollmentStoreStub(enrollments ...models.Enrollment) *enrollmentStoreStub {
	s := &enrollmentStoreStub{bySchedule: make(map[string][]models.Enrollment)}
	for _, e := range enrollments {
		s.add(e)
	}
	return s
}

func (s *enrollmentStoreStub) add(e models.Enrollment) {
	if e.ID == "" {
		s.nextID++
		e.ID = fmt.Sprintf("enr-%d", s.nextID)
	}
	s.bySchedule[e.ScheduleID] = append(s.bySchedule[e.ScheduleID], e)
}

func (s *enrollmentStoreStub) ListBySchedules(ctx context.Context, exec sqlx.ExtContext, scheduleIDs []string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, id := range scheduleIDs {
		out = append(out, s.bySchedule[id]...)
	}
	return out, nil
}

func (s *enrollmentStoreStub) CountByLecture(ctx context.Context, exec sqlx.ExtContext, lectureID string) (int, error) {
	total := 0
	for _, list := range s.bySchedule {
		total += len(list)
	}
	return total, nil
}

func (s *enrollmentStoreStub) CreateBatch(ctx context.Context, exec sqlx.ExtContext, enrollments []models.Enrollment) error {
	for _, e := range enrollments {
		s.add(e)
	}
	s.created = append(s.created, enrollments...)
	return nil
}

func (s *enrollmentStoreStub) DeleteBySchedules(ctx context.Context, exec sqlx.ExtContext, scheduleIDs []string) (int64, error) {
	var n int64
	for _, id := range scheduleIDs {
		n += int64(len(s.bySchedule[id]))
		delete(s.bySchedule, id)
	}
	return n, nil
}

func (s *enrollmentStoreStub) usersOn(scheduleID string) []string {
	var ids []string
	for _, e := range s.bySchedule[scheduleID] {
		ids = append(ids, e.UserID)
	}
	return ids
}

type userDirectoryStub map[string]*models.User

func (s userDirectoryStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func defaultUsers() userDirectoryStub {
	return userDirectoryStub{
		"teacher-1": {ID: "teacher-1", Nickname: "Mina", Role: models.RoleTeacher, Active: true},
		"teacher-2": {ID: "teacher-2", Nickname: "Jun", Role: models.RoleTeacher, Active: true},
		"student-1": {ID: "student-1", Nickname: "Ara", Role: models.RoleStudent, Active: true},
		"student-2": {ID: "student-2", Nickname: "Bo", Role: models.RoleStudent, Active: true},
	}
}

type scheduleChange struct {
	From, To string
	UserID   string
}

type notifierStub struct {
	changes       []scheduleChange
	cancelled     []string
	cancelledFrom []string
}

func (n *notifierStub) OnScheduleChanged(ctx context.Context, lecture *models.LiveLecture, from, to models.LectureSchedule, userID string) {
	n.changes = append(n.changes, scheduleChange{From: from.ID, To: to.ID, UserID: userID})
}

func (n *notifierStub) OnLectureCancelled(ctx context.Context, lecture *models.LiveLecture, schedules []models.LectureSchedule, userIDs []string) {
	n.cancelled = append(n.cancelled, userIDs...)
	for _, s := range schedules {
		n.cancelledFrom = append(n.cancelledFrom, s.ID)
	}
}

type memoryCacheRepo struct {
	items map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}
