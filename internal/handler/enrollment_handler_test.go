package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/yoga-lecture-api/internal/dto"
	"github.com/noah-isme/yoga-lecture-api/internal/middleware"
	"github.com/noah-isme/yoga-lecture-api/internal/models"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
)

type enrollmentServiceMock struct {
	userID, scheduleID string
	enrollErr          error
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, userID, scheduleID string) (*dto.EnrollmentResponse, error) {
	m.userID, m.scheduleID = userID, scheduleID
	if m.enrollErr != nil {
		return nil, m.enrollErr
	}
	return &dto.EnrollmentResponse{EnrollmentID: "enr-1", ScheduleID: scheduleID, LiveID: "lec-1"}, nil
}

func (m *enrollmentServiceMock) Unenroll(ctx context.Context, userID, scheduleID string) error {
	m.userID, m.scheduleID = userID, scheduleID
	return nil
}

func TestEnrollmentHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &enrollmentServiceMock{}
	h := NewEnrollmentHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
		c.Next()
	})
	r.POST("/schedules/:id/enrollments", h.Enroll)
	r.DELETE("/schedules/:id/enrollments", h.Unenroll)

	w := serve(r, http.MethodPost, "/schedules/sch-1/enrollments", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "student-1", svc.userID)
	assert.Equal(t, "sch-1", svc.scheduleID)

	svc.enrollErr = appErrors.Clone(appErrors.ErrConflict, "lecture is full")
	w = serve(r, http.MethodPost, "/schedules/sch-1/enrollments", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodDelete, "/schedules/sch-1/enrollments", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
