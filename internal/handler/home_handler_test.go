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
)

type homeServiceMock struct {
	lastQuery dto.FeedQuery
	calls     []string
}

func (m *homeServiceMock) Home(ctx context.Context, userID string, query dto.FeedQuery) ([]dto.FeedItemResponse, *models.Pagination, error) {
	m.calls = append(m.calls, "home")
	m.lastQuery = query
	return []dto.FeedItemResponse{{LiveID: "lec-1", LectureDay: "WED"}}, &models.Pagination{Page: query.Page, PageSize: query.Size, TotalCount: 1}, nil
}

func (m *homeServiceMock) History(ctx context.Context, userID string, query dto.FeedQuery) ([]dto.FeedItemResponse, *models.Pagination, error) {
	m.calls = append(m.calls, "history")
	return nil, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func TestHomeHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &homeServiceMock{}
	h := NewHomeHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
		c.Next()
	})
	r.GET("/home", h.Home)
	r.GET("/history", h.History)

	w := serve(r, http.MethodGet, "/home?page=2&size=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.FeedQuery{Page: 2, Size: 5}, svc.lastQuery)
	body := decodeEnvelope(t, w)
	assert.Equal(t, float64(1), body["pagination"].(map[string]interface{})["total_count"])

	w = serve(r, http.MethodGet, "/home?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"home", "history"}, svc.calls)
}
