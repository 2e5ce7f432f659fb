package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoga-lecture-api/internal/dto"
	"github.com/noah-isme/yoga-lecture-api/internal/models"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
	"github.com/noah-isme/yoga-lecture-api/pkg/response"
)

type homeService interface {
	Home(ctx context.Context, userID string, query dto.FeedQuery) ([]dto.FeedItemResponse, *models.Pagination, error)
	History(ctx context.Context, userID string, query dto.FeedQuery) ([]dto.FeedItemResponse, *models.Pagination, error)
}

// HomeHandler serves the caller's upcoming and past occurrences.
type HomeHandler struct {
	service homeService
}

// NewHomeHandler builds a new handler.
func NewHomeHandler(service homeService) *HomeHandler {
	return &HomeHandler{service: service}
}

// Home godoc
// @Summary Upcoming occurrences the caller teaches or attends
// @Tags Home
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /home [get]
func (h *HomeHandler) Home(c *gin.Context) {
	h.feed(c, h.service.Home)
}

// History godoc
// @Summary Finished occurrences the caller taught or attended
// @Tags Home
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /history [get]
func (h *HomeHandler) History(c *gin.Context) {
	h.feed(c, h.service.History)
}

func (h *HomeHandler) feed(c *gin.Context, load func(context.Context, string, dto.FeedQuery) ([]dto.FeedItemResponse, *models.Pagination, error)) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	var query dto.FeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pagination"))
		return
	}
	items, pagination, err := load(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
