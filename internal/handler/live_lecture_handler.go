package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoga-lecture-api/internal/dto"
	"github.com/noah-isme/yoga-lecture-api/internal/service"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
	"github.com/noah-isme/yoga-lecture-api/pkg/response"
)

type liveLectureService interface {
	Create(ctx context.Context, instructorID string, req dto.CreateLiveLectureRequest) (*dto.LiveLectureResponse, error)
	Update(ctx context.Context, actorID, lectureID string, req dto.UpdateLiveLectureRequest) (*dto.UpdateLiveLectureResponse, error)
	Delete(ctx context.Context, actorID, lectureID string) error
	SetOnAir(ctx context.Context, actorID, lectureID string, req dto.SetOnAirRequest) (*dto.LiveLectureResponse, error)
	Get(ctx context.Context, lectureID string) (*dto.LiveLectureResponse, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]dto.LiveLectureResponse, error)
}

type scheduleExporter interface {
	Export(ctx context.Context, actorID, lectureID, format string) (*service.ExportResult, error)
}

// LiveLectureHandler exposes live lecture management endpoints.
type LiveLectureHandler struct {
	service  liveLectureService
	exporter scheduleExporter
}

// NewLiveLectureHandler builds a new handler.
func NewLiveLectureHandler(service liveLectureService, exporter scheduleExporter) *LiveLectureHandler {
	return &LiveLectureHandler{service: service, exporter: exporter}
}

// Create godoc
// @Summary Create a live lecture
// @Description Generates one occurrence per matching weekday between startDate and endDate.
// @Tags LiveLectures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateLiveLectureRequest true "Lecture payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /live-lectures [post]
func (h *LiveLectureHandler) Create(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	var req dto.CreateLiveLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid live lecture payload"))
		return
	}
	lecture, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lecture)
}

// List godoc
// @Summary List the caller's live lectures
// @Tags LiveLectures
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /live-lectures [get]
func (h *LiveLectureHandler) List(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	lectures, err := h.service.ListByInstructor(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lectures, nil, map[string]interface{}{"count": len(lectures)})
}

// Get godoc
// @Summary Get a live lecture with its occurrences
// @Tags LiveLectures
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /live-lectures/{id} [get]
func (h *LiveLectureHandler) Get(c *gin.Context) {
	lecture, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lecture)
}

// Update godoc
// @Summary Update a live lecture
// @Description Any schedule field replaces the upcoming occurrences and moves enrolled students to the nearest new one.
// @Tags LiveLectures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Param payload body dto.UpdateLiveLectureRequest true "Changed fields"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /live-lectures/{id} [put]
func (h *LiveLectureHandler) Update(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	var req dto.UpdateLiveLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid live lecture payload"))
		return
	}
	result, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Delete godoc
// @Summary Delete a live lecture
// @Description Soft-deletes the lecture. Completed occurrences stay for history when students enrolled.
// @Tags LiveLectures
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /live-lectures/{id} [delete]
func (h *LiveLectureHandler) Delete(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetOnAir godoc
// @Summary Start or stop broadcasting
// @Tags LiveLectures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Param payload body dto.SetOnAirRequest true "Broadcast flag"
// @Success 200 {object} response.Envelope
// @Router /live-lectures/{id}/on-air [put]
func (h *LiveLectureHandler) SetOnAir(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	var req dto.SetOnAirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid on-air payload"))
		return
	}
	lecture, err := h.service.SetOnAir(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lecture)
}

// Export godoc
// @Summary Download the lecture timetable
// @Tags LiveLectures
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /live-lectures/{id}/schedules/export [get]
func (h *LiveLectureHandler) Export(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), actor, c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
