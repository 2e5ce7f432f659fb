package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoga-lecture-api/internal/dto"
	"github.com/noah-isme/yoga-lecture-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, userID, scheduleID string) (*dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, userID, scheduleID string) error
}

// EnrollmentHandler lets students book occurrences.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler builds a new handler.
func NewEnrollmentHandler(service enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// Enroll godoc
// @Summary Enroll in a lecture occurrence
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/{id}/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	enrollment, err := h.service.Enroll(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Unenroll godoc
// @Summary Cancel an enrollment
// @Tags Enrollments
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id}/enrollments [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.service.Unenroll(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
