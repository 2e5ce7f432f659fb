package handler

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoga-lecture-api/internal/models"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
	"github.com/noah-isme/yoga-lecture-api/pkg/response"
)

type profileReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthHandler exposes the authenticated caller's identity.
type AuthHandler struct {
	users profileReader
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(users profileReader) *AuthHandler {
	return &AuthHandler{users: users}
}

// Me godoc
// @Summary Current user profile
// @Description Resolve the bearer token to the stored user profile
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	user, err := h.users.FindByID(c.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "user not found"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
