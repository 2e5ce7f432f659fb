package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/yoga-lecture-api/internal/middleware"
	"github.com/noah-isme/yoga-lecture-api/internal/models"
	appErrors "github.com/noah-isme/yoga-lecture-api/pkg/errors"
	"github.com/noah-isme/yoga-lecture-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorID returns the caller's user id, writing 401 and returning false when absent.
func actorID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}
