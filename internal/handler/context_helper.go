package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/courtside/courtside-api/internal/middleware"
	"github.com/courtside/courtside-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return claims
}
