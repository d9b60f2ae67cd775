package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/martialcamp/enrollment-api/internal/middleware"
	"github.com/martialcamp/enrollment-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.TokenClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// limitFromQuery parses the limit query parameter. The value is applied
// literally, so "0" returns a pointer to zero; absent or unparsable values
// return nil, meaning no cap.
func limitFromQuery(c *gin.Context) *int {
	raw := c.Query("limit")
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
