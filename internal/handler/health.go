package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler holds dependencies for the service-level endpoints
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// HealthCheck is the unauthenticated liveness probe. It touches no
// patient data.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"status": "healthy",
			"time":   time.Now().UTC(),
		},
	})
}
