package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Test is a liveness probe for kiosk clients.
// @Summary Test endpoint
// @Description Returns a fixed message and the server time
// @Tags System
// @Produce json
// @Success 200 {object} TestResponse
// @Router /test [get]
func Test(c *gin.Context) {
	c.JSON(http.StatusOK, TestResponse{
		Message:   "Test function is working!",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Health reports liveness and, when activeBridges is set, how many realtime
// bridges are open.
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(activeBridges func() int) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{Status: "ok"}
		if activeBridges != nil {
			resp.ActiveBridges = activeBridges()
		}
		c.JSON(http.StatusOK, resp)
	}
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
}
