package handlers

import (
	"net/http"

	"servicehub/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Booking    *BookingHandler
	Serviceman *ServicemanHandler

	// Health reports the last dependency snapshot.
	Health gin.HandlerFunc
}

// HealthHandler serves the snapshot kept by utils.StartHealthMonitor.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	if !status.CheckedAt.IsZero() && !status.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "dependencies": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm servicehub", "dependencies": status})
}
