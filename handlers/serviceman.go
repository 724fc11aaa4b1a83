package handlers

import (
	"net/http"

	"servicehub/apperrors"
	"servicehub/middleware"
	"servicehub/models"
	"servicehub/services/serviceman"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServicemanHandler exposes serviceman data entry.
type ServicemanHandler struct {
	Service serviceman.ServicemanService
}

func NewServicemanHandler(svc serviceman.ServicemanService) *ServicemanHandler {
	return &ServicemanHandler{Service: svc}
}

// RegisterServicemanHandler handles POST /api/servicemen. Providers always register
// under their own id.
func (h *ServicemanHandler) RegisterServicemanHandler(c *gin.Context) {
	logger := getLogger(c)
	var m models.Serviceman
	if err := c.ShouldBindJSON(&m); err != nil {
		logger.Warn("Invalid serviceman payload", zap.Error(err))
		respondError(c, apperrors.Validation("invalid serviceman payload: %v", err))
		return
	}
	if actor, ok := middleware.ActorFromContext(c); ok && actor.Role == models.RoleProvider {
		m.ProviderID = actor.ID
	}

	created, err := h.Service.Register(c.Request.Context(), &m)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetServicemanHandler handles GET /api/servicemen/:id.
func (h *ServicemanHandler) GetServicemanHandler(c *gin.Context) {
	v, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// UpdateAvailabilityHandler handles PUT /api/servicemen/:id/availability.
func (h *ServicemanHandler) UpdateAvailabilityHandler(c *gin.Context) {
	var a models.Availability
	if err := c.ShouldBindJSON(&a); err != nil {
		respondError(c, apperrors.Validation("invalid availability payload: %v", err))
		return
	}
	id := c.Param("id")
	if err := h.Service.UpdateAvailability(c.Request.Context(), id, a); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Availability updated", "id": id})
}

// UpdateServicemanStatusHandler handles PATCH /api/servicemen/:id/status.
func (h *ServicemanHandler) UpdateServicemanStatusHandler(c *gin.Context) {
	var req struct {
		Status models.ServicemanStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid status payload: %v", err))
		return
	}
	id := c.Param("id")
	if err := h.Service.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated", "id": id, "status": req.Status})
}

// UpdateServicemanProfileHandler handles PATCH /api/servicemen/:id.
func (h *ServicemanHandler) UpdateServicemanProfileHandler(c *gin.Context) {
	var p models.ServicemanProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, apperrors.Validation("invalid profile payload: %v", err))
		return
	}
	id := c.Param("id")
	if err := h.Service.UpdateProfile(c.Request.Context(), id, p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "id": id})
}
