package handlers

import (
	"net/http"
	"time"

	"servicehub/apperrors"
	"servicehub/middleware"
	"servicehub/models"
	"servicehub/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

type createBookingRequest struct {
	CustomerID     string           `json:"customerId"`
	ServiceID      string           `json:"serviceId" binding:"required"`
	OrganizationID string           `json:"organizationId" binding:"required"`
	BranchID       string           `json:"branchId"`
	ScheduleTime   time.Time        `json:"scheduleTime" binding:"required"`
	Location       *models.Location `json:"location"`
}

type transitionRequest struct {
	Status models.BookingStatus `json:"status" binding:"required"`
	Note   string               `json:"note"`
}

type listQuery struct {
	Status         models.BookingStatus `form:"status"`
	CustomerID     string               `form:"customerId"`
	OrganizationID string               `form:"organizationId"`
	BranchID       string               `form:"branchId"`
	ServicemanID   string               `form:"servicemanId"`
	Page           int                  `form:"page"`
	Limit          int                  `form:"limit"`
}

type previewRequest struct {
	ServiceID string           `json:"serviceId" binding:"required"`
	Instant   time.Time        `json:"instant" binding:"required"`
	Location  *models.GeoPoint `json:"location"`
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	logger := getLogger(c)
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid booking request", zap.Error(err))
		respondError(c, apperrors.Validation("invalid booking request: %v", err))
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), booking.CreateRequest{
		RequesterID:    actor.ID,
		RequesterRole:  actor.Role,
		RequesterOrgID: actor.OrganizationID,
		CustomerID:     req.CustomerID,
		ServiceID:      req.ServiceID,
		OrganizationID: req.OrganizationID,
		BranchID:       req.BranchID,
		ScheduleTime:   req.ScheduleTime,
		Location:       req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info("Booking created via API",
		zap.String("bookingID", b.ID),
		zap.String("requesterID", actor.ID))
	c.JSON(http.StatusCreated, gin.H{
		"booking":  b,
		"assigned": b.AssignedServiceman() != "",
	})
}

// ListBookingsHandler handles GET /api/bookings. The caller's role bounds what is listed.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return
	}
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, apperrors.Validation("invalid list query: %v", err))
		return
	}
	page, err := h.Service.ListBookings(c.Request.Context(), actor, booking.ListQuery{
		Status:         q.Status,
		CustomerID:     q.CustomerID,
		OrganizationID: q.OrganizationID,
		BranchID:       q.BranchID,
		ServicemanID:   q.ServicemanID,
		Page:           q.Page,
		Limit:          q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetBookingHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, ok := h.loadVisible(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b)
}

// TransitionBookingHandler handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) TransitionBookingHandler(c *gin.Context) {
	logger := getLogger(c)
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid status request: %v", err))
		return
	}

	id := c.Param("id")
	b, err := h.Service.TransitionBooking(c.Request.Context(), id, req.Status, actor, req.Note)
	if err != nil {
		if apperrors.Retryable(err) {
			logger.Info("Status change lost a race", zap.String("bookingID", id), zap.Error(err))
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GetBookingHistoryHandler handles GET /api/bookings/:id/history.
func (h *BookingHandler) GetBookingHistoryHandler(c *gin.Context) {
	b, ok := h.loadVisible(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "history": b.StatusHistory()})
}

// CanCancelHandler handles GET /api/bookings/:id/cancellable.
func (h *BookingHandler) CanCancelHandler(c *gin.Context) {
	b, ok := h.loadVisible(c)
	if !ok {
		return
	}
	can, err := h.Service.CanCancelBooking(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "cancellable": can})
}

// RematchBookingHandler handles POST /api/bookings/:id/rematch.
func (h *BookingHandler) RematchBookingHandler(c *gin.Context) {
	id := c.Param("id")
	b, err := h.Service.RematchBooking(c.Request.Context(), id)
	if err != nil {
		if isUnassigned(err) && b != nil {
			c.JSON(http.StatusOK, gin.H{
				"booking":  b,
				"assigned": false,
				"reason":   string(apperrors.KindOf(err)),
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "assigned": b.AssignedServiceman() != ""})
}

// PreviewMatchHandler handles POST /api/matching/preview. It ranks candidates without
// reserving anything.
func (h *BookingHandler) PreviewMatchHandler(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid preview request: %v", err))
		return
	}
	res, err := h.Service.PreviewMatch(c.Request.Context(), req.ServiceID, req.Instant, req.Location)
	if err != nil {
		if isUnassigned(err) {
			c.JSON(http.StatusOK, gin.H{"candidates": []any{}, "reason": string(apperrors.KindOf(err))})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": res.Ranked})
}

// loadVisible fetches the :id booking and checks the caller may see it.
func (h *BookingHandler) loadVisible(c *gin.Context) (*models.Booking, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return nil, false
	}
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !canView(actor, b) {
		respondError(c, apperrors.Forbidden("%s %s cannot view booking %s", actor.Role, actor.ID, b.ID))
		return nil, false
	}
	return b, true
}

func canView(actor models.Actor, b *models.Booking) bool {
	switch actor.Role {
	case models.RoleCustomer:
		if actor.ID == b.CustomerID {
			return true
		}
		r := b.Requester()
		return r != nil && r.RequesterID() == actor.ID
	case models.RoleClientAdmin:
		return actor.OrganizationID != "" && actor.OrganizationID == b.OrganizationID
	case models.RoleProvider, models.RoleSuperAdmin, models.RoleSystem:
		return true
	}
	return false
}
