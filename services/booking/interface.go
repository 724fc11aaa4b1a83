// Package booking owns the booking lifecycle: creation with matching and
// assignment, table-checked transitions, cancellation eligibility and re-matching.
package booking

import (
	"context"
	"time"

	"servicehub/models"
	"servicehub/services/matching"
)

// CreateRequest carries a booking request after identity resolution.
type CreateRequest struct {
	RequesterID    string
	RequesterRole  models.Role
	RequesterOrgID string // client admins only
	CustomerID     string // optional when a client admin books on a customer's behalf
	ServiceID      string
	OrganizationID string
	BranchID       string
	ScheduleTime   time.Time
	Location       *models.Location
}

// BookingService is the external interface of the booking core.
type BookingService interface {
	CreateBooking(ctx context.Context, req CreateRequest) (*models.Booking, error)
	TransitionBooking(ctx context.Context, bookingID string, to models.BookingStatus, actor models.Actor, note string) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, actor models.Actor, q ListQuery) (*Page, error)
	GetBookingStatusHistory(ctx context.Context, bookingID string) ([]models.StatusEntry, error)
	CanCancelBooking(ctx context.Context, bookingID string) (bool, error)
	RematchBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	RematchPending(ctx context.Context, limit int) (int, error)
	PreviewMatch(ctx context.Context, serviceID string, instant time.Time, location *models.GeoPoint) (matching.Result, error)
}

// Policy holds the configurable lifecycle rules.
type Policy struct {
	CancelNotice    time.Duration
	PlatformFeeRate float64
	AutoAssign      bool
	AutoConfirm     bool
}

func DefaultPolicy() Policy {
	return Policy{
		CancelNotice:    24 * time.Hour,
		PlatformFeeRate: 0.10,
		AutoAssign:      true,
	}
}
