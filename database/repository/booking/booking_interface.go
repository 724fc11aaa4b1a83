package bookingRepo

import (
	"context"

	"servicehub/models"
)

// TransitionEffects are the cross-aggregate writes committed with a status change.
type TransitionEffects struct {
	// ReleaseServiceman frees the booking's slot on this serviceman.
	ReleaseServiceman string
	// CountCompletion bumps the serviceman's completed counter.
	CountCompletion bool
}

// ListFilter narrows a booking listing. Empty fields match everything.
type ListFilter struct {
	// CustomerID matches bookings for the customer or requested by them.
	CustomerID     string
	OrganizationID string
	BranchID       string
	ServicemanID   string
	Status         models.BookingStatus

	Offset int
	Limit  int
}

// BookingRepository persists bookings with an optimistic version check on every write.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// SaveAssignment stores b's assignment if b.Version is still current.
	SaveAssignment(ctx context.Context, b *models.Booking) error
	// CommitTransition stores b's new status and history together with effects,
	// atomically, if b.Version is still current.
	CommitTransition(ctx context.Context, b *models.Booking, effects TransitionEffects) error
	// ListUnassignedPending returns the oldest pending bookings without an assignment.
	ListUnassignedPending(ctx context.Context, limit int) ([]*models.Booking, error)
	// List returns one page of bookings matching f, newest first, and the total match count.
	List(ctx context.Context, f ListFilter) ([]*models.Booking, int64, error)
}
