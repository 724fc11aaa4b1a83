// Package workload tracks each serviceman's set of active bookings against their daily cap.
package workload

import (
	"context"
	"fmt"

	"servicehub/models"
)

// Store is the persisted, versioned workload aggregate.
type Store interface {
	// ReserveSlot adds bookingID to the serviceman's current bookings in one atomic
	// conditional update. It reports false when the cap is already reached or the
	// booking is already held.
	ReserveSlot(ctx context.Context, servicemanID, bookingID string) (bool, error)
	// ReleaseSlot removes bookingID from the serviceman's current bookings.
	ReleaseSlot(ctx context.Context, servicemanID, bookingID string) error
}

type Tracker struct {
	Store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{Store: store}
}

// Percentage is the share of the daily cap currently in use.
func Percentage(s models.Serviceman) float64 {
	return float64(len(s.Workload.CurrentBookings)) / float64(s.MaxBookingsPerDay()) * 100
}

// Remaining is how many more bookings the serviceman can take today.
func Remaining(s models.Serviceman) int {
	left := s.MaxBookingsPerDay() - len(s.Workload.CurrentBookings)
	if left < 0 {
		return 0
	}
	return left
}

// Reserve performs the conditional commit for one candidate.
func (t *Tracker) Reserve(ctx context.Context, servicemanID, bookingID string) (bool, error) {
	if servicemanID == "" || bookingID == "" {
		return false, fmt.Errorf("reserve: serviceman and booking ids are required")
	}
	return t.Store.ReserveSlot(ctx, servicemanID, bookingID)
}

// Release frees the slot held by bookingID.
func (t *Tracker) Release(ctx context.Context, servicemanID, bookingID string) error {
	if servicemanID == "" || bookingID == "" {
		return nil
	}
	return t.Store.ReleaseSlot(ctx, servicemanID, bookingID)
}
