package servicemanRepo

import (
	"context"

	"servicehub/models"
)

// ServicemanRepository defines data access for servicemen and their workload aggregate.
type ServicemanRepository interface {
	Create(ctx context.Context, s *models.Serviceman) error
	GetByID(ctx context.Context, id string) (*models.Serviceman, error)
	// FindBySkill returns servicemen holding serviceID whose status is available.
	FindBySkill(ctx context.Context, serviceID string) ([]models.Serviceman, error)
	// UpdateAvailability fails with a conflict when the held bookings exceed the new cap.
	UpdateAvailability(ctx context.Context, id string, availability models.Availability) error
	UpdateProfile(ctx context.Context, id string, p models.ServicemanProfile) error
	UpdateStatus(ctx context.Context, id string, status models.ServicemanStatus) error

	// ReserveSlot and ReleaseSlot are the only writers of workload.currentBookings.
	ReserveSlot(ctx context.Context, servicemanID, bookingID string) (bool, error)
	ReleaseSlot(ctx context.Context, servicemanID, bookingID string) error
}
