package booking

import (
	"context"
	"fmt"
	"time"

	"servicehub/apperrors"
	bookingRepo "servicehub/database/repository/booking"
	directoryRepo "servicehub/database/repository/directory"
	"servicehub/models"
	"servicehub/services/assignment"
	"servicehub/services/availability"
	"servicehub/services/matching"
	"servicehub/services/notification"

	"go.uber.org/zap"
)

// DefaultBookingService is the production implementation of BookingService.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	Directory    directoryRepo.Directory
	Availability *availability.Index
	Matcher      *matching.Engine
	Coordinator  *assignment.Coordinator
	Events       notification.Publisher
	Policy       Policy
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewDefaultBookingService(
	repo bookingRepo.BookingRepository,
	directory directoryRepo.Directory,
	matcher *matching.Engine,
	coordinator *assignment.Coordinator,
	events notification.Publisher,
	policy Policy,
	logger *zap.Logger,
) (*DefaultBookingService, error) {
	if repo == nil || directory == nil || matcher == nil || coordinator == nil {
		return nil, fmt.Errorf("booking service initialization error: repository, directory, matcher and coordinator are required")
	}
	if events == nil {
		events = notification.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{
		Repo:         repo,
		Directory:    directory,
		Availability: matcher.Availability,
		Matcher:      matcher,
		Coordinator:  coordinator,
		Events:       events,
		Policy:       policy,
		Logger:       logger,
		Now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.Validation("booking id is required")
	}
	return s.Repo.GetByID(ctx, bookingID)
}

func (s *DefaultBookingService) GetBookingStatusHistory(ctx context.Context, bookingID string) ([]models.StatusEntry, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return b.StatusHistory(), nil
}

// CanCancel reports whether b is pending or confirmed with at least notice left
// before its confirmed (or else requested) date.
func CanCancel(b *models.Booking, now time.Time, notice time.Duration) bool {
	switch b.Status() {
	case models.StatusPending, models.StatusConfirmed:
	default:
		return false
	}
	return b.Schedule.EffectiveDate().Sub(now) >= notice
}

func (s *DefaultBookingService) CanCancel(b *models.Booking) bool {
	return CanCancel(b, s.now(), s.Policy.CancelNotice)
}

func (s *DefaultBookingService) CanCancelBooking(ctx context.Context, bookingID string) (bool, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return s.CanCancel(b), nil
}

func (s *DefaultBookingService) PreviewMatch(ctx context.Context, serviceID string, instant time.Time, location *models.GeoPoint) (matching.Result, error) {
	if instant.IsZero() {
		return matching.Result{}, apperrors.Validation("desired time is required")
	}
	return s.Matcher.FindBestMatch(ctx, serviceID, instant, location)
}

// matchAndAssign runs matching then the conditional commit for an unassigned pending booking.
func (s *DefaultBookingService) matchAndAssign(ctx context.Context, b *models.Booking, at time.Time) error {
	res, err := s.Matcher.FindBestMatch(ctx, b.ServiceID, b.Schedule.RequestedDate, locationPoint(b))
	if err != nil {
		return err
	}
	_, err = s.Coordinator.Assign(ctx, b, res.Ranked, at)
	return err
}

// autoConfirm moves a freshly assigned booking to confirmed when the policy asks for it.
func (s *DefaultBookingService) autoConfirm(b *models.Booking, at time.Time) (*models.StatusChange, error) {
	if !s.Policy.AutoConfirm || b.AssignedServiceman() == "" {
		return nil, nil
	}
	change, err := b.Advance(models.StatusConfirmed, models.SystemActor.ID, "auto-confirmed on assignment", at)
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// publish emits a lifecycle event. Failures are logged and never undo the change.
func (s *DefaultBookingService) publish(ctx context.Context, b *models.Booking, from, to models.BookingStatus, actorID string, at time.Time) {
	event := models.LifecycleEvent{
		ID:           models.LifecycleEventID(b.ID, to),
		BookingID:    b.ID,
		OldStatus:    from,
		NewStatus:    to,
		ActorID:      actorID,
		ServicemanID: b.AssignedServiceman(),
		CustomerID:   b.CustomerID,
		OccurredAt:   at,
	}
	if err := s.Events.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.Logger.Warn("Failed to publish lifecycle event",
			zap.String("bookingID", b.ID),
			zap.String("newStatus", string(to)),
			zap.Error(err))
	}
}

func (s *DefaultBookingService) release(ctx context.Context, b *models.Booking) {
	if err := s.Coordinator.Release(context.WithoutCancel(ctx), b); err != nil {
		s.Logger.Error("Failed to release workload slot",
			zap.String("bookingID", b.ID),
			zap.String("servicemanID", b.AssignedServiceman()),
			zap.Error(err))
	}
}

func locationPoint(b *models.Booking) *models.GeoPoint {
	if b.Location == nil || !b.Location.Coordinates.HasCoordinates() {
		return nil
	}
	p := b.Location.Coordinates
	return &p
}

func isUnassignedOutcome(err error) bool {
	return apperrors.Is(err, apperrors.KindNoMatch) || apperrors.Is(err, apperrors.KindNoAvailableServiceman)
}
