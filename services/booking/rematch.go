package booking

import (
	"context"

	"servicehub/apperrors"
	"servicehub/models"

	"go.uber.org/zap"
)

// RematchBooking retries matching for a pending booking that has no serviceman.
// An already assigned booking is returned unchanged. When nobody is available the
// booking is returned together with the NoMatch or NoAvailableServiceman error.
func (s *DefaultBookingService) RematchBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.AssignedServiceman() != "" {
		return b, nil
	}
	if b.Status() != models.StatusPending {
		return nil, apperrors.InvalidTransition("booking %s is %s; only pending bookings can be re-matched", b.ID, b.Status())
	}

	now := s.now()
	if err := s.matchAndAssign(ctx, b, now); err != nil {
		if isUnassignedOutcome(err) {
			return b, err
		}
		return nil, err
	}
	confirmed, err := s.autoConfirm(b, now)
	if err != nil {
		s.release(ctx, b)
		return nil, err
	}

	if err := s.Repo.SaveAssignment(ctx, b); err != nil {
		s.release(ctx, b)
		return nil, err
	}

	s.Logger.Info("Booking re-matched",
		zap.String("bookingID", b.ID),
		zap.String("servicemanID", b.AssignedServiceman()))
	if confirmed != nil {
		s.publish(ctx, b, confirmed.From, confirmed.To, models.SystemActor.ID, confirmed.Entry.Timestamp)
	}
	return b, nil
}

// RematchPending sweeps the oldest unassigned pending bookings and reports how many
// were assigned.
func (s *DefaultBookingService) RematchPending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	pending, err := s.Repo.ListUnassignedPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return assigned, err
		}
		b, err := s.RematchBooking(ctx, p.ID)
		switch {
		case err == nil:
			if b.AssignedServiceman() != "" {
				assigned++
			}
		case isUnassignedOutcome(err):
			s.Logger.Debug("Booking still unassigned", zap.String("bookingID", p.ID))
		case apperrors.Is(err, apperrors.KindConflict), apperrors.Is(err, apperrors.KindInvalidTransition):
			s.Logger.Info("Skipping booking changed during sweep", zap.String("bookingID", p.ID), zap.Error(err))
		default:
			s.Logger.Error("Re-match failed", zap.String("bookingID", p.ID), zap.Error(err))
		}
	}
	return assigned, nil
}
