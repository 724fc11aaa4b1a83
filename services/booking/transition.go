package booking

import (
	"context"
	"errors"

	"servicehub/apperrors"
	bookingRepo "servicehub/database/repository/booking"
	"servicehub/models"

	"go.uber.org/zap"
)

// TransitionBooking applies one status change. Entering a terminal status releases
// the assigned serviceman's slot in the same commit. A concurrent writer makes this
// fail with a retryable Conflict.
func (s *DefaultBookingService) TransitionBooking(ctx context.Context, bookingID string, to models.BookingStatus, actor models.Actor, note string) (*models.Booking, error) {
	if !to.IsValid() {
		return nil, apperrors.Validation("unknown booking status %q", to)
	}
	if actor.ID == "" {
		return nil, apperrors.Validation("actor id is required")
	}
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from := b.Status()
	if !from.CanTransitionTo(to) {
		return nil, apperrors.InvalidTransition("%v", &models.InvalidTransitionError{From: from, To: to})
	}
	if err := s.authorizeTransition(b, to, actor); err != nil {
		return nil, err
	}
	// Unassigned bookings stay pending so the re-match sweep can still reach them.
	if to == models.StatusConfirmed && b.AssignedServiceman() == "" {
		return nil, apperrors.InvalidTransition("booking %s has no assigned serviceman and cannot be confirmed", b.ID)
	}

	change, err := b.Advance(to, actor.ID, note, s.now())
	if err != nil {
		var ite *models.InvalidTransitionError
		if errors.As(err, &ite) {
			return nil, apperrors.InvalidTransition("%v", err)
		}
		return nil, err
	}

	effects := bookingRepo.TransitionEffects{}
	if to.IsTerminal() {
		effects.ReleaseServiceman = b.AssignedServiceman()
		effects.CountCompletion = to == models.StatusCompleted && effects.ReleaseServiceman != ""
	}
	if err := s.Repo.CommitTransition(ctx, b, effects); err != nil {
		return nil, err
	}

	s.Logger.Info("Booking transitioned",
		zap.String("bookingID", b.ID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.String("actorID", actor.ID),
		zap.String("actorRole", string(actor.Role)))

	s.publish(ctx, b, change.From, change.To, actor.ID, change.Entry.Timestamp)
	return b, nil
}

// authorizeTransition applies the role rules. Requesting parties may only cancel
// (inside the notice window) or dispute their own bookings; operators are gated by
// the transition table alone.
func (s *DefaultBookingService) authorizeTransition(b *models.Booking, to models.BookingStatus, actor models.Actor) error {
	switch actor.Role {
	case models.RoleProvider, models.RoleSuperAdmin, models.RoleSystem:
		return nil
	case models.RoleCustomer:
		owner := actor.ID == b.CustomerID
		if r := b.Requester(); r != nil && r.RequesterID() == actor.ID {
			owner = true
		}
		if !owner {
			return apperrors.Forbidden("customer %s does not own booking %s", actor.ID, b.ID)
		}
	case models.RoleClientAdmin:
		if actor.OrganizationID == "" || actor.OrganizationID != b.OrganizationID {
			return apperrors.Forbidden("client admin %s cannot manage bookings of organization %s", actor.ID, b.OrganizationID)
		}
	default:
		return apperrors.Forbidden("role %q cannot change booking status", actor.Role)
	}

	switch to {
	case models.StatusCanceled:
		if !s.CanCancel(b) {
			return apperrors.InvalidTransition("booking %s can no longer be canceled: less than %s before the scheduled time", b.ID, s.Policy.CancelNotice)
		}
		return nil
	case models.StatusDisputed:
		return nil
	default:
		return apperrors.Forbidden("%s cannot move booking %s to %s", actor.Role, b.ID, to)
	}
}
