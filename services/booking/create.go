package booking

import (
	"context"
	"math"
	"time"

	"servicehub/apperrors"
	"servicehub/models"
	"servicehub/services/geo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking validates the request, creates the booking in pending and tries to
// assign a serviceman. Lack of a serviceman leaves the booking unassigned, not failed.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	requester, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}
	service, err := s.resolveTarget(ctx, requester, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := models.NewBooking(uuid.NewString(), requester, req.CustomerID, now)
	b.ServiceID = service.ID
	b.OrganizationID = req.OrganizationID
	b.BranchID = req.BranchID
	b.Location = req.Location
	b.Schedule = models.Schedule{
		RequestedDate:     req.ScheduleTime,
		EstimatedDuration: service.Duration,
	}
	b.Payment = paymentSummary(service, s.Policy.PlatformFeeRate)

	if s.Policy.AutoAssign {
		if err := s.matchAndAssign(ctx, b, now); err != nil {
			if !isUnassignedOutcome(err) {
				return nil, err
			}
			s.Logger.Info("Booking left unassigned",
				zap.String("bookingID", b.ID),
				zap.String("serviceID", b.ServiceID),
				zap.String("reason", string(apperrors.KindOf(err))))
		}
	}

	confirmed, err := s.autoConfirm(b, now)
	if err != nil {
		s.release(ctx, b)
		return nil, err
	}

	if err := s.Repo.Create(ctx, b); err != nil {
		s.release(ctx, b)
		return nil, err
	}

	s.Logger.Info("Booking created",
		zap.String("bookingID", b.ID),
		zap.String("requesterRole", string(requester.Role())),
		zap.String("servicemanID", b.AssignedServiceman()),
		zap.String("status", string(b.Status())))

	s.publish(ctx, b, "", models.StatusPending, requester.RequesterID(), now)
	if confirmed != nil {
		s.publish(ctx, b, confirmed.From, confirmed.To, models.SystemActor.ID, confirmed.Entry.Timestamp)
	}
	return b, nil
}

func (s *DefaultBookingService) validateCreate(req CreateRequest) (models.Requester, error) {
	requester, err := models.NewRequester(req.RequesterRole, req.RequesterID, req.RequesterOrgID)
	if err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	if req.ServiceID == "" {
		return nil, apperrors.Validation("service id is required")
	}
	if req.OrganizationID == "" {
		return nil, apperrors.Validation("organization id is required")
	}
	if req.ScheduleTime.IsZero() {
		return nil, apperrors.Validation("schedule time is required")
	}
	if req.Location != nil && req.Location.Coordinates.HasCoordinates() {
		if err := geo.Validate(req.Location.Coordinates); err != nil {
			return nil, err
		}
	}
	if requester.Role() == models.RoleClientAdmin && req.CustomerID == "" {
		return nil, apperrors.Validation("customer id is required when booking on behalf of a customer")
	}
	return requester, nil
}

// resolveTarget checks the service and organization against the directory.
func (s *DefaultBookingService) resolveTarget(ctx context.Context, requester models.Requester, req CreateRequest) (*models.Service, error) {
	if !requester.CanRequestFor(req.OrganizationID) {
		return nil, apperrors.Forbidden("%s %s cannot book for organization %s", requester.Role(), requester.RequesterID(), req.OrganizationID)
	}
	org, err := s.Directory.GetOrganization(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !org.Active {
		return nil, apperrors.Validation("organization %s is not active", org.ID)
	}
	service, err := s.Directory.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.Active {
		return nil, apperrors.Validation("service %s is not active", service.ID)
	}
	if service.OrganizationID != org.ID {
		return nil, apperrors.Validation("service %s does not belong to organization %s", service.ID, org.ID)
	}
	if s.Availability != nil && !s.Availability.WindowOpen(service.Availability, req.ScheduleTime) {
		return nil, apperrors.Validation("service %s is not offered at %s", service.ID, req.ScheduleTime.Format(time.RFC3339))
	}
	return service, nil
}

func paymentSummary(service *models.Service, feeRate float64) models.Payment {
	fee := math.Round(service.BasePrice*feeRate*100) / 100
	return models.Payment{
		Amount:           service.BasePrice,
		PlatformFee:      fee,
		ProviderEarnings: math.Round((service.BasePrice-fee)*100) / 100,
		Currency:         service.Currency,
	}
}
