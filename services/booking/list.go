package booking

import (
	"context"

	"servicehub/apperrors"
	bookingRepo "servicehub/database/repository/booking"
	"servicehub/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery holds the optional listing filters and the 1-based page.
type ListQuery struct {
	Status         models.BookingStatus
	CustomerID     string
	OrganizationID string
	BranchID       string
	ServicemanID   string
	Page           int
	Limit          int
}

// Page is one slice of a booking listing.
type Page struct {
	Bookings []*models.Booking `json:"bookings"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// ListBookings returns the bookings actor may see, newest first. Customers see the
// bookings made for or by them and client admins see their organization's; operators
// see everything and may filter freely.
func (s *DefaultBookingService) ListBookings(ctx context.Context, actor models.Actor, q ListQuery) (*Page, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return nil, apperrors.Validation("unknown booking status %q", q.Status)
	}
	if q.Page < 0 || q.Limit < 0 {
		return nil, apperrors.Validation("page and limit must not be negative")
	}
	if q.Page == 0 {
		q.Page = 1
	}
	switch {
	case q.Limit == 0:
		q.Limit = DefaultPageSize
	case q.Limit > MaxPageSize:
		q.Limit = MaxPageSize
	}

	f := bookingRepo.ListFilter{
		CustomerID:     q.CustomerID,
		OrganizationID: q.OrganizationID,
		BranchID:       q.BranchID,
		ServicemanID:   q.ServicemanID,
		Status:         q.Status,
		Offset:         (q.Page - 1) * q.Limit,
		Limit:          q.Limit,
	}
	switch actor.Role {
	case models.RoleCustomer:
		if q.CustomerID != "" && q.CustomerID != actor.ID {
			return nil, apperrors.Forbidden("customer %s cannot list bookings of %s", actor.ID, q.CustomerID)
		}
		f.CustomerID = actor.ID
	case models.RoleClientAdmin:
		if actor.OrganizationID == "" {
			return nil, apperrors.Forbidden("client admin %s has no organization", actor.ID)
		}
		if q.OrganizationID != "" && q.OrganizationID != actor.OrganizationID {
			return nil, apperrors.Forbidden("client admin %s cannot list bookings of organization %s", actor.ID, q.OrganizationID)
		}
		f.OrganizationID = actor.OrganizationID
	case models.RoleProvider, models.RoleSuperAdmin, models.RoleSystem:
	default:
		return nil, apperrors.Forbidden("role %q cannot list bookings", actor.Role)
	}

	bookings, total, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Page{Bookings: bookings, Total: total, Page: q.Page, Limit: q.Limit}, nil
}
