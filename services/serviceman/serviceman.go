// Package serviceman handles data entry for servicemen: registration, weekly
// availability and the coarse status gate.
package serviceman

import (
	"context"
	"time"

	"servicehub/apperrors"
	servicemanRepo "servicehub/database/repository/serviceman"
	"servicehub/models"
	"servicehub/services/availability"
	"servicehub/services/geo"
	"servicehub/services/workload"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServicemanService is the data-entry surface over the servicemen collection.
type ServicemanService interface {
	Register(ctx context.Context, s *models.Serviceman) (*models.Serviceman, error)
	Get(ctx context.Context, id string) (*View, error)
	UpdateAvailability(ctx context.Context, id string, a models.Availability) error
	UpdateProfile(ctx context.Context, id string, p models.ServicemanProfile) error
	UpdateStatus(ctx context.Context, id string, status models.ServicemanStatus) error
}

// View is a serviceman with derived workload figures.
type View struct {
	*models.Serviceman
	WorkloadPercentage float64 `json:"workloadPercentage"`
	RemainingToday     int     `json:"remainingToday"`
}

type DefaultServicemanService struct {
	Repo   servicemanRepo.ServicemanRepository
	Logger *zap.Logger
}

func NewDefaultServicemanService(repo servicemanRepo.ServicemanRepository, logger *zap.Logger) *DefaultServicemanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultServicemanService{Repo: repo, Logger: logger}
}

func (s *DefaultServicemanService) Register(ctx context.Context, m *models.Serviceman) (*models.Serviceman, error) {
	if err := validate(m); err != nil {
		return nil, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = models.ServicemanAvailable
	}
	m.Location.Type = "Point"
	// Workload is owned by the assignment path; registration always starts empty.
	m.Workload = models.Workload{CurrentBookings: []string{}}
	m.Performance = models.Performance{}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now

	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.Logger.Info("Serviceman registered",
		zap.String("servicemanID", m.ID),
		zap.String("providerID", m.ProviderID),
		zap.Int("skills", len(m.Skills)))
	return m, nil
}

func (s *DefaultServicemanService) Get(ctx context.Context, id string) (*View, error) {
	m, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &View{
		Serviceman:         m,
		WorkloadPercentage: workload.Percentage(*m),
		RemainingToday:     workload.Remaining(*m),
	}, nil
}

func (s *DefaultServicemanService) UpdateAvailability(ctx context.Context, id string, a models.Availability) error {
	if err := validateAvailability(a); err != nil {
		return err
	}
	if err := s.Repo.UpdateAvailability(ctx, id, a); err != nil {
		return err
	}
	s.Logger.Info("Serviceman availability updated",
		zap.String("servicemanID", id),
		zap.Int("maxBookingsPerDay", a.Preferences.MaxBookingsPerDay))
	return nil
}

// UpdateProfile edits descriptive attributes. Workload, status and availability
// have their own paths.
func (s *DefaultServicemanService) UpdateProfile(ctx context.Context, id string, p models.ServicemanProfile) error {
	if p.Name != nil && *p.Name == "" {
		return apperrors.Validation("serviceman name must not be empty")
	}
	if p.Skills != nil {
		if len(p.Skills) == 0 {
			return apperrors.Validation("at least one skill is required")
		}
		for i, sk := range p.Skills {
			if sk.ServiceID == "" {
				return apperrors.Validation("skill %d has no service id", i)
			}
		}
	}
	if p.Location != nil {
		if err := geo.Validate(*p.Location); err != nil {
			return err
		}
		p.Location.Type = "Point"
	}
	if err := s.Repo.UpdateProfile(ctx, id, p); err != nil {
		return err
	}
	s.Logger.Info("Serviceman profile updated", zap.String("servicemanID", id))
	return nil
}

func (s *DefaultServicemanService) UpdateStatus(ctx context.Context, id string, status models.ServicemanStatus) error {
	if !status.Valid() {
		return apperrors.Validation("unknown serviceman status %q", status)
	}
	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.Logger.Info("Serviceman status changed", zap.String("servicemanID", id), zap.String("status", string(status)))
	return nil
}

func validate(m *models.Serviceman) error {
	if m == nil {
		return apperrors.Validation("serviceman is required")
	}
	if m.Name == "" {
		return apperrors.Validation("serviceman name is required")
	}
	if m.ProviderID == "" {
		return apperrors.Validation("provider id is required")
	}
	if len(m.Skills) == 0 {
		return apperrors.Validation("at least one skill is required")
	}
	for i, sk := range m.Skills {
		if sk.ServiceID == "" {
			return apperrors.Validation("skill %d has no service id", i)
		}
	}
	if m.Status != "" && !m.Status.Valid() {
		return apperrors.Validation("unknown serviceman status %q", m.Status)
	}
	if err := geo.Validate(m.Location); err != nil {
		return err
	}
	return validateAvailability(m.Availability)
}

func validateAvailability(a models.Availability) error {
	if msg, ok := availability.ValidSchedule(a); !ok {
		return apperrors.Validation("invalid availability: %s", msg)
	}
	p := a.Preferences
	if p.MaxBookingsPerDay < 0 || p.BreakBetweenBookings < 0 || p.MaxTravelDistance < 0 {
		return apperrors.Validation("availability preferences must not be negative")
	}
	return nil
}
