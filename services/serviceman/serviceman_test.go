package serviceman

import (
	"context"
	"testing"

	"servicehub/apperrors"
	"servicehub/models"
)

type memRepo struct {
	items map[string]*models.Serviceman
}

func (r *memRepo) Create(_ context.Context, s *models.Serviceman) error {
	if _, ok := r.items[s.ID]; ok {
		return apperrors.Conflict("serviceman %s already exists", s.ID)
	}
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.Serviceman, error) {
	s, ok := r.items[id]
	if !ok {
		return nil, apperrors.NotFound("serviceman %s not found", id)
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) FindBySkill(context.Context, string) ([]models.Serviceman, error) { return nil, nil }

func (r *memRepo) UpdateAvailability(_ context.Context, id string, a models.Availability) error {
	s, ok := r.items[id]
	if !ok {
		return apperrors.NotFound("serviceman %s not found", id)
	}
	if held, limit := len(s.Workload.CurrentBookings), (models.Serviceman{Availability: a}).MaxBookingsPerDay(); held > limit {
		return apperrors.Conflict("serviceman %s holds %d bookings, more than the new daily cap of %d", id, held, limit)
	}
	s.Availability = a
	return nil
}

func (r *memRepo) UpdateProfile(_ context.Context, id string, p models.ServicemanProfile) error {
	s, ok := r.items[id]
	if !ok {
		return apperrors.NotFound("serviceman %s not found", id)
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Skills != nil {
		s.Skills = p.Skills
	}
	if p.Location != nil {
		s.Location = *p.Location
	}
	return nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id string, status models.ServicemanStatus) error {
	s, ok := r.items[id]
	if !ok {
		return apperrors.NotFound("serviceman %s not found", id)
	}
	s.Status = status
	return nil
}

func (r *memRepo) ReserveSlot(context.Context, string, string) (bool, error) { return false, nil }

func (r *memRepo) ReleaseSlot(context.Context, string, string) error { return nil }

func valid() *models.Serviceman {
	return &models.Serviceman{
		ProviderID: "prov-1",
		Name:       "Achieng",
		Skills:     []models.Skill{{ServiceID: "svc-1", Level: "expert"}},
		Location:   models.GeoPoint{Coordinates: []float64{36.82, -1.29}},
		Availability: models.Availability{
			RegularSchedule: []models.DaySchedule{{
				DayOfWeek: "Monday",
				TimeSlots: []models.TimeSlot{{Start: "08:00", End: "17:00", Available: true}},
			}},
			Preferences: models.Preferences{MaxBookingsPerDay: 4},
		},
		Workload: models.Workload{CurrentBookings: []string{"smuggled"}},
	}
}

func TestRegisterDefaultsAndOwnsWorkload(t *testing.T) {
	svc := NewDefaultServicemanService(&memRepo{items: map[string]*models.Serviceman{}}, nil)

	m, err := svc.Register(context.Background(), valid())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if m.ID == "" || m.Status != models.ServicemanAvailable || m.Location.Type != "Point" {
		t.Fatalf("defaults not applied: %+v", m)
	}
	if len(m.Workload.CurrentBookings) != 0 {
		t.Fatalf("registration must not accept a workload: %v", m.Workload.CurrentBookings)
	}

	view, err := svc.Get(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.WorkloadPercentage != 0 || view.RemainingToday != 4 {
		t.Fatalf("view=%+v", view)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewDefaultServicemanService(&memRepo{items: map[string]*models.Serviceman{}}, nil)

	cases := []struct {
		name   string
		mutate func(*models.Serviceman)
		want   apperrors.Kind
	}{
		{"no name", func(m *models.Serviceman) { m.Name = "" }, apperrors.KindValidation},
		{"no skills", func(m *models.Serviceman) { m.Skills = nil }, apperrors.KindValidation},
		{"bad status", func(m *models.Serviceman) { m.Status = "sleeping" }, apperrors.KindValidation},
		{"no location", func(m *models.Serviceman) { m.Location = models.GeoPoint{} }, apperrors.KindInvalidCoordinates},
		{"bad slot", func(m *models.Serviceman) { m.Availability.RegularSchedule[0].TimeSlots[0].End = "25:00" }, apperrors.KindValidation},
		{"negative cap", func(m *models.Serviceman) { m.Availability.Preferences.MaxBookingsPerDay = -1 }, apperrors.KindValidation},
	}
	for _, tt := range cases {
		m := valid()
		tt.mutate(m)
		if _, err := svc.Register(context.Background(), m); apperrors.KindOf(err) != tt.want {
			t.Fatalf("%s: err=%v, want %s", tt.name, err, tt.want)
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := &memRepo{items: map[string]*models.Serviceman{}}
	svc := NewDefaultServicemanService(repo, nil)
	m, _ := svc.Register(context.Background(), valid())

	if err := svc.UpdateStatus(context.Background(), m.ID, models.ServicemanOnLeave); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if repo.items[m.ID].Status != models.ServicemanOnLeave {
		t.Fatalf("status not stored")
	}
	if err := svc.UpdateStatus(context.Background(), m.ID, "gone"); !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("err=%v, want validation", err)
	}
	if err := svc.UpdateStatus(context.Background(), "missing", models.ServicemanBusy); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("err=%v, want not_found", err)
	}
}

func TestUpdateAvailabilityKeepsHeldBookingsWithinCap(t *testing.T) {
	repo := &memRepo{items: map[string]*models.Serviceman{}}
	svc := NewDefaultServicemanService(repo, nil)
	m, err := svc.Register(context.Background(), valid())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	repo.items[m.ID].Workload.CurrentBookings = []string{"b-1", "b-2", "b-3"}

	cases := []struct {
		name    string
		cap     int
		wantErr apperrors.Kind
	}{
		{"below held", 1, apperrors.KindConflict},
		{"equal to held", 3, ""},
		{"unset uses default", 0, ""},
		{"raised", 6, ""},
	}
	for _, tt := range cases {
		a := valid().Availability
		a.Preferences.MaxBookingsPerDay = tt.cap
		err := svc.UpdateAvailability(context.Background(), m.ID, a)
		if tt.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: UpdateAvailability: %v", tt.name, err)
			}
			if got := repo.items[m.ID].Availability.Preferences.MaxBookingsPerDay; got != tt.cap {
				t.Fatalf("%s: cap=%d, want %d", tt.name, got, tt.cap)
			}
			continue
		}
		if apperrors.KindOf(err) != tt.wantErr {
			t.Fatalf("%s: err=%v, want %s", tt.name, err, tt.wantErr)
		}
	}

	// The rejected update must leave the stored cap alone, so the percentage stays bounded.
	view, err := svc.Get(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.WorkloadPercentage > 100 {
		t.Fatalf("workload percentage %.0f exceeds 100", view.WorkloadPercentage)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := &memRepo{items: map[string]*models.Serviceman{}}
	svc := NewDefaultServicemanService(repo, nil)
	m, err := svc.Register(context.Background(), valid())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	name, phone, empty := "Wanjiru", "+254700000001", ""
	loc := models.GeoPoint{Coordinates: []float64{36.9, -1.3}}
	err = svc.UpdateProfile(context.Background(), m.ID, models.ServicemanProfile{
		Name:     &name,
		Phone:    &phone,
		Skills:   []models.Skill{{ServiceID: "svc-2"}},
		Location: &loc,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got := repo.items[m.ID]
	if got.Name != name || got.Phone != phone || !got.HasSkill("svc-2") || got.HasSkill("svc-1") || got.Location.Type != "Point" {
		t.Fatalf("profile not stored: %+v", got)
	}

	cases := []struct {
		name string
		id   string
		p    models.ServicemanProfile
		want apperrors.Kind
	}{
		{"empty name", m.ID, models.ServicemanProfile{Name: &empty}, apperrors.KindValidation},
		{"empty skills", m.ID, models.ServicemanProfile{Skills: []models.Skill{}}, apperrors.KindValidation},
		{"skill without service", m.ID, models.ServicemanProfile{Skills: []models.Skill{{Level: "expert"}}}, apperrors.KindValidation},
		{"bad location", m.ID, models.ServicemanProfile{Location: &models.GeoPoint{Coordinates: []float64{200, 0}}}, apperrors.KindInvalidCoordinates},
		{"missing", "nobody", models.ServicemanProfile{Name: &name}, apperrors.KindNotFound},
	}
	for _, tt := range cases {
		if err := svc.UpdateProfile(context.Background(), tt.id, tt.p); apperrors.KindOf(err) != tt.want {
			t.Fatalf("%s: err=%v, want %s", tt.name, err, tt.want)
		}
	}
}
