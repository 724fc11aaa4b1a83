package booking

import (
	"context"
	"errors"
	"sort"
	"sync"

	"servicehub/apperrors"
	bookingRepo "servicehub/database/repository/booking"
	"servicehub/models"

	"go.mongodb.org/mongo-driver/bson"
)

// memStore keeps bookings and servicemen in memory with the same version and
// workload rules as the Mongo repositories. Bookings are stored encoded so callers
// never share state with the store.
type memStore struct {
	mu         sync.Mutex
	bookings   map[string][]byte
	servicemen map[string]*models.Serviceman

	// beforeCommit runs once, outside the lock, at the start of the next CommitTransition.
	beforeCommit func()
	createErr    error
}

func newMemStore(servicemen ...models.Serviceman) *memStore {
	m := &memStore{bookings: map[string][]byte{}, servicemen: map[string]*models.Serviceman{}}
	for i := range servicemen {
		m.addServiceman(servicemen[i])
	}
	return m
}

func (m *memStore) addServiceman(s models.Serviceman) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := s
	m.servicemen[s.ID] = &cp
}

func (m *memStore) serviceman(id string) models.Serviceman {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *m.servicemen[id]
	s.Workload.CurrentBookings = append([]string(nil), s.Workload.CurrentBookings...)
	return s
}

func encode(b *models.Booking) []byte {
	data, err := bson.Marshal(b)
	if err != nil {
		panic(err)
	}
	return data
}

func decode(data []byte) *models.Booking {
	var b models.Booking
	if err := bson.Unmarshal(data, &b); err != nil {
		panic(err)
	}
	return &b
}

func (m *memStore) Create(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.bookings[b.ID]; ok {
		return apperrors.Conflict("booking %s already exists", b.ID)
	}
	b.Version = 1
	m.bookings[b.ID] = encode(b)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking %s not found", id)
	}
	return decode(data), nil
}

func (m *memStore) replaceLocked(b *models.Booking) error {
	data, ok := m.bookings[b.ID]
	if !ok {
		return apperrors.NotFound("booking %s not found", b.ID)
	}
	if decode(data).Version != b.Version {
		return apperrors.Conflict("booking %s was modified concurrently", b.ID)
	}
	b.Version++
	m.bookings[b.ID] = encode(b)
	return nil
}

func (m *memStore) SaveAssignment(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaceLocked(b)
}

func (m *memStore) CommitTransition(_ context.Context, b *models.Booking, effects bookingRepo.TransitionEffects) error {
	if hook := m.beforeCommit; hook != nil {
		m.beforeCommit = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.replaceLocked(b); err != nil {
		return err
	}
	if s, ok := m.servicemen[effects.ReleaseServiceman]; ok {
		if removeID(&s.Workload.CurrentBookings, b.ID) && effects.CountCompletion {
			s.Workload.CompletedBookings++
		}
	}
	return nil
}

func (m *memStore) ListUnassignedPending(_ context.Context, limit int) ([]*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Booking
	for _, data := range m.bookings {
		b := decode(data)
		if b.Status() == models.StatusPending && b.AssignedServiceman() == "" {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) List(_ context.Context, f bookingRepo.ListFilter) ([]*models.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Booking
	for _, data := range m.bookings {
		b := decode(data)
		if f.CustomerID != "" {
			r := b.Requester()
			if b.CustomerID != f.CustomerID && (r == nil || r.RequesterID() != f.CustomerID) {
				continue
			}
		}
		if (f.OrganizationID != "" && b.OrganizationID != f.OrganizationID) ||
			(f.BranchID != "" && b.BranchID != f.BranchID) ||
			(f.ServicemanID != "" && b.AssignedServiceman() != f.ServicemanID) ||
			(f.Status != "" && b.Status() != f.Status) {
			continue
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	total := int64(len(all))
	if f.Offset >= len(all) {
		return []*models.Booking{}, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (m *memStore) ReserveSlot(_ context.Context, servicemanID, bookingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.servicemen[servicemanID]
	if !ok {
		return false, apperrors.NotFound("serviceman %s not found", servicemanID)
	}
	for _, id := range s.Workload.CurrentBookings {
		if id == bookingID {
			return false, nil
		}
	}
	if len(s.Workload.CurrentBookings) >= s.MaxBookingsPerDay() {
		return false, nil
	}
	s.Workload.CurrentBookings = append(s.Workload.CurrentBookings, bookingID)
	s.Workload.Version++
	return true, nil
}

func (m *memStore) ReleaseSlot(_ context.Context, servicemanID, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.servicemen[servicemanID]; ok {
		removeID(&s.Workload.CurrentBookings, bookingID)
	}
	return nil
}

func (m *memStore) FindBySkill(_ context.Context, serviceID string) ([]models.Serviceman, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Serviceman
	for _, s := range m.servicemen {
		if s.HasSkill(serviceID) && s.Status == models.ServicemanAvailable {
			cp := *s
			cp.Workload.CurrentBookings = append([]string(nil), s.Workload.CurrentBookings...)
			out = append(out, cp)
		}
	}
	return out, nil
}

func removeID(ids *[]string, id string) bool {
	for i, v := range *ids {
		if v == id {
			*ids = append((*ids)[:i], (*ids)[i+1:]...)
			return true
		}
	}
	return false
}

type memDirectory struct {
	services map[string]models.Service
	orgs     map[string]models.Organization
}

func (d memDirectory) GetService(_ context.Context, id string) (*models.Service, error) {
	s, ok := d.services[id]
	if !ok {
		return nil, apperrors.NotFound("service %s not found", id)
	}
	return &s, nil
}

func (d memDirectory) GetOrganization(_ context.Context, id string) (*models.Organization, error) {
	o, ok := d.orgs[id]
	if !ok {
		return nil, apperrors.NotFound("organization %s not found", id)
	}
	return &o, nil
}

type eventLog struct {
	mu     sync.Mutex
	events []models.LifecycleEvent
	fail   bool
}

func (l *eventLog) Publish(_ context.Context, e models.LifecycleEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	if l.fail {
		return errors.New("queue unavailable")
	}
	return nil
}

func (l *eventLog) snapshot() []models.LifecycleEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.LifecycleEvent(nil), l.events...)
}
