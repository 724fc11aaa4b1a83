package assignment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"servicehub/apperrors"
	"servicehub/models"
	"servicehub/services/matching"
	"servicehub/services/workload"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// slotStore applies the same check-and-update the Mongo store performs, under a mutex.
type slotStore struct {
	mu        sync.Mutex
	caps      map[string]int
	held      map[string]map[string]bool
	conflicts map[string]int // pending write conflicts per serviceman
	calls     int
}

func newSlotStore(caps map[string]int) *slotStore {
	return &slotStore{caps: caps, held: map[string]map[string]bool{}, conflicts: map[string]int{}}
}

func (s *slotStore) ReserveSlot(_ context.Context, servicemanID, bookingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.conflicts[servicemanID] > 0 {
		s.conflicts[servicemanID]--
		return false, apperrors.Conflict("write conflict on serviceman %s", servicemanID)
	}
	set := s.held[servicemanID]
	if set == nil {
		set = map[string]bool{}
		s.held[servicemanID] = set
	}
	if set[bookingID] || len(set) >= s.caps[servicemanID] {
		return false, nil
	}
	set[bookingID] = true
	return true, nil
}

func (s *slotStore) ReleaseSlot(_ context.Context, servicemanID, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held[servicemanID], bookingID)
	return nil
}

func candidates(ids ...string) []matching.Candidate {
	out := make([]matching.Candidate, len(ids))
	for i, id := range ids {
		out[i] = matching.Candidate{
			Serviceman: models.Serviceman{ID: id},
			Criteria:   models.AssignmentCriteria{Score: float64(100 - i)},
		}
	}
	return out
}

func pending(id string) *models.Booking {
	return models.NewBooking(id, models.Customer{ID: "cust-1"}, "", now)
}

func TestAssignTakesTopCandidate(t *testing.T) {
	store := newSlotStore(map[string]int{"s1": 2, "s2": 2})
	c := NewCoordinator(workload.NewTracker(store), 3, nil)
	b := pending("b1")

	got, err := c.Assign(context.Background(), b, candidates("s1", "s2"), now)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got.ID() != "s1" || b.AssignedServiceman() != "s1" {
		t.Fatalf("assigned to %q/%q, want s1", got.ID(), b.AssignedServiceman())
	}
	a := b.Assignment()
	if !a.AutoAssigned || a.Criteria.Score != 100 {
		t.Fatalf("assignment snapshot not recorded: %+v", a)
	}
	if !store.held["s1"]["b1"] {
		t.Fatalf("slot not reserved")
	}
}

func TestAssignFallsThroughFullCandidates(t *testing.T) {
	store := newSlotStore(map[string]int{"s1": 0, "s2": 1})
	c := NewCoordinator(workload.NewTracker(store), 3, nil)
	b := pending("b1")

	got, err := c.Assign(context.Background(), b, candidates("s1", "s2"), now)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got.ID() != "s2" {
		t.Fatalf("assigned to %s, want next-best s2", got.ID())
	}
}

func TestConcurrentBookingsForSingleSlot(t *testing.T) {
	store := newSlotStore(map[string]int{"s1": 1})
	c := NewCoordinator(workload.NewTracker(store), 3, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	bookings := []*models.Booking{pending("b1"), pending("b2")}
	for i := range bookings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Assign(context.Background(), bookings[i], candidates("s1"), now)
		}(i)
	}
	wg.Wait()

	assigned, exhausted := 0, 0
	for i, err := range errs {
		switch {
		case err == nil:
			assigned++
		case apperrors.Is(err, apperrors.KindNoAvailableServiceman):
			exhausted++
			if bookings[i].AssignedServiceman() != "" {
				t.Fatalf("losing booking must stay unassigned")
			}
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if assigned != 1 || exhausted != 1 {
		t.Fatalf("assigned=%d exhausted=%d, want 1/1", assigned, exhausted)
	}
	if len(store.held["s1"]) != 1 {
		t.Fatalf("cap exceeded: %v", store.held["s1"])
	}
}

func TestManyConcurrentBookingsRespectCaps(t *testing.T) {
	store := newSlotStore(map[string]int{"s1": 2, "s2": 3})
	c := NewCoordinator(workload.NewTracker(store), 3, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	assigned := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := pending(fmt.Sprintf("b%d", i))
			if _, err := c.Assign(context.Background(), b, candidates("s1", "s2"), now); err == nil {
				mu.Lock()
				assigned++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if assigned != 5 {
		t.Fatalf("assigned=%d, want 5", assigned)
	}
	if len(store.held["s1"]) > 2 || len(store.held["s2"]) > 3 {
		t.Fatalf("cap exceeded: s1=%d s2=%d", len(store.held["s1"]), len(store.held["s2"]))
	}
}

func TestConflictRetriesSameCandidate(t *testing.T) {
	store := newSlotStore(map[string]int{"s1": 1, "s2": 1})
	store.conflicts["s1"] = 1
	c := NewCoordinator(workload.NewTracker(store), 3, nil)

	got, err := c.Assign(context.Background(), pending("b1"), candidates("s1", "s2"), now)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got.ID() != "s1" || store.calls != 2 {
		t.Fatalf("got %s after %d calls, want s1 after 2", got.ID(), store.calls)
	}
}

func TestAttemptBudgetIsBounded(t *testing.T) {
	store := newSlotStore(map[string]int{"s1": 1})
	store.conflicts["s1"] = 10
	c := NewCoordinator(workload.NewTracker(store), 3, nil)

	_, err := c.Assign(context.Background(), pending("b1"), candidates("s1"), now)
	if !apperrors.Is(err, apperrors.KindNoAvailableServiceman) {
		t.Fatalf("err=%v, want no_available_serviceman", err)
	}
	if store.calls != 3 {
		t.Fatalf("calls=%d, want 3", store.calls)
	}
}

func TestEmptyCandidateList(t *testing.T) {
	c := NewCoordinator(workload.NewTracker(newSlotStore(nil)), 3, nil)
	_, err := c.Assign(context.Background(), pending("b1"), nil, now)
	if !apperrors.Is(err, apperrors.KindNoAvailableServiceman) {
		t.Fatalf("err=%v, want no_available_serviceman", err)
	}
}

func TestReleaseFreesAssignedSlot(t *testing.T) {
	store := newSlotStore(map[string]int{"s1": 1})
	c := NewCoordinator(workload.NewTracker(store), 3, nil)
	b := pending("b1")
	if _, err := c.Assign(context.Background(), b, candidates("s1"), now); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := c.Release(context.Background(), b); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if len(store.held["s1"]) != 0 {
		t.Fatalf("slot still held")
	}
	// An unassigned booking releases nothing.
	if err := c.Release(context.Background(), pending("b2")); err != nil {
		t.Fatalf("Release unassigned: %v", err)
	}
}
