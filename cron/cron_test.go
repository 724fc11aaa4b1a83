package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"servicehub/models"
	"servicehub/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type recordingDispatcher struct {
	events []models.LifecycleEvent
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, e models.LifecycleEvent) error {
	d.events = append(d.events, e)
	return d.err
}

func TestHandleLifecycleTaskDispatches(t *testing.T) {
	d := &recordingDispatcher{}
	task, _, err := tasks.NewLifecycleTask(models.LifecycleEvent{
		ID:         "evt-1",
		BookingID:  "b-1",
		NewStatus:  models.StatusConfirmed,
		OccurredAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewLifecycleTask: %v", err)
	}

	if err := HandleLifecycleTask(d, zap.NewNop())(context.Background(), task); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(d.events) != 1 || d.events[0].BookingID != "b-1" {
		t.Fatalf("dispatched %+v", d.events)
	}
}

func TestHandleLifecycleTaskSkipsMalformedPayload(t *testing.T) {
	d := &recordingDispatcher{}
	task := asynq.NewTask(tasks.TypeBookingLifecycle, []byte(`{"bookingId":""}`))

	err := HandleLifecycleTask(d, zap.NewNop())(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if len(d.events) != 0 {
		t.Fatalf("malformed task reached the dispatcher")
	}
}

func TestHandleLifecycleTaskRetriesDispatchFailure(t *testing.T) {
	d := &recordingDispatcher{err: errors.New("smtp down")}
	task, _, _ := tasks.NewLifecycleTask(models.LifecycleEvent{BookingID: "b-1", NewStatus: models.StatusCompleted})

	err := HandleLifecycleTask(d, zap.NewNop())(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected a retryable error, got %v", err)
	}
}

type countingRematcher struct {
	limit int
	calls int
}

func (r *countingRematcher) RematchPending(_ context.Context, limit int) (int, error) {
	r.calls++
	r.limit = limit
	return 2, nil
}

func TestRematchSweep(t *testing.T) {
	r := &countingRematcher{}
	runRematch(r, 25, zap.NewNop())
	if r.calls != 1 || r.limit != 25 {
		t.Fatalf("calls=%d limit=%d", r.calls, r.limit)
	}

	if _, err := NewRematchSweep("not a schedule", 10, r, zap.NewNop()); err == nil {
		t.Fatalf("expected invalid schedule to be rejected")
	}
	c, err := NewRematchSweep("@every 5m", 10, r, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRematchSweep: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Fatalf("expected one scheduled entry, got %d", len(c.Entries()))
	}
}
