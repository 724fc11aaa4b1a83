package notification

import (
	"context"
	"errors"
	"testing"

	"servicehub/models"
	"servicehub/services/tasks"

	"github.com/hibiken/asynq"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "t1"}, nil
}

type recordingPublisher struct {
	events []models.LifecycleEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e models.LifecycleEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func TestQueuePublisherEnqueuesLifecycleTask(t *testing.T) {
	enq := &recordingEnqueuer{}
	p := NewQueuePublisher(enq)
	event := models.LifecycleEvent{ID: "e1", BookingID: "b1", NewStatus: models.StatusPending}

	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(enq.tasks) != 1 || enq.tasks[0].Type() != tasks.TypeBookingLifecycle {
		t.Fatalf("tasks=%v", enq.tasks)
	}
}

func TestQueuePublisherTreatsDuplicateAsDelivered(t *testing.T) {
	p := NewQueuePublisher(&recordingEnqueuer{err: asynq.ErrTaskIDConflict})
	if err := p.Publish(context.Background(), models.LifecycleEvent{ID: "e1", BookingID: "b1", NewStatus: models.StatusPending}); err != nil {
		t.Fatalf("duplicate event should not fail: %v", err)
	}

	p = NewQueuePublisher(&recordingEnqueuer{err: errors.New("redis down")})
	if err := p.Publish(context.Background(), models.LifecycleEvent{ID: "e2", BookingID: "b1", NewStatus: models.StatusPending}); err == nil {
		t.Fatalf("enqueue failure should surface")
	}
}

func TestFanoutReachesEveryPublisher(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("boom")}
	f := Fanout{failing, ok}

	err := f.Publish(context.Background(), models.LifecycleEvent{BookingID: "b1"})
	if err == nil {
		t.Fatalf("fanout should report the failing publisher")
	}
	if len(ok.events) != 1 || len(failing.events) != 1 {
		t.Fatalf("every publisher should see the event")
	}
	if err := (Fanout{}).Publish(context.Background(), models.LifecycleEvent{}); err != nil {
		t.Fatalf("empty fanout: %v", err)
	}
}
