package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"servicehub/models"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingLifecycle = "booking:lifecycle"
	QueueNotifications   = "notifications"
)

// NewLifecycleTask wraps a lifecycle event for the notification worker.
// The event id doubles as the task id so a republished event is not delivered twice.
func NewLifecycleTask(event models.LifecycleEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingLifecycle, b)
	opts := []asynq.Option{
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	if event.ID != "" {
		opts = append(opts, asynq.TaskID(event.ID))
	}
	return task, opts, nil
}

// ParseLifecycleTask decodes the payload written by NewLifecycleTask.
func ParseLifecycleTask(task *asynq.Task) (models.LifecycleEvent, error) {
	var event models.LifecycleEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return event, fmt.Errorf("invalid %s payload: %w", TypeBookingLifecycle, err)
	}
	if event.BookingID == "" || event.NewStatus == "" {
		return event, fmt.Errorf("invalid %s payload: booking id and new status are required", TypeBookingLifecycle)
	}
	return event, nil
}
