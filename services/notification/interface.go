package notification

import (
	"context"
	"errors"

	"servicehub/models"
)

// Publisher hands lifecycle events to the notification collaborator.
// Publishing is fire-and-forget for callers: a failure never undoes the transition.
type Publisher interface {
	Publish(ctx context.Context, event models.LifecycleEvent) error
}

// Dispatcher delivers a lifecycle event to its channels (email, SMS, push, in-app).
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.LifecycleEvent) error
}

// Fanout publishes each event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event models.LifecycleEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, models.LifecycleEvent) error { return nil }
