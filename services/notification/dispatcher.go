package notification

import (
	"context"

	"servicehub/models"

	"go.uber.org/zap"
)

// LogDispatcher records events without delivering them. Channel delivery lives
// outside this service; this is the default until a transport is plugged in.
type LogDispatcher struct {
	Logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{Logger: logger}
}

func (d *LogDispatcher) Dispatch(_ context.Context, event models.LifecycleEvent) error {
	d.Logger.Info("Booking lifecycle event",
		zap.String("eventID", event.ID),
		zap.String("bookingID", event.BookingID),
		zap.String("oldStatus", string(event.OldStatus)),
		zap.String("newStatus", string(event.NewStatus)),
		zap.String("actorID", event.ActorID),
		zap.String("servicemanID", event.ServicemanID),
		zap.String("customerID", event.CustomerID),
		zap.Time("occurredAt", event.OccurredAt))
	return nil
}
