package models

import "time"

// LifecycleEvent is emitted after every committed booking status change.
type LifecycleEvent struct {
	ID           string        `json:"id"`
	BookingID    string        `json:"bookingId"`
	OldStatus    BookingStatus `json:"oldStatus,omitempty"`
	NewStatus    BookingStatus `json:"newStatus"`
	ActorID      string        `json:"actorId"`
	ServicemanID string        `json:"servicemanId,omitempty"`
	CustomerID   string        `json:"customerId,omitempty"`
	OccurredAt   time.Time     `json:"occurredAt"`
}

// LifecycleEventID names the event for bookingID entering status. The transition
// table has no cycles, so a booking enters each status at most once and a
// re-published change keeps its id.
func LifecycleEventID(bookingID string, status BookingStatus) string {
	return bookingID + ":" + string(status)
}
