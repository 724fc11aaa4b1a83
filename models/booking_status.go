package models

import "fmt"

// BookingStatus is a state of the booking lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCanceled   BookingStatus = "canceled"
	StatusFailed     BookingStatus = "failed"
	StatusDisputed   BookingStatus = "disputed"
)

var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCanceled, StatusFailed, StatusDisputed},
	StatusConfirmed:  {StatusInProgress, StatusCanceled, StatusFailed, StatusDisputed},
	StatusInProgress: {StatusCompleted, StatusFailed, StatusDisputed},
	StatusCompleted:  {},
	StatusCanceled:   {},
	StatusFailed:     {},
	StatusDisputed:   {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is permitted.
func (s BookingStatus) IsTerminal() bool {
	return s.IsValid() && len(validTransitions[s]) == 0
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Active reports whether a booking in this status holds a workload slot when assigned.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProgress
}

func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
