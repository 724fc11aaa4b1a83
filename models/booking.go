package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// StatusEntry is one append-only record of the booking's status history.
type StatusEntry struct {
	Status    BookingStatus `bson:"status" json:"status"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
	ActorID   string        `bson:"updatedBy" json:"updatedBy"`
	Note      string        `bson:"notes,omitempty" json:"notes,omitempty"`
}

// AssignmentCriteria is the scoring snapshot captured when a serviceman was matched.
type AssignmentCriteria struct {
	SkillsMatched      []string `bson:"skillsMatched" json:"skillsMatched"`
	DistanceKm         *float64 `bson:"distanceKm,omitempty" json:"distanceKm,omitempty"`
	WorkloadPercentage float64  `bson:"workloadPercentage" json:"workloadPercentage"`
	DistanceScore      float64  `bson:"distanceScore" json:"distanceScore"`
	WorkloadScore      float64  `bson:"workloadScore" json:"workloadScore"`
	RatingScore        float64  `bson:"ratingScore" json:"ratingScore"`
	Score              float64  `bson:"score" json:"score"`
}

// Assignment binds one serviceman to the booking.
type Assignment struct {
	ServicemanID string             `bson:"serviceman" json:"serviceman"`
	AutoAssigned bool               `bson:"autoAssigned" json:"autoAssigned"`
	Criteria     AssignmentCriteria `bson:"criteria" json:"criteria"`
	AssignedAt   time.Time          `bson:"assignedAt" json:"assignedAt"`
}

type Reschedule struct {
	OldDate     time.Time `bson:"oldDate" json:"oldDate"`
	NewDate     time.Time `bson:"newDate" json:"newDate"`
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
	RequestedBy string    `bson:"requestedBy" json:"requestedBy"`
}

type Schedule struct {
	RequestedDate     time.Time    `bson:"requestedDate" json:"requestedDate"`
	ConfirmedDate     *time.Time   `bson:"confirmedDate,omitempty" json:"confirmedDate,omitempty"`
	EstimatedDuration int          `bson:"estimatedDuration,omitempty" json:"estimatedDuration,omitempty"` // minutes
	ActualDuration    int          `bson:"actualDuration,omitempty" json:"actualDuration,omitempty"`       // minutes
	Rescheduled       []Reschedule `bson:"rescheduled,omitempty" json:"rescheduled,omitempty"`
}

// EffectiveDate is the date the engagement is expected to happen.
func (s Schedule) EffectiveDate() time.Time {
	if s.ConfirmedDate != nil {
		return *s.ConfirmedDate
	}
	return s.RequestedDate
}

// Payment is a read-only summary owned by the payment collaborator.
type Payment struct {
	Amount           float64 `bson:"amount" json:"amount"`
	PlatformFee      float64 `bson:"platformFee" json:"platformFee"`
	ProviderEarnings float64 `bson:"providerEarnings" json:"providerEarnings"`
	Currency         string  `bson:"currency,omitempty" json:"currency,omitempty"`
}

// Booking is one service engagement. Its status, history and assignment
// change only through Advance, Assign and Unassign.
type Booking struct {
	ID             string
	CustomerID     string
	ServiceID      string
	OrganizationID string
	BranchID       string
	Schedule       Schedule
	Location       *Location
	Payment        Payment
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	requester  Requester
	status     BookingStatus
	history    []StatusEntry
	assignment *Assignment
}

// NewBooking creates a booking in pending with its initial history entry.
func NewBooking(id string, requester Requester, customerID string, at time.Time) *Booking {
	if customerID == "" && requester != nil && requester.Role() == RoleCustomer {
		customerID = requester.RequesterID()
	}
	actor := ""
	if requester != nil {
		actor = requester.RequesterID()
	}
	return &Booking{
		ID:         id,
		CustomerID: customerID,
		CreatedAt:  at,
		UpdatedAt:  at,
		requester:  requester,
		status:     StatusPending,
		history: []StatusEntry{{
			Status:    StatusPending,
			Timestamp: at,
			ActorID:   actor,
		}},
	}
}

func (b *Booking) Status() BookingStatus { return b.status }

func (b *Booking) Requester() Requester { return b.requester }

// StatusHistory returns a copy of the ordered history.
func (b *Booking) StatusHistory() []StatusEntry {
	out := make([]StatusEntry, len(b.history))
	copy(out, b.history)
	return out
}

// Assignment returns a copy of the current assignment, or nil.
func (b *Booking) Assignment() *Assignment {
	if b.assignment == nil {
		return nil
	}
	a := *b.assignment
	a.Criteria.SkillsMatched = append([]string(nil), b.assignment.Criteria.SkillsMatched...)
	return &a
}

// AssignedServiceman returns the assigned serviceman id, or "".
func (b *Booking) AssignedServiceman() string {
	if b.assignment == nil {
		return ""
	}
	return b.assignment.ServicemanID
}

// StatusChange describes one applied transition.
type StatusChange struct {
	From  BookingStatus
	To    BookingStatus
	Entry StatusEntry
}

// InvalidTransitionError is returned by Advance for a move the table forbids.
type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("booking is %s and cannot move to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

// Advance applies a table-checked transition and appends it to the history.
func (b *Booking) Advance(to BookingStatus, actorID, note string, at time.Time) (StatusChange, error) {
	from := b.status
	if !from.CanTransitionTo(to) {
		return StatusChange{}, &InvalidTransitionError{From: from, To: to}
	}
	if n := len(b.history); n > 0 && at.Before(b.history[n-1].Timestamp) {
		at = b.history[n-1].Timestamp
	}
	entry := StatusEntry{Status: to, Timestamp: at, ActorID: actorID, Note: note}
	b.history = append(b.history, entry)
	b.status = to
	b.UpdatedAt = at

	switch to {
	case StatusConfirmed:
		if b.Schedule.ConfirmedDate == nil {
			d := b.Schedule.RequestedDate
			b.Schedule.ConfirmedDate = &d
		}
	case StatusCompleted:
		if started, ok := b.enteredAt(StatusInProgress); ok {
			b.Schedule.ActualDuration = int(at.Sub(started).Minutes())
		}
	}
	return StatusChange{From: from, To: to, Entry: entry}, nil
}

func (b *Booking) enteredAt(status BookingStatus) (time.Time, bool) {
	for i := len(b.history) - 1; i >= 0; i-- {
		if b.history[i].Status == status {
			return b.history[i].Timestamp, true
		}
	}
	return time.Time{}, false
}

// Assign records the serviceman responsible for a pending booking.
func (b *Booking) Assign(servicemanID string, criteria AssignmentCriteria, autoAssigned bool, at time.Time) error {
	if b.status != StatusPending {
		return fmt.Errorf("booking %s is %s; only pending bookings can be assigned", b.ID, b.status)
	}
	if b.assignment != nil {
		return fmt.Errorf("booking %s is already assigned to %s", b.ID, b.assignment.ServicemanID)
	}
	b.assignment = &Assignment{
		ServicemanID: servicemanID,
		AutoAssigned: autoAssigned,
		Criteria:     criteria,
		AssignedAt:   at,
	}
	b.UpdatedAt = at
	return nil
}

// Unassign drops an assignment that was never persisted.
func (b *Booking) Unassign() {
	b.assignment = nil
}

type bookingDocument struct {
	ID             string          `bson:"id" json:"id"`
	CustomerID     string          `bson:"customer" json:"customer"`
	Requester      RequesterRecord `bson:"requestedBy" json:"requestedBy"`
	ServiceID      string          `bson:"service" json:"service"`
	OrganizationID string          `bson:"organization" json:"organization"`
	BranchID       string          `bson:"branch,omitempty" json:"branch,omitempty"`
	Assignment     *Assignment     `bson:"assignment,omitempty" json:"assignment,omitempty"`
	Schedule       Schedule        `bson:"schedule" json:"schedule"`
	Status         BookingStatus   `bson:"status" json:"status"`
	StatusHistory  []StatusEntry   `bson:"statusHistory" json:"statusHistory"`
	Location       *Location       `bson:"location,omitempty" json:"location,omitempty"`
	Payment        Payment         `bson:"payment" json:"payment"`
	Version        int64           `bson:"version" json:"version"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func (b *Booking) document() bookingDocument {
	return bookingDocument{
		ID:             b.ID,
		CustomerID:     b.CustomerID,
		Requester:      recordOf(b.requester),
		ServiceID:      b.ServiceID,
		OrganizationID: b.OrganizationID,
		BranchID:       b.BranchID,
		Assignment:     b.assignment,
		Schedule:       b.Schedule,
		Status:         b.status,
		StatusHistory:  b.history,
		Location:       b.Location,
		Payment:        b.Payment,
		Version:        b.Version,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func (b *Booking) MarshalBSON() ([]byte, error) {
	return bson.Marshal(b.document())
}

func (b *Booking) UnmarshalBSON(data []byte) error {
	var doc bookingDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	req, err := doc.Requester.requester()
	if err != nil {
		return fmt.Errorf("booking %s: %w", doc.ID, err)
	}
	if !doc.Status.IsValid() {
		return fmt.Errorf("booking %s: invalid status %q", doc.ID, doc.Status)
	}
	*b = Booking{
		ID:             doc.ID,
		CustomerID:     doc.CustomerID,
		ServiceID:      doc.ServiceID,
		OrganizationID: doc.OrganizationID,
		BranchID:       doc.BranchID,
		Schedule:       doc.Schedule,
		Location:       doc.Location,
		Payment:        doc.Payment,
		Version:        doc.Version,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		requester:      req,
		status:         doc.Status,
		history:        doc.StatusHistory,
		assignment:     doc.Assignment,
	}
	return nil
}

func (b *Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.document())
}
