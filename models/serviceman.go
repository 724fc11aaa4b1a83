package models

import "time"

type ServicemanStatus string

const (
	ServicemanAvailable ServicemanStatus = "available"
	ServicemanBusy      ServicemanStatus = "busy"
	ServicemanOffline   ServicemanStatus = "offline"
	ServicemanOnLeave   ServicemanStatus = "on_leave"
	ServicemanInactive  ServicemanStatus = "inactive"
)

func (s ServicemanStatus) Valid() bool {
	switch s {
	case ServicemanAvailable, ServicemanBusy, ServicemanOffline, ServicemanOnLeave, ServicemanInactive:
		return true
	}
	return false
}

// Skill binds a serviceman to a service they can perform.
type Skill struct {
	ServiceID string `bson:"serviceId" json:"serviceId"`
	Level     string `bson:"level,omitempty" json:"level,omitempty"` // beginner, intermediate, expert
	Certified bool   `bson:"certified" json:"certified"`
}

// Workload is the versioned aggregate of a serviceman's non-terminal bookings.
type Workload struct {
	CurrentBookings   []string `bson:"currentBookings" json:"currentBookings"`
	CompletedBookings int      `bson:"completedBookings" json:"completedBookings"`
	Version           int64    `bson:"version" json:"version"`
}

type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Performance struct {
	Rating           Rating  `bson:"rating" json:"rating"`
	PunctualityScore float64 `bson:"punctualityScore" json:"punctualityScore"`
}

// Serviceman is a schedulable field worker.
type Serviceman struct {
	ID           string           `bson:"id" json:"id"`
	ProviderID   string           `bson:"providerId" json:"providerId"`
	Name         string           `bson:"name" json:"name"`
	Phone        string           `bson:"phone,omitempty" json:"phone,omitempty"`
	Skills       []Skill          `bson:"skills" json:"skills"`
	Status       ServicemanStatus `bson:"status" json:"status"`
	Location     GeoPoint         `bson:"location" json:"location"`
	Availability Availability     `bson:"availability" json:"availability"`
	Workload     Workload         `bson:"workload" json:"workload"`
	Performance  Performance      `bson:"performance" json:"performance"`
	CreatedAt    time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// ServicemanProfile carries the descriptive attributes an operator may edit.
// Nil fields are left unchanged.
type ServicemanProfile struct {
	Name     *string   `json:"name,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
	Skills   []Skill   `json:"skills,omitempty"`
	Location *GeoPoint `json:"location,omitempty"`
}

// HasSkill reports whether the serviceman can perform serviceID.
func (s Serviceman) HasSkill(serviceID string) bool {
	for _, sk := range s.Skills {
		if sk.ServiceID == serviceID {
			return true
		}
	}
	return false
}

// MaxBookingsPerDay returns the daily cap, applying the default when unset.
func (s Serviceman) MaxBookingsPerDay() int {
	if s.Availability.Preferences.MaxBookingsPerDay <= 0 {
		return DefaultMaxBookingsPerDay
	}
	return s.Availability.Preferences.MaxBookingsPerDay
}

// MaxTravelDistance returns the travel bound in km, applying the default when unset.
func (s Serviceman) MaxTravelDistance() float64 {
	if s.Availability.Preferences.MaxTravelDistance <= 0 {
		return DefaultMaxTravelDistance
	}
	return s.Availability.Preferences.MaxTravelDistance
}

// HoldsBooking reports whether bookingID is in the current workload set.
func (s Serviceman) HoldsBooking(bookingID string) bool {
	for _, id := range s.Workload.CurrentBookings {
		if id == bookingID {
			return true
		}
	}
	return false
}
