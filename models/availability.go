package models

// TimeSlot is a window within a day in "HH:mm" format.
type TimeSlot struct {
	Start     string `bson:"start" json:"start"`
	End       string `bson:"end" json:"end"`
	Available bool   `bson:"available" json:"available"`
}

// DaySchedule lists the slots for one weekday ("Monday" … "Sunday").
type DaySchedule struct {
	DayOfWeek string     `bson:"dayOfWeek" json:"dayOfWeek"`
	TimeSlots []TimeSlot `bson:"timeSlots" json:"timeSlots"`
}

// AvailabilityException overrides the regular schedule for one calendar date (YYYY-MM-DD).
type AvailabilityException struct {
	Date      string `bson:"date" json:"date"`
	Available bool   `bson:"available" json:"available"`
	Reason    string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Preferences bound how much work a serviceman accepts.
type Preferences struct {
	MaxBookingsPerDay    int     `bson:"maxBookingsPerDay" json:"maxBookingsPerDay"`
	BreakBetweenBookings int     `bson:"breakBetweenBookings" json:"breakBetweenBookings"` // minutes
	MaxTravelDistance    float64 `bson:"maxTravelDistance" json:"maxTravelDistance"`       // kilometers
}

const (
	DefaultMaxBookingsPerDay    = 8
	DefaultBreakBetweenBookings = 30
	DefaultMaxTravelDistance    = 50.0
)

// Availability is shared by servicemen and services.
type Availability struct {
	RegularSchedule []DaySchedule           `bson:"regularSchedule" json:"regularSchedule"`
	Exceptions      []AvailabilityException `bson:"exceptions" json:"exceptions"`
	Preferences     Preferences             `bson:"preferences" json:"preferences"`
}

// Empty reports whether no schedule and no exceptions were defined.
func (a Availability) Empty() bool {
	return len(a.RegularSchedule) == 0 && len(a.Exceptions) == 0
}
