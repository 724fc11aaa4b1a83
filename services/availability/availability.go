// Package availability answers whether a serviceman or service is open at an instant.
package availability

import (
	"strconv"
	"strings"
	"time"

	"servicehub/models"
)

const dateLayout = "2006-01-02"

// Index evaluates weekly schedules and date exceptions in one reference timezone.
type Index struct {
	Location *time.Location
}

func NewIndex(loc *time.Location) *Index {
	if loc == nil {
		loc = time.UTC
	}
	return &Index{Location: loc}
}

func (ix *Index) local(instant time.Time) time.Time {
	if ix == nil || ix.Location == nil {
		return instant.UTC()
	}
	return instant.In(ix.Location)
}

// IsAvailable applies the coarse status gate, then the serviceman's exceptions and
// regular schedule.
func (ix *Index) IsAvailable(s models.Serviceman, instant time.Time) bool {
	if s.Status != models.ServicemanAvailable {
		return false
	}
	return ix.check(s.Availability, instant)
}

// WindowOpen evaluates a service's own windows. A service with no schedule and no
// exceptions is always open.
func (ix *Index) WindowOpen(a models.Availability, instant time.Time) bool {
	if a.Empty() {
		return true
	}
	return ix.check(a, instant)
}

func (ix *Index) check(a models.Availability, instant time.Time) bool {
	t := ix.local(instant)

	date := t.Format(dateLayout)
	for _, exc := range a.Exceptions {
		if exc.Date == date {
			return exc.Available
		}
	}

	day, ok := dayFor(a.RegularSchedule, t.Weekday())
	if !ok {
		return false
	}

	minute := t.Hour()*60 + t.Minute()
	for _, slot := range day.TimeSlots {
		if !slot.Available {
			continue
		}
		start, okStart := ParseClock(slot.Start)
		end, okEnd := ParseClock(slot.End)
		if !okStart || !okEnd {
			continue
		}
		if minute >= start && minute <= end {
			return true
		}
	}
	return false
}

func dayFor(schedule []models.DaySchedule, wd time.Weekday) (models.DaySchedule, bool) {
	name := wd.String()
	for _, d := range schedule {
		if strings.EqualFold(d.DayOfWeek, name) {
			return d, true
		}
	}
	return models.DaySchedule{}, false
}

// ParseClock converts "HH:mm" into minutes from midnight.
func ParseClock(s string) (int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ValidSchedule reports the first malformed slot or weekday, if any.
func ValidSchedule(a models.Availability) (string, bool) {
	for _, d := range a.RegularSchedule {
		if !knownDay(d.DayOfWeek) {
			return "unknown dayOfWeek " + strconv.Quote(d.DayOfWeek), false
		}
		for _, slot := range d.TimeSlots {
			start, ok1 := ParseClock(slot.Start)
			end, ok2 := ParseClock(slot.End)
			if !ok1 || !ok2 {
				return "slot bounds must be HH:mm on " + d.DayOfWeek, false
			}
			if end < start {
				return "slot ends before it starts on " + d.DayOfWeek, false
			}
		}
	}
	for _, exc := range a.Exceptions {
		if _, err := time.Parse(dateLayout, exc.Date); err != nil {
			return "exception date must be YYYY-MM-DD: " + strconv.Quote(exc.Date), false
		}
	}
	return "", true
}

func knownDay(name string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return true
		}
	}
	return false
}
