package scheduling

import (
	"errors"
	"time"

	"medical-appointment-service/internal/domain/entity"

	"github.com/google/uuid"
)

var ErrInvalidBusinessHours = errors.New("invalid business hours, use HH:MM with start before end")

// BusinessHours describes the daily booking window, e.g. {"08:00", "18:00"}.
type BusinessHours struct {
	Start string
	End   string
}

// Window resolves the business hours to concrete open/close instants on the
// given date. The close instant is exclusive.
func (b BusinessHours) Window(date time.Time) (time.Time, time.Time, error) {
	open, err := time.Parse("15:04", b.Start)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidBusinessHours
	}
	close, err := time.Parse("15:04", b.End)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidBusinessHours
	}
	if !open.Before(close) {
		return time.Time{}, time.Time{}, ErrInvalidBusinessHours
	}

	y, m, d := date.Date()
	openAt := time.Date(y, m, d, open.Hour(), open.Minute(), 0, 0, date.Location())
	closeAt := time.Date(y, m, d, close.Hour(), close.Minute(), 0, 0, date.Location())
	return openAt, closeAt, nil
}

// Contains reports whether the window [start, end) lies fully within
// business hours on start's date. A window ending exactly at closing
// time still fits.
func (b BusinessHours) Contains(start, end time.Time) bool {
	openAt, closeAt, err := b.Window(start)
	if err != nil {
		return false
	}
	return !start.Before(openAt) && !end.After(closeAt)
}

// FindAvailableSlots enumerates candidate slots of the requested duration
// across business hours on the given date, stepping by granularity, and keeps
// each candidate iff it fits fully within business hours and does not overlap
// any of the doctor's existing appointments. The result is the ascending list
// of open slot start instants. Pure function of its inputs.
func FindAvailableSlots(date time.Time, durationMinutes int, hours BusinessHours, step time.Duration, existing []entity.Appointment) ([]time.Time, error) {
	openAt, closeAt, err := hours.Window(date)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(durationMinutes) * time.Minute
	var slots []time.Time
	for start := openAt; !start.Add(duration).After(closeAt); start = start.Add(step) {
		if HasConflict(existing, start, start.Add(duration), uuid.Nil) {
			continue
		}
		slots = append(slots, start)
	}
	return slots, nil
}
