package scheduling

import (
	"time"

	"medical-appointment-service/internal/domain/entity"

	"github.com/google/uuid"
)

// Overlaps reports whether the half-open windows [s1, e1) and [s2, e2)
// intersect. Touching boundaries (e1 == s2) are not an overlap, so an
// appointment ending exactly when another starts never conflicts.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// blocksWindow reports whether an appointment still occupies its window.
// Cancelled, completed and no-show appointments release their slot.
func blocksWindow(status entity.AppointmentStatus) bool {
	switch status {
	case entity.StatusCancelled, entity.StatusCompleted, entity.StatusNoShow:
		return false
	}
	return true
}

// ConflictingAppointments returns the subset of appointments whose window
// overlaps the candidate [start, end). The appointment identified by exclude
// (the one being rescheduled or updated) is removed from the candidate set
// before the test; pass uuid.Nil to exclude nothing.
func ConflictingAppointments(appointments []entity.Appointment, start, end time.Time, exclude uuid.UUID) []entity.Appointment {
	var conflicts []entity.Appointment
	for i := range appointments {
		a := &appointments[i]
		if a.ID == exclude {
			continue
		}
		if !blocksWindow(a.Status) {
			continue
		}
		if Overlaps(a.StartTime, a.EndTime(), start, end) {
			conflicts = append(conflicts, *a)
		}
	}
	return conflicts
}

// HasConflict is the canonical go/no-go contract over ConflictingAppointments.
func HasConflict(appointments []entity.Appointment, start, end time.Time, exclude uuid.UUID) bool {
	return len(ConflictingAppointments(appointments, start, end, exclude)) > 0
}
