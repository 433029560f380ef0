package scheduling

import (
	"errors"
	"fmt"

	"medical-appointment-service/internal/domain/entity"
)

// ErrActorNotAllowed is returned when the acting role may not trigger the
// requested transition.
var ErrActorNotAllowed = errors.New("actor is not allowed to perform this transition")

// ActorRole classifies who is acting on an appointment.
type ActorRole string

const (
	RolePatient ActorRole = "patient"
	RoleDoctor  ActorRole = "doctor"
	RoleStaff   ActorRole = "staff"
)

// Actor identifies who triggered an operation, for audit and permission checks.
type Actor struct {
	ID   string
	Role ActorRole
}

// InvalidTransitionError reports a status transition that is not permitted
// from the appointment's current state. It is never silently ignored.
type InvalidTransitionError struct {
	From entity.AppointmentStatus
	To   entity.AppointmentStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("appointment in status %s cannot be modified", e.From)
	}
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// allowedTransitions is the lifecycle table. Rescheduling is not listed here:
// it is an operation that keeps the appointment in SCHEDULED (or returns a
// CONFIRMED appointment to SCHEDULED) and is guarded by CanBeRescheduled.
var allowedTransitions = map[entity.AppointmentStatus]map[entity.AppointmentStatus]bool{
	entity.StatusScheduled: {
		entity.StatusConfirmed: true,
		entity.StatusCancelled: true,
		entity.StatusNoShow:    true,
	},
	entity.StatusConfirmed: {
		entity.StatusInProgress: true,
		entity.StatusCompleted:  true,
		entity.StatusCancelled:  true,
		entity.StatusNoShow:     true,
	},
	entity.StatusInProgress: {
		entity.StatusCompleted: true,
		entity.StatusNoShow:    true,
	},
	// NO_SHOW and RESCHEDULED accept no further transitions; CANCELLED and
	// COMPLETED are terminal.
}

// transitionActors maps each target status to the roles that may trigger it.
var transitionActors = map[entity.AppointmentStatus]map[ActorRole]bool{
	entity.StatusConfirmed:  {RolePatient: true, RoleStaff: true},
	entity.StatusCancelled:  {RolePatient: true, RoleStaff: true},
	entity.StatusInProgress: {RoleDoctor: true, RoleStaff: true},
	entity.StatusCompleted:  {RoleDoctor: true, RoleStaff: true},
	entity.StatusNoShow:     {RoleStaff: true},
}

// CanTransition reports whether the lifecycle permits from -> to.
func CanTransition(from, to entity.AppointmentStatus) bool {
	return allowedTransitions[from][to]
}

// AllowedActor reports whether role may trigger a transition into to.
func AllowedActor(to entity.AppointmentStatus, role ActorRole) bool {
	return transitionActors[to][role]
}

// EnsureTransition validates from -> to against the lifecycle table and the
// acting role. Returns *InvalidTransitionError or ErrActorNotAllowed.
func EnsureTransition(from, to entity.AppointmentStatus, role ActorRole) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	if !AllowedActor(to, role) {
		return ErrActorNotAllowed
	}
	return nil
}

// EnsureMutable rejects any mutation of a terminal appointment.
func EnsureMutable(a *entity.Appointment) error {
	if a.IsTerminal() {
		return &InvalidTransitionError{From: a.Status, To: a.Status}
	}
	return nil
}
