package repository

import (
	"context"
	"errors"
	"time"

	"medical-appointment-service/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrVersionConflict signals a stale optimistic-lock write: the stored
	// version no longer matches the version the caller read.
	ErrVersionConflict = errors.New("appointment was modified concurrently")

	// ErrStoreUnavailable wraps transient persistence failures. Safe to retry
	// with backoff; the failed operation has not partially applied.
	ErrStoreUnavailable = errors.New("appointment store unavailable")
)

// ListFilter narrows and paginates appointment listings.
type ListFilter struct {
	Status *entity.AppointmentStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// AppointmentRepository contains all appointment store interactions needed
// by the scheduling service and the reminder scheduler. Save enforces the
// optimistic-version contract: a write against a stale version fails with
// ErrVersionConflict and bumps nothing.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	Save(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindByConfirmationToken(ctx context.Context, token string) (*entity.Appointment, error)

	// Conflict detection and slot generation
	FindConflicting(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error)

	// Listings
	FindByPatientID(ctx context.Context, patientID uuid.UUID, filter ListFilter) ([]entity.Appointment, int64, error)
	FindByDoctorID(ctx context.Context, doctorID uuid.UUID, filter ListFilter) ([]entity.Appointment, int64, error)
	Find(ctx context.Context, filter ListFilter) ([]entity.Appointment, int64, error)
	FindUpcoming(ctx context.Context, now time.Time) ([]entity.Appointment, error)

	// Reminder scan: SCHEDULED/CONFIRMED, start within [from, to), not yet reminded
	FindDueForReminder(ctx context.Context, from, to time.Time) ([]entity.Appointment, error)

	// Statistics
	CountByStatus(ctx context.Context, status entity.AppointmentStatus, from, to time.Time) (int64, error)
}
