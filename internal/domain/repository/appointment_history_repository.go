package repository

import (
	"context"

	"medical-appointment-service/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentHistoryRepository is append-only: entries are never updated
// or deleted.
type AppointmentHistoryRepository interface {
	Append(ctx context.Context, entry *entity.AppointmentHistory) error
	FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) ([]entity.AppointmentHistory, error)
}
