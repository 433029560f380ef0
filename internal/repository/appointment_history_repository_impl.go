package repository

import (
	"context"

	"medical-appointment-service/internal/domain/entity"
	domainRepo "medical-appointment-service/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentHistoryRepository struct {
	db *gorm.DB
}

func NewAppointmentHistoryRepository(db *gorm.DB) domainRepo.AppointmentHistoryRepository {
	return &appointmentHistoryRepository{db: db}
}

func (r *appointmentHistoryRepository) Append(ctx context.Context, entry *entity.AppointmentHistory) error {
	if err := conn(ctx, r.db).Create(entry).Error; err != nil {
		return storeErr("append appointment history", err)
	}
	return nil
}

func (r *appointmentHistoryRepository) FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) ([]entity.AppointmentHistory, error) {
	var entries []entity.AppointmentHistory
	err := conn(ctx, r.db).
		Where("appointment_id = ?", appointmentID).
		Order("performed_at").
		Find(&entries).Error
	if err != nil {
		return nil, storeErr("find appointment history", err)
	}
	return entries, nil
}
