package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medical-appointment-service/internal/domain/entity"
	domainRepo "medical-appointment-service/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// blockingStatuses keep their time window occupied for conflict purposes
var blockingStatuses = []entity.AppointmentStatus{
	entity.StatusScheduled,
	entity.StatusConfirmed,
	entity.StatusInProgress,
	entity.StatusRescheduled,
}

var reminderStatuses = []entity.AppointmentStatus{
	entity.StatusScheduled,
	entity.StatusConfirmed,
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domainRepo.ErrStoreUnavailable, err)
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	if appointment.Version == 0 {
		appointment.Version = 1
	}
	if err := conn(ctx, r.db).Create(appointment).Error; err != nil {
		return storeErr("create appointment", err)
	}
	return nil
}

// Save performs a compare-and-swap write on (id, version). A stale version
// matches no row and fails with ErrVersionConflict; on success the in-memory
// version is bumped to the persisted one.
func (r *appointmentRepository) Save(ctx context.Context, a *entity.Appointment) error {
	updates := map[string]interface{}{
		"start_time":          a.StartTime,
		"duration_minutes":    a.DurationMinutes,
		"status":              a.Status,
		"type":                a.Type,
		"reason":              a.Reason,
		"notes":               a.Notes,
		"doctor_notes":        a.DoctorNotes,
		"patient_phone":       a.PatientPhone,
		"patient_email":       a.PatientEmail,
		"confirmation_token":  a.ConfirmationToken,
		"reminder_sent":       a.ReminderSent,
		"cancellation_reason": a.CancellationReason,
		"cancelled_by":        a.CancelledBy,
		"cancelled_at":        a.CancelledAt,
		"updated_by":          a.UpdatedBy,
		"version":             a.Version + 1,
	}

	result := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND version = ?", a.ID, a.Version).
		Updates(updates)
	if result.Error != nil {
		return storeErr("save appointment", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrVersionConflict
	}

	a.Version++
	return nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := conn(ctx, r.db).Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("find appointment", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByConfirmationToken(ctx context.Context, token string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := conn(ctx, r.db).Where("confirmation_token = ?", token).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("find appointment by token", err)
	}
	return &appointment, nil
}

// FindConflicting returns the doctor's active appointments whose half-open
// window [start_time, start_time + duration) overlaps [start, end).
func (r *appointmentRepository) FindConflicting(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error) {
	query := conn(ctx, r.db).
		Where("doctor_id = ?", doctorID).
		Where("status IN ?", blockingStatuses).
		Where("start_time < ?", end).
		Where("start_time + (duration_minutes * interval '1 minute') > ?", start)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var conflicts []entity.Appointment
	if err := query.Order("start_time").Find(&conflicts).Error; err != nil {
		return nil, storeErr("find conflicting appointments", err)
	}
	return conflicts, nil
}

func (r *appointmentRepository) FindByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := conn(ctx, r.db).
		Where("doctor_id = ?", doctorID).
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time").
		Find(&appointments).Error
	if err != nil {
		return nil, storeErr("find doctor appointments", err)
	}
	return appointments, nil
}

func applyFilter(query *gorm.DB, filter domainRepo.ListFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_time < ?", *filter.To)
	}
	return query
}

func (r *appointmentRepository) list(query *gorm.DB, filter domainRepo.ListFilter) ([]entity.Appointment, int64, error) {
	query = applyFilter(query.Model(&entity.Appointment{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storeErr("count appointments", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var appointments []entity.Appointment
	if err := query.Order("start_time DESC").Find(&appointments).Error; err != nil {
		return nil, 0, storeErr("list appointments", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, patientID uuid.UUID, filter domainRepo.ListFilter) ([]entity.Appointment, int64, error) {
	return r.list(conn(ctx, r.db).Where("patient_id = ?", patientID), filter)
}

func (r *appointmentRepository) FindByDoctorID(ctx context.Context, doctorID uuid.UUID, filter domainRepo.ListFilter) ([]entity.Appointment, int64, error) {
	return r.list(conn(ctx, r.db).Where("doctor_id = ?", doctorID), filter)
}

func (r *appointmentRepository) Find(ctx context.Context, filter domainRepo.ListFilter) ([]entity.Appointment, int64, error) {
	return r.list(conn(ctx, r.db), filter)
}

func (r *appointmentRepository) FindUpcoming(ctx context.Context, now time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := conn(ctx, r.db).
		Where("start_time >= ?", now).
		Where("status IN ?", reminderStatuses).
		Order("start_time").
		Find(&appointments).Error
	if err != nil {
		return nil, storeErr("find upcoming appointments", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) FindDueForReminder(ctx context.Context, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := conn(ctx, r.db).
		Where("status IN ?", reminderStatuses).
		Where("reminder_sent = ?", false).
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time").
		Find(&appointments).Error
	if err != nil {
		return nil, storeErr("find appointments due for reminder", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, status entity.AppointmentStatus, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("status = ?", status).
		Where("start_time >= ? AND start_time < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("count appointments by status", err)
	}
	return count, nil
}
