package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patient_id" validate:"required"`
	DoctorID        uuid.UUID `json:"doctor_id" validate:"required"`
	MedicalCenterID uuid.UUID `json:"medical_center_id" validate:"required"`
	SpecialityID    uuid.UUID `json:"speciality_id" validate:"required"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gte=15,lte=240"`
	Type            string    `json:"type" validate:"required,oneof=CONSULTATION FOLLOW_UP EMERGENCY PREVENTIVE DIAGNOSTIC TREATMENT SURGERY TELEMEDICINE"`
	Reason          string    `json:"reason" validate:"max=500"`
	Notes           string    `json:"notes" validate:"max=1000"`
	PatientPhone    string    `json:"patient_phone" validate:"omitempty,min=10,max=16"`
	PatientEmail    string    `json:"patient_email" validate:"omitempty,email"`
}

// UpdateAppointmentRequest applies partial updates: nil fields are untouched.
type UpdateAppointmentRequest struct {
	StartTime       *time.Time `json:"start_time"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gte=15,lte=240"`
	Type            *string    `json:"type" validate:"omitempty,oneof=CONSULTATION FOLLOW_UP EMERGENCY PREVENTIVE DIAGNOSTIC TREATMENT SURGERY TELEMEDICINE"`
	Reason          *string    `json:"reason" validate:"omitempty,max=500"`
	Notes           *string    `json:"notes" validate:"omitempty,max=1000"`
	DoctorNotes     *string    `json:"doctor_notes" validate:"omitempty,max=1000"`
	PatientPhone    *string    `json:"patient_phone" validate:"omitempty,min=10,max=16"`
	PatientEmail    *string    `json:"patient_email" validate:"omitempty,email"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type RescheduleAppointmentRequest struct {
	NewStartTime time.Time `json:"new_start_time" validate:"required"`
}

type CompleteAppointmentRequest struct {
	DoctorNotes string `json:"doctor_notes" validate:"max=1000"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	MedicalCenterID uuid.UUID `json:"medical_center_id"`
	SpecialityID    uuid.UUID `json:"speciality_id"`

	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Type            string    `json:"type"`

	Reason      string `json:"reason,omitempty"`
	Notes       string `json:"notes,omitempty"`
	DoctorNotes string `json:"doctor_notes,omitempty"`

	PatientPhone string `json:"patient_phone,omitempty"`
	PatientEmail string `json:"patient_email,omitempty"`

	ConfirmationToken string `json:"confirmation_token,omitempty"`
	ReminderSent      bool   `json:"reminder_sent"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
}

type AvailabilityResponse struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
}

type SlotListResponse struct {
	DoctorID        uuid.UUID   `json:"doctor_id"`
	Date            string      `json:"date"`
	DurationMinutes int         `json:"duration_minutes"`
	Slots           []time.Time `json:"slots"`
	Total           int         `json:"total"`
}

type HistoryEntryResponse struct {
	ID             int64      `json:"id"`
	AppointmentID  uuid.UUID  `json:"appointment_id"`
	Action         string     `json:"action"`
	Description    string     `json:"description,omitempty"`
	PerformedBy    string     `json:"performed_by"`
	PerformedAt    time.Time  `json:"performed_at"`
	PreviousStatus string     `json:"previous_status,omitempty"`
	NewStatus      string     `json:"new_status,omitempty"`
	PreviousStart  *time.Time `json:"previous_start,omitempty"`
	NewStart       *time.Time `json:"new_start,omitempty"`
}

type HistoryListResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
	Total   int                    `json:"total"`
}

type AppointmentStatsResponse struct {
	Status string    `json:"status"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Count  int64     `json:"count"`
}
