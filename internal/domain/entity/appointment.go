package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "SCHEDULED"
	StatusConfirmed   AppointmentStatus = "CONFIRMED"
	StatusInProgress  AppointmentStatus = "IN_PROGRESS"
	StatusCompleted   AppointmentStatus = "COMPLETED"
	StatusCancelled   AppointmentStatus = "CANCELLED"
	StatusNoShow      AppointmentStatus = "NO_SHOW"
	StatusRescheduled AppointmentStatus = "RESCHEDULED"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// AppointmentType classifies the appointment. Informational only, it does
// not affect scheduling logic.
type AppointmentType string

const (
	TypeConsultation AppointmentType = "CONSULTATION"
	TypeFollowUp     AppointmentType = "FOLLOW_UP"
	TypeEmergency    AppointmentType = "EMERGENCY"
	TypePreventive   AppointmentType = "PREVENTIVE"
	TypeDiagnostic   AppointmentType = "DIAGNOSTIC"
	TypeTreatment    AppointmentType = "TREATMENT"
	TypeSurgery      AppointmentType = "SURGERY"
	TypeTelemedicine AppointmentType = "TELEMEDICINE"
)

// Appointment represents a booked medical appointment between a patient
// and a doctor at a medical center.
//
// End time is always derived from StartTime + DurationMinutes and is never
// stored, so it cannot drift.
type Appointment struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	MedicalCenterID uuid.UUID `gorm:"type:uuid;not null" json:"medical_center_id"`
	SpecialityID    uuid.UUID `gorm:"type:uuid;not null" json:"speciality_id"`

	StartTime       time.Time         `gorm:"not null;index" json:"start_time"`
	DurationMinutes int               `gorm:"not null" json:"duration_minutes"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Type            AppointmentType   `gorm:"type:varchar(20);not null" json:"type"`

	Reason      string `gorm:"type:text" json:"reason,omitempty"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`
	DoctorNotes string `gorm:"type:text" json:"doctor_notes,omitempty"`

	// Contact snapshot, defaulted from the user directory at creation
	PatientPhone string `gorm:"type:varchar(20)" json:"patient_phone,omitempty"`
	PatientEmail string `gorm:"type:varchar(255)" json:"patient_email,omitempty"`

	// Present only while status is SCHEDULED and not yet confirmed
	ConfirmationToken *string `gorm:"type:varchar(64);uniqueIndex" json:"-"`

	ReminderSent bool `gorm:"not null;default:false" json:"reminder_sent"`

	CancellationReason string     `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledBy        string     `gorm:"type:varchar(100)" json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedBy string    `gorm:"type:varchar(100);not null" json:"created_by"`
	UpdatedBy string    `gorm:"type:varchar(100)" json:"updated_by,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Optimistic concurrency counter, bumped on every persisted mutation
	Version int64 `gorm:"not null;default:1" json:"version"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Duration returns the appointment duration.
func (a *Appointment) Duration() time.Duration {
	return time.Duration(a.DurationMinutes) * time.Minute
}

// EndTime is derived, never stored independently.
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(a.Duration())
}

// IsTerminal checks if the appointment reached a terminal status
func (a *Appointment) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// IsUpcoming checks if the appointment is still ahead and active
func (a *Appointment) IsUpcoming(now time.Time) bool {
	return a.StartTime.After(now) &&
		(a.Status == StatusScheduled || a.Status == StatusConfirmed)
}

// CanBeCancelled reports whether the appointment may still be cancelled:
// it must be SCHEDULED or CONFIRMED and start later than now + cutoff.
func (a *Appointment) CanBeCancelled(now time.Time, cutoff time.Duration) bool {
	if a.Status != StatusScheduled && a.Status != StatusConfirmed {
		return false
	}
	return a.StartTime.After(now.Add(cutoff))
}

// CanBeRescheduled follows the same rule as cancellation
func (a *Appointment) CanBeRescheduled(now time.Time, cutoff time.Duration) bool {
	return a.CanBeCancelled(now, cutoff)
}
