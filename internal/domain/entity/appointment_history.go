package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// History action tags, one per mutating operation
const (
	HistoryActionCreated     = "CREATED"
	HistoryActionUpdated     = "UPDATED"
	HistoryActionCancelled   = "CANCELLED"
	HistoryActionRescheduled = "RESCHEDULED"
	HistoryActionConfirmed   = "CONFIRMED"
	HistoryActionStarted     = "STARTED"
	HistoryActionCompleted   = "COMPLETED"
	HistoryActionNoShow      = "NO_SHOW"
	HistoryActionReminder    = "REMINDER_SENT"
)

// AppointmentHistory is an append-only log entry for one appointment.
// Entries are never updated or deleted and may outlive the appointment row.
type AppointmentHistory struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	Action        string    `gorm:"type:varchar(50);not null;index" json:"action"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	PerformedBy   string    `gorm:"type:varchar(100);not null" json:"performed_by"`
	PerformedAt   time.Time `gorm:"not null;autoCreateTime;index" json:"performed_at"`

	PreviousStatus *AppointmentStatus `gorm:"type:varchar(20)" json:"previous_status,omitempty"`
	NewStatus      *AppointmentStatus `gorm:"type:varchar(20)" json:"new_status,omitempty"`
	PreviousStart  *time.Time         `json:"previous_start,omitempty"`
	NewStart       *time.Time         `json:"new_start,omitempty"`

	Metadata JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}

func (AppointmentHistory) TableName() string {
	return "appointment_history"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}
