package models

import (
	"time"
)

// Reminder is stored notification configuration. Nothing dispatches it.
type Reminder struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	MedicationID string    `json:"medication_id" db:"medication_id"`
	ReminderTime string    `json:"reminder_time" db:"reminder_time"` // Format: "HH:MM"
	HoursBefore  int       `json:"hours_before" db:"hours_before"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type NewReminderRequest struct {
	MedicationID string `json:"medication_id"`
	ReminderTime string `json:"reminder_time"`
	HoursBefore  int    `json:"hours_before"`
}

func (r NewReminderRequest) Validate() error {
	if r.MedicationID == "" {
		return invalid("medication_id", "is required")
	}
	if _, err := time.Parse("15:04", r.ReminderTime); err != nil {
		return invalid("reminder_time", "must use HH:MM")
	}
	if r.HoursBefore < 0 || r.HoursBefore > 72 {
		return invalid("hours_before", "must be between 0 and 72")
	}
	return nil
}
