package models

import (
	"math"
	"strings"
	"time"
)

// InjectionLog is a single recorded administration of a dose.
type InjectionLog struct {
	ID            string        `json:"id" db:"id"`
	UserID        string        `json:"user_id" db:"user_id"`
	MedicationID  string        `json:"medication_id" db:"medication_id"`
	InjectionDate time.Time     `json:"injection_date" db:"injection_date"`
	Dosage        float64       `json:"dosage" db:"dosage"`
	InjectionSite InjectionSite `json:"injection_site" db:"injection_site"`
	Notes         *string       `json:"notes" db:"notes"`
	IsCompleted   bool          `json:"is_completed" db:"is_completed"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// LogInjectionRequest is the body of POST /api/injections. Every field except
// the medication is optional and falls back to the medication defaults.
type LogInjectionRequest struct {
	MedicationID  string         `json:"medication_id"`
	InjectionDate *time.Time     `json:"injection_date"`
	Dosage        *float64       `json:"dosage"`
	InjectionSite *InjectionSite `json:"injection_site"`
	Notes         *string        `json:"notes"`
}

// Build validates the request against its medication and produces the log to
// insert.
func (r LogInjectionRequest) Build(med Medication, now time.Time) (InjectionLog, error) {
	log := InjectionLog{
		UserID:        med.UserID,
		MedicationID:  med.ID,
		InjectionDate: now,
		Dosage:        med.Dosage,
		InjectionSite: med.DefaultSite(),
		IsCompleted:   true,
	}
	if r.InjectionDate != nil {
		if r.InjectionDate.After(now) {
			return InjectionLog{}, invalid("injection_date", "must not be in the future")
		}
		log.InjectionDate = *r.InjectionDate
	}
	if r.Dosage != nil {
		if *r.Dosage <= 0 || math.IsNaN(*r.Dosage) || math.IsInf(*r.Dosage, 0) {
			return InjectionLog{}, invalid("dosage", "must be greater than zero")
		}
		log.Dosage = *r.Dosage
	}
	if r.InjectionSite != nil && *r.InjectionSite != "" {
		if !r.InjectionSite.Valid() {
			return InjectionLog{}, invalid("injection_site", "unknown injection site")
		}
		log.InjectionSite = *r.InjectionSite
	}
	if r.Notes != nil {
		if notes := strings.TrimSpace(*r.Notes); notes != "" {
			log.Notes = &notes
		}
	}
	return log, nil
}
