package models

import (
	"math"
	"strings"
	"time"
)

// Medication is a tracked dosing regimen
type Medication struct {
	ID            string         `json:"id" db:"id"`
	UserID        string         `json:"user_id" db:"user_id"`
	Name          string         `json:"name" db:"name"`
	Dosage        float64        `json:"dosage" db:"dosage"`
	Unit          Unit           `json:"unit" db:"unit"`
	Frequency     Frequency      `json:"frequency" db:"frequency"`
	FrequencyDays float64        `json:"frequency_days" db:"frequency_days"`
	PreferredSite *InjectionSite `json:"preferred_injection_site" db:"preferred_injection_site"`
	IsActive      bool           `json:"is_active" db:"is_active"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// DefaultSite is the site used by the quick "log now" action.
func (m Medication) DefaultSite() InjectionSite {
	if m.PreferredSite != nil && m.PreferredSite.Valid() {
		return *m.PreferredSite
	}
	return DefaultSite
}

// MedicationInput is the body used to create or replace a medication.
type MedicationInput struct {
	Name          string         `json:"name"`
	Dosage        float64        `json:"dosage"`
	Unit          Unit           `json:"unit"`
	Frequency     Frequency      `json:"frequency"`
	FrequencyDays float64        `json:"frequency_days"`
	PreferredSite *InjectionSite `json:"preferred_site"`
}

// Normalize validates the input and resolves the canonical interval. Labels
// other than custom always use their canonical interval regardless of the
// submitted frequency_days.
func (in *MedicationInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "medication name is required")
	}
	if in.Dosage <= 0 || math.IsNaN(in.Dosage) || math.IsInf(in.Dosage, 0) {
		return invalid("dosage", "must be greater than zero")
	}
	if in.Unit == "" {
		in.Unit = UnitMg
	}
	if !in.Unit.Valid() {
		return invalid("unit", "must be one of mg, mL, IU, mcg")
	}
	if in.Frequency == "" {
		in.Frequency = FrequencyWeekly
	}
	if !in.Frequency.Valid() {
		return invalid("frequency", "unknown frequency")
	}
	if days, ok := in.Frequency.CanonicalDays(); ok {
		in.FrequencyDays = days
	} else if in.FrequencyDays <= 0 || math.IsNaN(in.FrequencyDays) || math.IsInf(in.FrequencyDays, 0) {
		return invalid("frequency_days", "custom frequency needs a positive interval")
	}
	if in.PreferredSite != nil {
		if *in.PreferredSite == "" {
			in.PreferredSite = nil
		} else if !in.PreferredSite.Valid() {
			return invalid("preferred_site", "unknown injection site")
		}
	}
	return nil
}

// Apply copies the input onto m.
func (in MedicationInput) Apply(m *Medication) {
	m.Name = in.Name
	m.Dosage = in.Dosage
	m.Unit = in.Unit
	m.Frequency = in.Frequency
	m.FrequencyDays = in.FrequencyDays
	m.PreferredSite = in.PreferredSite
}
