package models

import (
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve in minimal images
)

// Profile represents a user profile in the system
type Profile struct {
	ID        string    `json:"id" db:"id"` // UUID that matches the identity provider user id
	Email     string    `json:"email" db:"email"`
	FullName  *string   `json:"full_name" db:"full_name"`
	Timezone  string    `json:"timezone" db:"timezone"` // IANA zone name, empty means UTC
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Location returns the owner's home time zone. Unknown or empty zones fall
// back to UTC.
func (p Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DisplayName returns the full name, or "N/A" when it was never set.
func (p Profile) DisplayName() string {
	if p.FullName == nil || strings.TrimSpace(*p.FullName) == "" {
		return "N/A"
	}
	return *p.FullName
}

// UpdateProfileRequest is the body of PUT /api/profile
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Timezone *string `json:"timezone"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.FullName != nil {
		name := strings.TrimSpace(*r.FullName)
		if name == "" {
			return invalid("full_name", "must not be empty")
		}
		r.FullName = &name
	}
	if r.Timezone != nil && *r.Timezone != "" {
		if _, err := time.LoadLocation(*r.Timezone); err != nil {
			return invalid("timezone", "unknown time zone")
		}
	}
	return nil
}
