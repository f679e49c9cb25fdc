package models

import (
	"net/mail"
	"strings"
)

// MagicLinkRequest asks the identity provider to email a sign-in link
type MagicLinkRequest struct {
	// User's email address
	Email string `json:"email" example:"user@example.com"`
}

func (r *MagicLinkRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.Email == "" {
		return invalid("email", "is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return invalid("email", "is not a valid address")
	}
	return nil
}

// VerifyRequest exchanges the emailed one-time token for a session
type VerifyRequest struct {
	Email string `json:"email" example:"user@example.com"`
	// One-time token from the sign-in email
	Token string `json:"token" example:"123456"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	// JWT token for authentication
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string `json:"type" example:"Bearer"`
	// Token lifetime in seconds
	ExpiresIn int64 `json:"expires_in" example:"259200"`
	// Where the client should go next: "onboarding" or "dashboard"
	Next string `json:"next" example:"dashboard"`
}

// OnboardingRequest collects the first-run wizard: the user's name and their
// first medication.
type OnboardingRequest struct {
	FullName   string          `json:"full_name"`
	Medication MedicationInput `json:"medication"`
}

// Validate checks the wizard steps in order so the first failing step is
// reported.
func (r *OnboardingRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" {
		return invalid("full_name", "please enter your name")
	}
	if strings.TrimSpace(r.Medication.Name) == "" {
		return invalid("medication.name", "please enter medication name")
	}
	if r.Medication.Dosage <= 0 {
		return invalid("medication.dosage", "please enter a valid dosage")
	}
	return r.Medication.Normalize()
}
