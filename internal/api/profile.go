package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/shot-tracker/internal/models"
)

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	profile, err := s.repo.GetProfile(c.UserContext(), userID(c))
	if err != nil {
		return s.fail(c, err, "Failed to fetch profile")
	}
	return c.JSON(fiber.Map{"profile": profile})
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return s.fail(c, err, "Invalid profile")
	}

	ctx := c.UserContext()
	profile, err := s.repo.UpdateProfile(ctx, userID(c), req)
	if err != nil {
		return s.fail(c, err, "Failed to update profile")
	}
	if req.Timezone != nil {
		// day boundaries move with the zone
		s.invalidateStats(ctx, profile.ID)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

// handleOnboarding completes the first-run wizard.
func (s *Server) handleOnboarding(c *fiber.Ctx) error {
	var req models.OnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return s.fail(c, err, "Invalid onboarding data")
	}

	uid := userID(c)
	med := models.Medication{}
	req.Medication.Apply(&med)
	if err := s.repo.CompleteOnboarding(c.UserContext(), uid, req.FullName, &med); err != nil {
		return s.fail(c, err, "Failed to complete onboarding")
	}
	s.invalidateStats(c.UserContext(), uid)

	s.logger.Info("Onboarding completed", "user_id", uid, "medication_id", med.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"medication": med,
		"next":       nextDashboard,
	})
}
