package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/shot-tracker/internal/models"
	"github.com/illegalcall/shot-tracker/internal/pkg/supabase"
)

const (
	nextOnboarding = "onboarding"
	nextDashboard  = "dashboard"
)

func (s *Server) handleMagicLink(c *fiber.Ctx) error {
	var req models.MagicLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return s.fail(c, err, "Invalid email")
	}

	if err := s.auth.SendMagicLink(c.UserContext(), req.Email); err != nil {
		s.logger.Error("Failed to send magic link", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Could not send sign-in link",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Check your email for the sign-in link",
	})
}

// handleVerify exchanges the emailed token for a session. First sign-ins get
// a profile and are routed to onboarding, as are users without an active
// medication.
func (s *Server) handleVerify(c *fiber.Ctx) error {
	var req models.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Token = strings.TrimSpace(req.Token)
	if req.Email == "" || req.Token == "" {
		return badRequest(c, "Email and token are required")
	}

	ctx := c.UserContext()
	identity, err := s.auth.VerifyMagicLink(ctx, req.Email, req.Token)
	if err != nil {
		if errors.Is(err, supabase.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired sign-in link",
			})
		}
		s.logger.Error("Authentication error", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Authentication service error",
		})
	}

	profile, created, err := s.repo.EnsureProfile(ctx, identity.UserID, identity.Email)
	if err != nil {
		return s.fail(c, err, "Failed to load profile")
	}

	next := nextDashboard
	if created {
		s.logger.Info("Profile created", "user_id", profile.ID)
		next = nextOnboarding
	} else {
		hasMeds, err := s.repo.HasActiveMedication(ctx, profile.ID)
		if err != nil {
			return s.fail(c, err, "Failed to load medications")
		}
		if !hasMeds {
			next = nextOnboarding
		}
	}

	token, err := s.issueToken(profile.ID, profile.Email)
	if err != nil {
		return s.fail(c, err, "Failed to generate token")
	}

	s.logger.Info("User successfully authenticated", "user_id", profile.ID, "next", next)
	return c.JSON(models.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.expiresIn().Seconds()),
		Next:      next,
	})
}
