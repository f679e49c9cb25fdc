package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/shot-tracker/internal/models"
)

func (s *Server) handleListMedications(c *fiber.Ctx) error {
	meds, err := s.repo.ListActiveMedications(c.UserContext(), userID(c))
	if err != nil {
		return s.fail(c, err, "Failed to fetch medications")
	}
	return c.JSON(fiber.Map{"medications": meds})
}

func (s *Server) handleCreateMedication(c *fiber.Ctx) error {
	var in models.MedicationInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := in.Normalize(); err != nil {
		return s.fail(c, err, "Invalid medication")
	}

	med := models.Medication{UserID: userID(c)}
	in.Apply(&med)
	if err := s.repo.CreateMedication(c.UserContext(), &med); err != nil {
		return s.fail(c, err, "Failed to create medication")
	}
	s.invalidateStats(c.UserContext(), med.UserID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"medication": med})
}

func (s *Server) handleUpdateMedication(c *fiber.Ctx) error {
	var in models.MedicationInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := in.Normalize(); err != nil {
		return s.fail(c, err, "Invalid medication")
	}

	med := models.Medication{ID: c.Params("id"), UserID: userID(c)}
	in.Apply(&med)
	if err := s.repo.UpdateMedication(c.UserContext(), &med); err != nil {
		return s.fail(c, err, "Failed to update medication")
	}
	s.invalidateStats(c.UserContext(), med.UserID)

	return c.JSON(fiber.Map{"medication": med})
}

// handleDeleteMedication deactivates; injection history stays intact.
func (s *Server) handleDeleteMedication(c *fiber.Ctx) error {
	uid := userID(c)
	if err := s.repo.DeactivateMedication(c.UserContext(), uid, c.Params("id")); err != nil {
		return s.fail(c, err, "Failed to deactivate medication")
	}
	s.invalidateStats(c.UserContext(), uid)
	return c.SendStatus(fiber.StatusNoContent)
}
